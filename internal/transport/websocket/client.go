package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dropfour/backend/internal/domain"
)

// ConnectionManager tracks the sockets subscribed to each game.
type ConnectionManager struct {
	games map[string]map[*websocket.Conn]bool

	// writeMu ensures only one goroutine writes to a specific socket at a
	// time; conn.WriteJSON is not safe for concurrent use.
	writeMu map[*websocket.Conn]*sync.Mutex

	mu sync.RWMutex // protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		games:   make(map[string]map[*websocket.Conn]bool),
		writeMu: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register subscribes conn to a game's events.
func (cm *ConnectionManager) Register(gameID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.games[gameID] == nil {
		cm.games[gameID] = make(map[*websocket.Conn]bool)
	}
	cm.games[gameID][conn] = true
	cm.writeMu[conn] = &sync.Mutex{}
}

// Unregister drops conn; the caller closes the socket.
func (cm *ConnectionManager) Unregister(gameID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conns, ok := cm.games[gameID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(cm.games, gameID)
		}
	}
	delete(cm.writeMu, conn)
}

// Send writes one message to one socket under its write lock.
func (cm *ConnectionManager) Send(conn *websocket.Conn, msg domain.ServerMessage) error {
	cm.mu.RLock()
	mu, ok := cm.writeMu[conn]
	cm.mu.RUnlock()

	if !ok {
		return nil // already unregistered
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}

// Broadcast sends a message to every socket subscribed to a game.
func (cm *ConnectionManager) Broadcast(gameID string, msg domain.ServerMessage) {
	cm.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(cm.games[gameID]))
	for conn := range cm.games[gameID] {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range conns {
		// one slow reader must not block the rest
		go func(c *websocket.Conn) {
			cm.Send(c, msg)
		}(conn)
	}
}
