package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dropfour/backend/internal/domain"
	"github.com/dropfour/backend/internal/service/game"
	"github.com/dropfour/backend/pkg/auth"
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Tokens         *auth.TokenIssuer
	HintMaxDepth   int
	Upgrader       websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, sm *game.SessionManager, tokens *auth.TokenIssuer, hintMaxDepth int) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Tokens:         tokens,
		HintMaxDepth:   hintMaxDepth,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket upgrades the connection and runs the message loop.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

func (h *Handler) handleConnection(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	// keep-alive pinger
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// 1. wait for initialization: the first message must carry the seat token
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("[WS] Read error during init: %v", err)
		conn.Close()
		return
	}

	var initMsg domain.ClientMessage
	if err := json.Unmarshal(data, &initMsg); err != nil || initMsg.Type != "init" || initMsg.Token == "" {
		log.Printf("[WS] Missing initialization or token")
		conn.WriteJSON(domain.ServerMessage{Type: "error", Message: "init with a player token required"})
		conn.Close()
		return
	}

	claims, err := h.Tokens.ValidatePlayerToken(initMsg.Token)
	if err != nil {
		log.Printf("[WS] Invalid token during init: %v", err)
		conn.WriteJSON(domain.ServerMessage{Type: "error", Message: "invalid player token"})
		conn.Close()
		return
	}

	gs, exists := h.SessionManager.GetSessionByGameID(claims.GameID)
	if !exists {
		conn.WriteJSON(domain.ServerMessage{Type: "error", Message: "game not found"})
		conn.Close()
		return
	}

	gameID, piece := claims.GameID, claims.Player
	log.Printf("[WS] Connection initialized for game %s (player %d)", gameID, piece)

	h.ConnManager.Register(gameID, conn)
	defer func() {
		h.ConnManager.Unregister(gameID, conn)
		conn.Close()
		log.Printf("[WS] Connection closed for game %s", gameID)
	}()

	view := gs.View()
	h.ConnManager.Send(conn, domain.ServerMessage{
		Type:        "game_state",
		GameID:      gameID,
		YourPlayer:  int(piece),
		CurrentTurn: view.CurrentTurn,
		Status:      string(view.Status),
		Board:       view.Board,
	})

	// 2. main message loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected disconnect on game %s: %v", gameID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			continue
		}

		h.processMessage(conn, gameID, piece, msg)
	}
}

// processMessage routes one client action.
func (h *Handler) processMessage(conn *websocket.Conn, gameID string, piece domain.PlayerID, msg domain.ClientMessage) {
	switch msg.Type {
	case "make_move":
		_, err := h.SessionManager.HandleMove(gameID, piece, msg.Column, h.ConnManager)
		if err != nil {
			h.ConnManager.Send(conn, domain.ServerMessage{Type: "error", Message: err.Error()})
		}

	case "hint":
		depth := msg.Depth
		if depth < 1 {
			depth = 1
		}
		if h.HintMaxDepth > 0 && depth > h.HintMaxDepth {
			depth = h.HintMaxDepth
		}
		col, score, err := h.SessionManager.Hint(gameID, piece, depth)
		if err != nil {
			h.ConnManager.Send(conn, domain.ServerMessage{Type: "error", Message: err.Error()})
			return
		}
		h.ConnManager.Send(conn, domain.ServerMessage{Type: "hint", Column: col, Score: score})

	case "resign":
		if err := h.SessionManager.Resign(gameID, piece, h.ConnManager); err != nil {
			h.ConnManager.Send(conn, domain.ServerMessage{Type: "error", Message: err.Error()})
		}

	default:
		h.ConnManager.Send(conn, domain.ServerMessage{Type: "error", Message: "unknown message type"})
	}
}
