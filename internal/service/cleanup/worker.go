package cleanup

import (
	"log"
	"time"

	"github.com/dropfour/backend/internal/service/game"
)

// Worker periodically sweeps stale game sessions out of memory and prunes
// old finished games from the database.
type Worker struct {
	SessionManager *game.SessionManager
	GameRepository GamePruner
	Interval       time.Duration
}

// GamePruner deletes old finished games. Nil disables the DB sweep.
type GamePruner interface {
	DeleteGamesOlderThan(days int) (int64, error)
}

func NewWorker(sm *game.SessionManager, repo GamePruner, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &Worker{SessionManager: sm, GameRepository: repo, Interval: interval}
}

// Start initiates the background ticker
func (w *Worker) Start() {
	go w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	go func() {
		for range ticker.C {
			w.runCleanup()
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) runCleanup() {
	w.SessionManager.CleanupOldSessions()

	if w.GameRepository == nil {
		return
	}

	daysToKeep := 30
	deleted, err := w.GameRepository.DeleteGamesOlderThan(daysToKeep)
	if err != nil {
		log.Printf("[CLEANUP] Error pruning old games: %v", err)
	} else if deleted > 0 {
		log.Printf("[CLEANUP] Removed %d old games from database", deleted)
	}
}
