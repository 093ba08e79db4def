package api

import (
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/storage"
)

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	repo          storage.Repository
	pool          []game.ThemeCard
	actionTimeout time.Duration
}

// NewBattleHandler creates a BattleHandler with the given repository, theme
// pool and per-battle inactivity timeout.
func NewBattleHandler(repo storage.Repository, pool []game.ThemeCard, actionTimeout time.Duration) *BattleHandler {
	return &BattleHandler{repo: repo, pool: pool, actionTimeout: actionTimeout}
}
