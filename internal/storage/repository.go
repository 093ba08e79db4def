package storage

import (
	"errors"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

// ErrVersionConflict is returned by CommitBattle when another transition
// committed between the caller's read and write. Callers retry the whole
// read-compute-write cycle from scratch.
var ErrVersionConflict = errors.New("battle was modified concurrently")

// MaxLogEntries caps the per-battle history buffer; older entries are
// evicted on append.
const MaxLogEntries = 200

type Repository interface {
	CreateBattle(b *game.Battle) error
	GetBattleByID(id uint) (*game.Battle, error)
	FindBattleByJoinCode(code string) (*game.Battle, error)
	ListPublicBattles() ([]game.Battle, error)

	// CommitBattle persists the full next state under an optimistic
	// version check and appends the transition's log entries in the same
	// transaction. Returns ErrVersionConflict when the stored version no
	// longer matches the snapshot the caller read.
	CommitBattle(b *game.Battle, logs []game.LogEntry) error

	GetLogEntries(battleID uint, limit int) ([]game.LogEntry, error)

	// ClaimTimedOutBattleIDs leases up to limit in-progress battles whose
	// action deadline has passed, so concurrent scanners do not double-
	// process them.
	ClaimTimedOutBattleIDs(now time.Time, limit int, lease time.Duration, owner string) ([]uint, error)
}
