package service

import (
	"errors"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/storage"
)

var (
	ErrBattleNotFound           = errors.New("battle not found")
	ErrBattleNotJoinable        = errors.New("battle is finished")
	ErrNameRequired             = errors.New("member name is required")
	ErrInvalidTeam              = errors.New("team must be A or B")
	ErrUnknownRole              = errors.New("unknown role")
	ErrRoleTaken                = errors.New("role is already in use")
	ErrConflictRetriesExhausted = errors.New("could not commit after repeated conflicts")
)

// maxCommitRetries bounds the optimistic-retry loop. Conflicts are expected
// under racing clients and are not user errors until retries run out.
const maxCommitRetries = 5

// BattleRepo is the slice of the storage repository the services need.
type BattleRepo interface {
	GetBattleByID(id uint) (*game.Battle, error)
	FindBattleByJoinCode(code string) (*game.Battle, error)
	CreateBattle(b *game.Battle) error
	CommitBattle(b *game.Battle, logs []game.LogEntry) error
}

// transition runs one atomic read-compute-write cycle against the shared
// battle record. fn is a pure function of the snapshot it receives: it
// returns the log entries to append and whether the intent applied. On a
// version conflict the whole cycle reruns from a fresh read; an intent that
// no longer applies against the fresh snapshot degrades to a no-op.
func transition(repo BattleRepo, battleID uint, actionTimeout time.Duration, fn func(b *game.Battle) ([]game.LogEntry, bool, error)) (*game.Battle, bool, error) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		b, err := repo.GetBattleByID(battleID)
		if err != nil {
			return nil, false, ErrBattleNotFound
		}
		logs, applied, err := fn(b)
		if err != nil {
			return nil, false, err
		}
		if !applied {
			// silent no-op: the caller rereads the authoritative snapshot
			return b, false, nil
		}
		if actionTimeout > 0 {
			b.ActionDeadline = time.Now().Add(actionTimeout)
		}
		if err := repo.CommitBattle(b, logs); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				continue
			}
			return nil, false, err
		}
		return b, true, nil
	}
	return nil, false, ErrConflictRetriesExhausted
}
