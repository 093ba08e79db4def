package storage

import (
	"errors"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattle(b *game.Battle) error {
	return r.db.Create(b).Error
}

func (r *sqliteRepository) GetBattleByID(id uint) (*game.Battle, error) {
	var b game.Battle
	if err := r.db.Preload("Members").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) FindBattleByJoinCode(code string) (*game.Battle, error) {
	var b game.Battle
	if err := r.db.Preload("Members").Where("join_code = ?", code).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) ListPublicBattles() ([]game.Battle, error) {
	var battles []game.Battle
	err := r.db.Preload("Members").
		Where("private = ?", false).
		Where("status IN ?", []string{game.StatusWaiting, game.StatusInProgress}).
		Order("created_at DESC").
		Find(&battles).Error
	if err != nil {
		return nil, err
	}
	return battles, nil
}

// CommitBattle is the compare-and-swap commit: inside one write transaction
// it verifies the stored version still matches the snapshot the caller
// computed from, bumps it, saves the full aggregate and appends the log
// entries (trimming the history beyond the cap). SQLite serializes writers,
// so the check inside the transaction is the compare step.
func (r *sqliteRepository) CommitBattle(b *game.Battle, logs []game.LogEntry) error {
	prev := b.Version
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current int
		err := tx.Model(&game.Battle{}).
			Where("id = ?", b.ID).
			Select("version").
			Scan(&current).Error
		if err != nil {
			return err
		}
		if current != prev {
			return ErrVersionConflict
		}
		b.Version = prev + 1
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(b).Error; err != nil {
			return err
		}
		for i := range logs {
			logs[i].BattleID = b.ID
			if err := tx.Create(&logs[i]).Error; err != nil {
				return err
			}
		}
		// evict history beyond the cap, oldest first
		return tx.Exec(
			"DELETE FROM battle_logs WHERE battle_id = ? AND id NOT IN "+
				"(SELECT id FROM battle_logs WHERE battle_id = ? ORDER BY id DESC LIMIT ?)",
			b.ID, b.ID, MaxLogEntries,
		).Error
	})
}

func (r *sqliteRepository) GetLogEntries(battleID uint, limit int) ([]game.LogEntry, error) {
	if limit <= 0 || limit > MaxLogEntries {
		limit = MaxLogEntries
	}
	var entries []game.LogEntry
	err := r.db.Where("battle_id = ?", battleID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	// newest-last for display
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (r *sqliteRepository) ClaimTimedOutBattleIDs(now time.Time, limit int, lease time.Duration, owner string) ([]uint, error) {
	if limit <= 0 {
		limit = 20
	}
	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&game.Battle{}).
			Where("status = ?", game.StatusInProgress).
			Where("action_deadline > ? AND action_deadline <= ?", time.Time{}, now).
			Where("claimed_until <= ?", now).
			Order("action_deadline ASC").
			Limit(limit).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&game.Battle{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"claimed_by":    owner,
				"claimed_until": now.Add(lease),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsNotFound reports whether the error is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
