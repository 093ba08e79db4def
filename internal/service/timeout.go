package service

import (
	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/logging"
)

// HandleTimedOutBattle finishes a battle whose action deadline passed with
// no committed transition. Finishing is itself an optimistic transition, so
// a racing client that resolves the turn first simply wins: the fresh
// snapshot no longer qualifies and the scanner backs off.
func HandleTimedOutBattle(repo BattleRepo, battleID uint) error {
	_, applied, err := transition(repo, battleID, 0, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		if b.Status != game.StatusInProgress {
			return nil, false, nil
		}
		b.Status = game.StatusFinished
		b.Message = "Battle ended due to inactivity"
		logs := []game.LogEntry{{
			Kind:  game.LogSystem,
			Title: "Battle ended due to inactivity",
		}}
		return logs, true, nil
	})
	if err != nil {
		return err
	}
	if applied {
		logging.Info("battle expired due to inactivity", logging.Fields{"battle_id": battleID})
	}
	return nil
}
