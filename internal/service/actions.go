package service

import (
	"time"

	"github.com/akikan18/shibari-karaoke/internal/engine"
	"github.com/akikan18/shibari-karaoke/internal/game"
)

// ActivateAbility applies one SKILL/ULT activation by the current singer.
// Illegal intents return (snapshot, nil, applied=false, nil): nothing
// happened, the UI reconciles against the returned state.
func ActivateAbility(repo BattleRepo, battleID uint, actorUUID string, kind game.AbilityKind, targetUUID string, pool []game.ThemeCard, actionTimeout time.Duration) (*game.Battle, *game.AbilityFx, bool, error) {
	var fx *game.AbilityFx
	b, applied, err := transition(repo, battleID, actionTimeout, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		f, logs, ok, err := engine.ActivateAbility(b, actorUUID, kind, targetUUID, pool)
		fx = f
		return logs, ok, err
	})
	if err != nil {
		return nil, nil, false, err
	}
	if !applied {
		return b, nil, false, nil
	}
	return b, fx, true, nil
}

// ResolveTurn resolves the current singer's turn with the externally-judged
// result. The caller must be the current singer or an authorized overseer;
// anyone else racing on a stale snapshot degrades to a no-op.
func ResolveTurn(repo BattleRepo, battleID uint, callerUUID string, overseer bool, result game.TurnResult, pool []game.ThemeCard, actionTimeout time.Duration) (*game.Battle, bool, error) {
	return transition(repo, battleID, actionTimeout, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		if !overseer && b.CurrentSinger != callerUUID {
			return nil, false, nil
		}
		return engine.ResolveTurn(b, result, pool)
	})
}

// PickCandidate resolves a member's pending theme choice.
func PickCandidate(repo BattleRepo, battleID uint, memberUUID string, chosen game.ThemeCard, actionTimeout time.Duration) (*game.Battle, bool, error) {
	return transition(repo, battleID, actionTimeout, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		return nil, engine.PickCandidate(b, memberUUID, chosen), nil
	})
}

// PickOracleTheme completes one step of an active oracle-ult pick. The
// sub-state is durable in the shared record, so any authorized controller
// (including an overseer) can resume and finish it after a dropped client.
func PickOracleTheme(repo BattleRepo, battleID uint, callerUUID string, overseer bool, targetUUID string, chosen game.ThemeCard, actionTimeout time.Duration) (*game.Battle, bool, error) {
	return transition(repo, battleID, actionTimeout, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		logs, ok := engine.PickOracleTheme(b, callerUUID, overseer, targetUUID, chosen)
		return logs, ok, nil
	})
}
