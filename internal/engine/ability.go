package engine

import (
	"fmt"
	"math/rand"

	"github.com/akikan18/shibari-karaoke/internal/deck"
	"github.com/akikan18/shibari-karaoke/internal/game"
)

// ActivateAbility validates and executes one SKILL or ULT activation by the
// current singer. Illegal intents are silent no-ops (ok=false, no mutation);
// the only hard error is a completely empty theme pool during a reroll.
//
// Handlers never compute the turn's net score for armed effects; they only
// set a flag consumed by ResolveTurn, so each armed effect fires exactly
// once regardless of the turn's outcome.
func ActivateAbility(b *game.Battle, actorUUID string, kind game.AbilityKind, targetUUID string, pool []game.ThemeCard) (*game.AbilityFx, []game.LogEntry, bool, error) {
	if b.Status != game.StatusInProgress {
		return nil, nil, false, nil
	}
	if b.OraclePick != nil {
		return nil, nil, false, nil
	}
	actor := b.MemberByUUID(actorUUID)
	if actor == nil || !actor.Onboarded() || b.CurrentSinger != actor.MemberUUID {
		return nil, nil, false, nil
	}
	if b.BuffsFor(actor.Team).SealedTurns > 0 || actor.Debuffs.SealedOnce {
		return nil, nil, false, nil
	}
	switch kind {
	case game.AbilitySkill:
		if b.SkillUsedThisTurn || actor.SkillUses <= 0 {
			return nil, nil, false, nil
		}
	case game.AbilityUlt:
		if b.UltUsedThisTurn || actor.UltUses <= 0 {
			return nil, nil, false, nil
		}
	default:
		return nil, nil, false, nil
	}

	lines, headline, ok, err := dispatchAbility(b, actor, kind, targetUUID, pool)
	if err != nil {
		return nil, nil, false, err
	}
	if !ok {
		return nil, nil, false, nil
	}

	if kind == game.AbilitySkill {
		actor.SkillUses--
		b.SkillUsedThisTurn = true
	} else {
		actor.UltUses--
		b.UltUsedThisTurn = true
	}

	spec, _ := game.RoleByID(actor.Role)
	fx := &game.AbilityFx{Kind: kind, Actor: actor.Name, Role: actor.Role, Headline: headline}
	logKind := game.LogSkill
	if kind == game.AbilityUlt {
		logKind = game.LogUlt
	}
	entry := game.LogEntry{
		BattleID: b.ID,
		Kind:     logKind,
		Actor:    actor.Name,
		Team:     actor.Team,
		Title:    fmt.Sprintf("%s %s: %s", spec.Name, kind, headline),
		Lines:    lines,
	}
	return fx, []game.LogEntry{entry}, true, nil
}

// dispatchAbility runs the role-specific handler. It returns ok=false when
// the requested target is missing or invalid, in which case nothing was
// mutated and no use is consumed.
func dispatchAbility(b *game.Battle, actor *game.Member, kind game.AbilityKind, targetUUID string, pool []game.ThemeCard) (game.StringList, string, bool, error) {
	tb := b.BuffsFor(actor.Team)
	var lines game.StringList

	switch actor.Role {
	case game.RoleMaestro:
		if kind == game.AbilitySkill {
			actor.Buffs.MaestroArmed = true
			return lines, "combo armed for this turn", true, nil
		}
		gain := actor.Combo * MaestroUltPerCombo
		if gain > 0 {
			c := applyTeamDelta(b, actor.Team, game.ScopeTeam, gain, fmt.Sprintf("maestro ult: combo %d cashed out", actor.Combo))
			lines = append(lines, formatChange(c))
		}
		actor.Combo = 0
		tb.NextSuccessBonus = MaestroNextSuccessBonus
		lines = append(lines, fmt.Sprintf("next successful team turn pays %+d", MaestroNextSuccessBonus))
		return lines, fmt.Sprintf("cashed out %+d", gain), true, nil

	case game.RoleShowman:
		if kind == game.AbilitySkill {
			actor.Buffs.ShowmanFlatArmed = true
			return lines, fmt.Sprintf("%+d armed on success", ShowmanSkillBonus), true, nil
		}
		actor.Buffs.ShowmanUltArmed = true
		return lines, fmt.Sprintf("enemy team takes %d on success", ShowmanUltEnemyHit), true, nil

	case game.RoleIronwall:
		if kind == game.AbilitySkill {
			tb.NegHalfTurns = 1
			tb.NegZeroTurns = 0
			return lines, "own-turn losses halved this team turn", true, nil
		}
		tb.NegZeroTurns = 1
		tb.NegHalfTurns = 0
		return lines, "own-turn losses zeroed this team turn", true, nil

	case game.RoleCoach:
		target := allyTarget(b, actor, targetUUID)
		if target == nil {
			return nil, "", false, nil
		}
		if kind == game.AbilitySkill {
			target.Buffs.Safe = true
			return lines, fmt.Sprintf("%s is safe: next fail pays %+d", target.Name, CoachSafeRefund), true, nil
		}
		target.Buffs.ForcedSuccess = true
		return lines, fmt.Sprintf("%s's next turn counts as SUCCESS", target.Name), true, nil

	case game.RoleOracle:
		if kind == game.AbilitySkill {
			target := allyTarget(b, actor, targetUUID)
			if target == nil {
				target = actor
			}
			cur := target.Challenge
			if !target.HasChallenge {
				cur = game.FreeTheme
			}
			fresh, rest, err := deck.Draw(b.Deck, pool, 2)
			if err != nil {
				return nil, "", false, err
			}
			b.Deck = rest
			target.Candidates = append(game.ThemeCards{cur}, fresh...)
			return lines, fmt.Sprintf("rerolled %s's candidates", target.Name), true, nil
		}
		return oracleUlt(b, actor, pool)

	case game.RoleMimic:
		if kind == game.AbilitySkill {
			echo := roundRatio(actor.LastTurnDelta, MimicEchoRatio)
			c := applyMemberDelta(b, actor, echo, "mimic skill: 50% echo of own last turn")
			lines = append(lines, formatChange(c))
			return lines, fmt.Sprintf("echoed %+d", echo), true, nil
		}
		allies := b.TeamMembers(actor.Team)
		count := 0
		for _, ally := range allies {
			if ally.MemberUUID == actor.MemberUUID {
				continue
			}
			ally.Buffs.MimicPassiveTurns = len(allies)
			count++
		}
		return lines, fmt.Sprintf("%d allies inherit the mimic echo", count), true, nil

	case game.RoleHype:
		if kind == game.AbilitySkill {
			target := allyTarget(b, actor, targetUUID)
			if target == nil {
				return nil, "", false, nil
			}
			target.Buffs.HypeTurns = HypeSkillTurns
			return lines, fmt.Sprintf("%s's next %d successes pay %+d each", target.Name, HypeSkillTurns, HypeSkillBonus), true, nil
		}
		tb.HypeUltTurns = HypeUltTurns
		return lines, fmt.Sprintf("team successes pay %+d for %d team turns", HypeUltBonus, HypeUltTurns), true, nil

	case game.RoleSaboteur:
		target := enemyTarget(b, actor, targetUUID)
		if target == nil {
			return nil, "", false, nil
		}
		if kind == game.AbilitySkill {
			target.Debuffs.Sabotaged = true
			return lines, fmt.Sprintf("%s is sabotaged", target.Name), true, nil
		}
		target.Debuffs.SealedOnce = true
		return lines, fmt.Sprintf("%s is sealed for one turn", target.Name), true, nil

	case game.RoleUnderdog:
		gap := b.TeamScore(actor.Team.Enemy()) - b.TeamScore(actor.Team)
		if kind == game.AbilitySkill {
			amount := clampSteal(roundRatio(gap, UnderdogSkillRatio), UnderdogSkillCap)
			if amount > 0 {
				cSteal := applyTeamDelta(b, actor.Team.Enemy(), game.ScopeEnemyTeam, -amount, "underdog skill: score stolen")
				cGain := applyTeamDelta(b, actor.Team, game.ScopeTeam, amount, "underdog skill: score stolen")
				lines = append(lines, formatChange(cSteal), formatChange(cGain))
			}
			return lines, fmt.Sprintf("stole %d", amount), true, nil
		}
		amount := clampSteal(roundRatio(gap, UnderdogUltRatio), UnderdogUltCap)
		if amount > 0 {
			c := applyTeamDelta(b, actor.Team, game.ScopeTeam, amount, "underdog ult: comeback")
			lines = append(lines, formatChange(c))
		}
		return lines, fmt.Sprintf("clawed back %d", amount), true, nil

	case game.RoleGambler:
		if kind == game.AbilitySkill {
			actor.Buffs.DoubleDown = true
			return lines, "double down armed", true, nil
		}
		actor.Buffs.CoinFlip = true
		return lines, fmt.Sprintf("coin flip armed: %+d or %d", GamblerUltWin, GamblerUltLoss), true, nil
	}
	return nil, "", false, nil
}

// oracleUlt builds one 3-choice item per ready enemy and opens the pick
// sub-state. A no-op when no enemy is ready.
func oracleUlt(b *game.Battle, actor *game.Member, pool []game.ThemeCard) (game.StringList, string, bool, error) {
	enemy := actor.Team.Enemy()
	items := make([]game.OraclePickItem, 0, 4)
	d := b.Deck
	for _, target := range b.TeamMembers(enemy) {
		if target.MidSelection() || !target.HasChallenge {
			continue
		}
		fresh, rest, err := deck.Draw(d, pool, 2)
		if err != nil {
			return nil, "", false, err
		}
		d = rest
		items = append(items, game.OraclePickItem{
			TargetUUID: target.MemberUUID,
			TargetName: target.Name,
			Team:       enemy,
			Choices:    append([]game.ThemeCard{target.Challenge}, fresh...),
		})
	}
	if len(items) == 0 {
		return nil, "", false, nil
	}
	b.Deck = d
	b.OraclePick = &game.OracleUltPick{
		ControllerUUID: actor.MemberUUID,
		ControllerName: actor.Name,
		EnemyTeam:      enemy,
		Items:          items,
		Cursor:         0,
	}
	lines := game.StringList{fmt.Sprintf("choosing themes for %d enemy singers", len(items))}
	return lines, "rewriting enemy destinies", true, nil
}

func allyTarget(b *game.Battle, actor *game.Member, targetUUID string) *game.Member {
	t := b.MemberByUUID(targetUUID)
	if t == nil || !t.Onboarded() || t.Team != actor.Team {
		return nil
	}
	return t
}

func enemyTarget(b *game.Battle, actor *game.Member, targetUUID string) *game.Member {
	t := b.MemberByUUID(targetUUID)
	if t == nil || !t.Onboarded() || t.Team == actor.Team {
		return nil
	}
	return t
}

func clampSteal(amount, limit int) int {
	if amount <= 0 {
		return 0
	}
	if amount > limit {
		return limit
	}
	return amount
}

// coinFlip decides the gambler's ultimate. Split out for clarity; uses the
// shared PRNG like the rest of the engine.
func coinFlip() bool { return rand.Intn(2) == 0 }

// gamblerSwing is the gambler passive: a uniform random adjustment applied
// to every successful turn.
func gamblerSwing() int {
	return GamblerSwingMin + rand.Intn(GamblerSwingMax-GamblerSwingMin+1)
}
