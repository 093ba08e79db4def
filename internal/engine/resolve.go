package engine

import (
	"fmt"
	"sort"

	"github.com/akikan18/shibari-karaoke/internal/deck"
	"github.com/akikan18/shibari-karaoke/internal/game"
)

// ResolveTurn runs the per-turn pipeline for the current singer and the
// submitted result. The steps are strictly ordered; each may contribute a
// ScoreChange to the running net delta:
//
//  1. forced-success override
//  2. sabotage override (suppresses 3-5)
//  3. base result constant
//  4. role passive + team success bonuses
//  5. armed buff consumption (fixed order)
//  6. negative-delta mitigation (ironwall skill/ult, then passive)
//  7. team countdown decrements
//  8. mimic bookkeeping
//  9. next challenge for the singer
// 10. advance to the next ready singer
// 11. turn-start auras for the new singer
// 12. RESULT + TURN log entries, per-turn lock reset
//
// Returns ok=false (no mutation) on illegal intents; the only hard error is
// an empty theme pool when dealing the next challenge.
func ResolveTurn(b *game.Battle, result game.TurnResult, pool []game.ThemeCard) ([]game.LogEntry, bool, error) {
	if b.Status != game.StatusInProgress || b.OraclePick != nil {
		return nil, false, nil
	}
	if result != game.ResultSuccess && result != game.ResultFail {
		return nil, false, nil
	}
	singer := b.CurrentSingerMember()
	if singer == nil || !singer.Onboarded() || singer.MidSelection() {
		return nil, false, nil
	}

	tc := newTurnContext(b, singer)
	themeTitle := singer.Challenge.Title
	if !singer.HasChallenge {
		themeTitle = game.FreeTheme.Title
	}

	// step 1: forced success
	success := result == game.ResultSuccess
	if singer.Buffs.ForcedSuccess {
		singer.Buffs.ForcedSuccess = false
		if !success {
			tc.note("coach ult: result forced to SUCCESS")
		}
		success = true
	}

	sealed := singer.Debuffs.SealedOnce
	sabotaged := singer.Debuffs.Sabotaged

	if sabotaged {
		// step 2: the override suppresses every other bonus source
		singer.Debuffs.Sabotaged = false
		if success {
			tc.addPlayer(SabotageSuccessOverride, "sabotaged: success voided")
		} else {
			tc.addPlayer(sabotageFailPenalty, "sabotaged: fail penalty")
		}
	} else {
		// step 3: base result
		if success {
			tc.addPlayer(BaseSuccess, "base success")
		} else {
			tc.addPlayer(BaseFail, "base fail")
		}

		if !sealed {
			// step 4: result-based role passive, then team success bonuses
			applyRolePassive(tc, success)
			tb := b.BuffsFor(singer.Team)
			if success && tb.NextSuccessBonus != 0 {
				tc.addTeam(tb.NextSuccessBonus, "next-success bonus consumed")
				tb.NextSuccessBonus = 0
			}
			if success && tb.HypeUltTurns > 0 {
				tc.addTeam(HypeUltBonus, "hype ult aura")
			}

			// step 5: armed buffs, fixed consumption order
			consumeArmedBuffs(tc, success)
		} else {
			tc.note("sealed: passives and armed effects suppressed")
		}
	}

	// step 6: mitigation of the singer team's own-turn negative net
	applyMitigation(tc, sealed)

	// step 7: countdowns consumed on this team's turn
	tb := b.BuffsFor(singer.Team)
	if tb.SealedTurns > 0 {
		tb.SealedTurns--
	}
	if tb.NegZeroTurns > 0 {
		tb.NegZeroTurns--
	} else if tb.NegHalfTurns > 0 {
		tb.NegHalfTurns--
	}
	if tb.HypeUltTurns > 0 {
		tb.HypeUltTurns--
	}
	if sealed {
		singer.Debuffs.SealedOnce = false
	}

	// step 8: mimic bookkeeping decrements every personal turn
	if singer.Buffs.MimicPassiveTurns > 0 {
		singer.Buffs.MimicPassiveTurns--
	}

	tc.commit(success)

	// step 9: deal the singer's next challenge
	if err := dealNextChallenge(b, singer, pool); err != nil {
		return nil, false, err
	}

	// step 10: advance to the next ready singer
	next := advanceSinger(b, singer)

	// step 11: turn-start auras for the new singer
	auraLines := applyTurnStartAuras(b, next)

	// step 12: logs and lock reset
	b.SkillUsedThisTurn = false
	b.UltUsedThisTurn = false
	b.TurnCount++

	resultEntry := game.LogEntry{
		BattleID: b.ID,
		Kind:     game.LogResult,
		Actor:    singer.Name,
		Team:     singer.Team,
		Title:    fmt.Sprintf("%s — %s (%+d)", themeTitle, result, tc.ownNet()),
		Lines:    tc.lines(),
	}
	turnLines := append(game.StringList{}, auraLines...)
	turnEntry := game.LogEntry{
		BattleID: b.ID,
		Kind:     game.LogTurn,
		Actor:    next.Name,
		Team:     next.Team,
		Title:    fmt.Sprintf("Up next: %s (%s)", next.Name, teamLabel(next.Team)),
		Lines:    turnLines,
	}
	return []game.LogEntry{resultEntry, turnEntry}, true, nil
}

// applyRolePassive contributes the singer's result-based passive (step 4).
// Turn-start auras (coach, hype, underdog) live in applyTurnStartAuras.
func applyRolePassive(tc *turnContext, success bool) {
	singer := tc.singer
	b := tc.b
	switch singer.Role {
	case game.RoleShowman:
		if success {
			tc.addPlayer(ShowmanPassiveBonus, "showman passive")
		}
	case game.RoleMaestro:
		if success && singer.Combo > 0 {
			tc.addPlayer(singer.Combo*MaestroPassivePerCombo, fmt.Sprintf("maestro passive: combo %d", singer.Combo))
		}
	case game.RoleMimic:
		if success {
			if last := b.BuffsFor(singer.Team).LastTeamDelta; last != 0 {
				tc.addPlayer(roundRatio(last, MimicPassiveRatio), "mimic passive: 30% echo")
			}
		}
	case game.RoleSaboteur:
		if success {
			tc.addEnemy(SaboteurPassiveEnemyHit, "saboteur passive")
		}
	case game.RoleUnderdog:
		if success && b.TeamScore(singer.Team) < b.TeamScore(singer.Team.Enemy()) {
			tc.addPlayer(UnderdogPassiveBonus, "underdog passive: fighting from behind")
		}
	case game.RoleGambler:
		// double down suppresses the passive swing for this turn
		if success && !singer.Buffs.DoubleDown {
			tc.addPlayer(gamblerSwing(), "gambler passive: luck swing")
		}
	}

	// inherited mimic passive (mimic ult): fires once, then expires
	if singer.Role != game.RoleMimic && singer.Buffs.MimicPassiveTurns > 0 && success {
		if last := b.BuffsFor(singer.Team).LastTeamDelta; last != 0 {
			tc.addPlayer(roundRatio(last, MimicPassiveRatio), "inherited mimic echo")
		}
		singer.Buffs.MimicPassiveTurns = 0
	}
}

// consumeArmedBuffs fires each armed effect at most once, in the fixed
// documented order, clearing it afterwards (step 5).
func consumeArmedBuffs(tc *turnContext, success bool) {
	singer := tc.singer

	if singer.Buffs.MaestroArmed {
		singer.Buffs.MaestroArmed = false
		if success {
			singer.Combo += MaestroComboStep
			if singer.Combo > MaestroComboMax {
				singer.Combo = MaestroComboMax
			}
			tc.note(fmt.Sprintf("maestro skill: combo rises to %d", singer.Combo))
		} else {
			tc.addPlayer(MaestroSkillFailPenalty, "maestro skill: combo broken")
		}
	}

	if singer.Buffs.ShowmanFlatArmed {
		singer.Buffs.ShowmanFlatArmed = false
		if success {
			tc.addPlayer(ShowmanSkillBonus, "showman skill")
		}
	}

	if singer.Buffs.DoubleDown {
		singer.Buffs.DoubleDown = false
		if success {
			tc.addPlayer(tc.ownNet(), "gambler skill: doubled down")
		} else {
			tc.addPlayer(GamblerFailPenalty-tc.ownNet(), "gambler skill: bust")
		}
	}

	if singer.Buffs.CoinFlip {
		singer.Buffs.CoinFlip = false
		if coinFlip() {
			tc.addPlayer(GamblerUltWin, "gambler ult: heads")
		} else {
			tc.addPlayer(GamblerUltLoss, "gambler ult: tails")
		}
	}

	if singer.Buffs.ShowmanUltArmed {
		singer.Buffs.ShowmanUltArmed = false
		if success {
			tc.addEnemy(ShowmanUltEnemyHit, "showman ult: showstopper")
		}
	}

	if singer.Buffs.HypeTurns > 0 {
		if success {
			tc.addPlayer(HypeSkillBonus, "hype skill")
		}
		singer.Buffs.HypeTurns--
	}

	if singer.Buffs.Safe && !success {
		singer.Buffs.Safe = false
		tc.addPlayer(CoachSafeRefund-BaseFail, fmt.Sprintf("coach safe: fail converted to %+d", CoachSafeRefund))
	}
}

// applyMitigation reduces a negative own-team net (step 6): ironwall
// skill/ult first (mutually exclusive, ult wins), then the 30% passive on
// whatever remains negative. The stacking is sequential by design of the
// rules, not multiplicative-then-additive.
func applyMitigation(tc *turnContext, sealed bool) {
	net := tc.ownNet()
	if net >= 0 {
		return
	}
	b := tc.b
	team := tc.singer.Team
	tb := b.BuffsFor(team)

	if tb.NegZeroTurns > 0 {
		tc.addPlayer(-net, "ironwall ult: loss zeroed")
		net = 0
	} else if tb.NegHalfTurns > 0 {
		mitigated := roundRatio(net, 0.5)
		tc.addPlayer(mitigated-net, "ironwall skill: loss halved")
		net = mitigated
	}

	if net < 0 && !sealed && tb.SealedTurns == 0 && b.HasRoleOnTeam(team, game.RoleIronwall) {
		mitigated := roundRatio(net, IronwallPassiveKeepRatio)
		if mitigated != net {
			tc.addPlayer(mitigated-net, "ironwall passive: loss softened")
		}
	}
}

// dealNextChallenge hands the singer their theme for their eventual future
// turn (step 9). Oracles get a 3-card candidate hand with slot 1 fixed to
// FREE THEME once the sung challenge is consumed; everyone else gets one
// card dealt directly.
func dealNextChallenge(b *game.Battle, singer *game.Member, pool []game.ThemeCard) error {
	if singer.Role == game.RoleOracle {
		singer.HasChallenge = false
		singer.Challenge = game.ThemeCard{}
		fresh, rest, err := deck.Draw(b.Deck, pool, 2)
		if err != nil {
			return err
		}
		b.Deck = rest
		singer.Candidates = append(game.ThemeCards{game.FreeTheme}, fresh...)
		return nil
	}
	card, rest, err := deck.DrawOne(b.Deck, pool)
	if err != nil {
		return err
	}
	b.Deck = rest
	singer.Challenge = card
	singer.HasChallenge = true
	return nil
}

// advanceSinger moves the current-singer pointer to the next onboarded
// member by turn order, wrapping (step 10). Members still owing a candidate
// choice are not skipped; they simply cannot resolve until they pick.
func advanceSinger(b *game.Battle, singer *game.Member) *game.Member {
	order := make([]*game.Member, 0, len(b.Members))
	for i := range b.Members {
		order = append(order, &b.Members[i])
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].TurnOrder < order[j].TurnOrder })

	cur := 0
	for i, m := range order {
		if m.MemberUUID == singer.MemberUUID {
			cur = i
			break
		}
	}
	for step := 1; step <= len(order); step++ {
		cand := order[(cur+step)%len(order)]
		if cand.Onboarded() {
			b.CurrentSinger = cand.MemberUUID
			return cand
		}
	}
	// no other eligible member; the singer keeps the mic
	b.CurrentSinger = singer.MemberUUID
	return singer
}

// applyTurnStartAuras fires the passives that trigger purely on turn start
// for the new current singer (step 11). These commit immediately and are
// reported in the TURN log entry.
func applyTurnStartAuras(b *game.Battle, next *game.Member) game.StringList {
	var lines game.StringList
	switch next.Role {
	case game.RoleCoach:
		c := applyTeamDelta(b, next.Team, game.ScopeTeam, CoachAura, "coach aura: team rallies")
		lines = append(lines, formatChange(c))
	case game.RoleHype:
		c := applyTeamDelta(b, next.Team, game.ScopeTeam, HypeAura, "hype aura: crowd warms up")
		lines = append(lines, formatChange(c))
	case game.RoleUnderdog:
		if b.TeamScore(next.Team) < b.TeamScore(next.Team.Enemy()) {
			c := applyMemberDelta(b, next, UnderdogAura, "underdog aura: nothing to lose")
			lines = append(lines, formatChange(c))
		}
	}
	return lines
}
