package engine

import (
	"testing"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

func testPool() []game.ThemeCard {
	return []game.ThemeCard{
		{Title: "80s only", Criteria: "Song released in the 1980s"},
		{Title: "Falsetto", Criteria: "Hit the chorus in falsetto"},
		{Title: "Duet solo", Criteria: "Sing both parts of a duet"},
		{Title: "No lyrics screen", Criteria: "Sing without the prompter"},
		{Title: "One breath", Criteria: "First verse in one breath"},
		{Title: "Air guitar", Criteria: "Solo must be performed"},
	}
}

// twoTeamBattle builds an in-progress battle with one singer per team.
// s1 (team A) holds the mic.
func twoTeamBattle(singerRole, otherRole game.RoleID) *game.Battle {
	pool := testPool()
	b := &game.Battle{
		Status: game.StatusInProgress,
		Members: []game.Member{
			{MemberUUID: "s1", Name: "Aki", Team: game.TeamA, Role: singerRole, SkillUses: 3, UltUses: 1, TurnOrder: 1, HasChallenge: true, Challenge: pool[0]},
			{MemberUUID: "s2", Name: "Ben", Team: game.TeamB, Role: otherRole, SkillUses: 3, UltUses: 1, TurnOrder: 2, HasChallenge: true, Challenge: pool[1]},
		},
		CurrentSinger: "s1",
		Deck:          game.ThemeCards(pool),
	}
	return b
}

func TestResolveTurn_BaseSuccess(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	logs, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	s1 := b.MemberByUUID("s1")
	if s1.Score != BaseSuccess {
		t.Fatalf("expected singer score %d, got %d", BaseSuccess, s1.Score)
	}
	if b.TeamAScore != BaseSuccess {
		t.Fatalf("expected team A score %d, got %d", BaseSuccess, b.TeamAScore)
	}
	if s1.LastTurnDelta != BaseSuccess {
		t.Fatalf("expected last turn delta %d, got %d", BaseSuccess, s1.LastTurnDelta)
	}
	if b.CurrentSinger != "s2" {
		t.Fatalf("expected mic to pass to s2, got %s", b.CurrentSinger)
	}
	if b.TurnCount != 1 {
		t.Fatalf("expected turn count 1, got %d", b.TurnCount)
	}
	if len(logs) != 2 || logs[0].Kind != game.LogResult || logs[1].Kind != game.LogTurn {
		t.Fatalf("expected RESULT+TURN entries, got %+v", logs)
	}
}

func TestResolveTurn_MitigationOrdering(t *testing.T) {
	// Sabotaged fail (-1000), ironwall skill halves it (-500), then the
	// ironwall passive keeps 70% of what remains (-350).
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.Members = append(b.Members, game.Member{MemberUUID: "s3", Name: "Cam", Team: game.TeamA, Role: game.RoleIronwall, TurnOrder: 3})
	b.MemberByUUID("s1").Debuffs.Sabotaged = true
	b.TeamABuffs.NegHalfTurns = 1

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != -350 {
		t.Fatalf("expected singer score -350, got %d", got)
	}
	if b.TeamAScore != -350 {
		t.Fatalf("expected team A score -350, got %d", b.TeamAScore)
	}
	if b.MemberByUUID("s1").Debuffs.Sabotaged {
		t.Fatalf("sabotage should be consumed")
	}
	if b.TeamABuffs.NegHalfTurns != 0 {
		t.Fatalf("ironwall skill countdown should be consumed, got %d", b.TeamABuffs.NegHalfTurns)
	}
}

func TestResolveTurn_IronwallUltZeroesLoss(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.TeamABuffs.NegZeroTurns = 1

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != 0 {
		t.Fatalf("expected loss zeroed, got %d", got)
	}
	if b.TeamABuffs.NegZeroTurns != 0 {
		t.Fatalf("ironwall ult countdown should be consumed")
	}
}

func TestResolveTurn_SabotageFailPenalty(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.MemberByUUID("s1").Debuffs.Sabotaged = true

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != SabotageFailPenalty() {
		t.Fatalf("expected the configured penalty %d, got %d", SabotageFailPenalty(), got)
	}
}

func TestResolveTurn_SabotageVoidsSuccess(t *testing.T) {
	b := twoTeamBattle(game.RoleShowman, game.RoleSaboteur)
	b.MemberByUUID("s1").Debuffs.Sabotaged = true

	logs, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	// no base, no showman passive: the override suppresses all of step 3-5
	if got := b.MemberByUUID("s1").Score; got != 0 {
		t.Fatalf("expected zeroed success, got %d", got)
	}
	if len(logs[0].Lines) == 0 {
		t.Fatalf("expected an explicit zero-delta ledger line")
	}
}

func TestResolveTurn_SealedSuppressesPassivesAndArmed(t *testing.T) {
	b := twoTeamBattle(game.RoleShowman, game.RoleSaboteur)
	s1 := b.MemberByUUID("s1")
	s1.Debuffs.SealedOnce = true
	s1.Buffs.ShowmanFlatArmed = true

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if s1.Score != BaseSuccess {
		t.Fatalf("expected only the base result while sealed, got %d", s1.Score)
	}
	if s1.Debuffs.SealedOnce {
		t.Fatalf("seal should clear after the turn")
	}
	// sealed turns skip consumption entirely, so the buff stays armed
	if !s1.Buffs.ShowmanFlatArmed {
		t.Fatalf("armed buff should not be consumed on a sealed turn")
	}
}

func TestResolveTurn_DoubleDownDoubles(t *testing.T) {
	b := twoTeamBattle(game.RoleGambler, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.DoubleDown = true

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	// passive swing is suppressed while doubling down, so the net is exact
	if got := b.MemberByUUID("s1").Score; got != 2*BaseSuccess {
		t.Fatalf("expected %d, got %d", 2*BaseSuccess, got)
	}
}

func TestResolveTurn_DoubleDownBust(t *testing.T) {
	b := twoTeamBattle(game.RoleGambler, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.DoubleDown = true

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != GamblerFailPenalty {
		t.Fatalf("expected bust to land exactly at %d, got %d", GamblerFailPenalty, got)
	}
}

func TestResolveTurn_NextSuccessBonusConsumedOnce(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.TeamABuffs.NextSuccessBonus = MaestroNextSuccessBonus

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if b.TeamAScore != BaseSuccess+MaestroNextSuccessBonus {
		t.Fatalf("expected %d, got %d", BaseSuccess+MaestroNextSuccessBonus, b.TeamAScore)
	}
	if b.TeamABuffs.NextSuccessBonus != 0 {
		t.Fatalf("bonus should be consumed")
	}
}

func TestResolveTurn_NextSuccessBonusNotConsumedOnFail(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.TeamABuffs.NextSuccessBonus = MaestroNextSuccessBonus

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if b.TeamABuffs.NextSuccessBonus != MaestroNextSuccessBonus {
		t.Fatalf("bonus should survive a failed turn")
	}
}

func TestResolveTurn_ForcedSuccessOverridesFail(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.ForcedSuccess = true

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != BaseSuccess {
		t.Fatalf("expected forced success to pay %d, got %d", BaseSuccess, got)
	}
	if b.MemberByUUID("s1").Buffs.ForcedSuccess {
		t.Fatalf("forced success should be consumed")
	}
}

func TestResolveTurn_CoachSafeConvertsFail(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.Safe = true

	_, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if got := b.MemberByUUID("s1").Score; got != CoachSafeRefund {
		t.Fatalf("expected fail converted to %d, got %d", CoachSafeRefund, got)
	}
	if b.MemberByUUID("s1").Buffs.Safe {
		t.Fatalf("safe should be consumed by the fail")
	}
}

func TestResolveTurn_SafeSurvivesSuccess(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.Safe = true

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if !b.MemberByUUID("s1").Buffs.Safe {
		t.Fatalf("safe should stay armed across successes")
	}
}

func TestResolveTurn_MimicPassiveEcho(t *testing.T) {
	b := twoTeamBattle(game.RoleMimic, game.RoleSaboteur)
	b.TeamABuffs.LastTeamDelta = 1000

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	want := BaseSuccess + 300 // 30% of the previous team delta
	if got := b.MemberByUUID("s1").Score; got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
	if b.TeamABuffs.LastTeamDelta != want {
		t.Fatalf("expected LastTeamDelta updated to %d, got %d", want, b.TeamABuffs.LastTeamDelta)
	}
}

func TestResolveTurn_InheritedMimicEchoFiresOnce(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	s1 := b.MemberByUUID("s1")
	s1.Buffs.MimicPassiveTurns = 2
	b.TeamABuffs.LastTeamDelta = 1000

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	want := BaseSuccess + 300
	if s1.Score != want {
		t.Fatalf("expected %d, got %d", want, s1.Score)
	}
	if s1.Buffs.MimicPassiveTurns != 0 {
		t.Fatalf("inherited echo should expire after firing, got %d turns left", s1.Buffs.MimicPassiveTurns)
	}
}

func TestResolveTurn_SaboteurPassiveHitsEnemy(t *testing.T) {
	b := twoTeamBattle(game.RoleSaboteur, game.RoleCoach)

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	// enemy hit lands before the mic passes; the new singer is a coach so
	// their aura then pays the enemy team back 150
	if b.TeamBScore != SaboteurPassiveEnemyHit+CoachAura {
		t.Fatalf("expected team B at %d, got %d", SaboteurPassiveEnemyHit+CoachAura, b.TeamBScore)
	}
	if b.TeamAScore != BaseSuccess {
		t.Fatalf("enemy hit must not be mitigated or mixed into team A, got %d", b.TeamAScore)
	}
}

func TestResolveTurn_TurnStartAuras(t *testing.T) {
	b := twoTeamBattle(game.RoleSaboteur, game.RoleUnderdog)
	b.TeamBScore = -1000 // behind: underdog aura fires when s2 takes the mic

	logs, ok, err := ResolveTurn(b, game.ResultFail, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	s2 := b.MemberByUUID("s2")
	if s2.Score != UnderdogAura {
		t.Fatalf("expected underdog aura %d on the new singer, got %d", UnderdogAura, s2.Score)
	}
	if len(logs[1].Lines) == 0 {
		t.Fatalf("aura should be reported in the TURN entry")
	}
}

func TestResolveTurn_CountdownsDecrementOnOwnTurn(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.TeamABuffs.SealedTurns = 2
	b.TeamABuffs.HypeUltTurns = 3
	b.TeamBBuffs.SealedTurns = 1 // enemy countdown must not move

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if b.TeamABuffs.SealedTurns != 1 || b.TeamABuffs.HypeUltTurns != 2 {
		t.Fatalf("expected countdowns 1/2, got %d/%d", b.TeamABuffs.SealedTurns, b.TeamABuffs.HypeUltTurns)
	}
	if b.TeamBBuffs.SealedTurns != 1 {
		t.Fatalf("enemy countdown must not decrement on team A's turn")
	}
}

func TestResolveTurn_TeamSealSuppressesButBasePays(t *testing.T) {
	b := twoTeamBattle(game.RoleShowman, game.RoleSaboteur)
	b.TeamABuffs.SealedTurns = 1

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	// team seal blocks activations, not the base result or passives
	if got := b.MemberByUUID("s1").Score; got != BaseSuccess+ShowmanPassiveBonus {
		t.Fatalf("expected %d, got %d", BaseSuccess+ShowmanPassiveBonus, got)
	}
}

func TestResolveTurn_NoOpWhileOraclePickActive(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.OraclePick = &game.OracleUltPick{ControllerUUID: "s2"}

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("resolution must be blocked while an oracle pick is active")
	}
}

func TestResolveTurn_NoOpWhileMidSelection(t *testing.T) {
	b := twoTeamBattle(game.RoleOracle, game.RoleSaboteur)
	s1 := b.MemberByUUID("s1")
	s1.HasChallenge = false
	s1.Challenge = game.ThemeCard{}
	s1.Candidates = game.ThemeCards{game.FreeTheme, testPool()[2], testPool()[3]}

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("a singer owing a candidate choice cannot resolve")
	}
}

func TestResolveTurn_DealsNextChallenge(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	s1 := b.MemberByUUID("s1")
	if !s1.HasChallenge || s1.Challenge.IsZero() {
		t.Fatalf("singer should leave the turn with a fresh challenge")
	}
}

func TestResolveTurn_OracleGetsCandidateHand(t *testing.T) {
	b := twoTeamBattle(game.RoleOracle, game.RoleSaboteur)
	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	s1 := b.MemberByUUID("s1")
	if s1.HasChallenge {
		t.Fatalf("oracle's next theme must come from a candidate pick")
	}
	if len(s1.Candidates) != 3 || !s1.Candidates[0].Equal(game.FreeTheme) {
		t.Fatalf("expected a 3-card hand led by the free theme, got %+v", s1.Candidates)
	}
}

func TestResolveTurn_LocksResetForNextTurn(t *testing.T) {
	b := twoTeamBattle(game.RoleCoach, game.RoleSaboteur)
	b.SkillUsedThisTurn = true
	b.UltUsedThisTurn = true

	_, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if b.SkillUsedThisTurn || b.UltUsedThisTurn {
		t.Fatalf("per-turn locks must reset when the mic passes")
	}
}

func TestResolveTurn_NetReconstructsFromLedger(t *testing.T) {
	b := twoTeamBattle(game.RoleShowman, game.RoleSaboteur)
	b.MemberByUUID("s1").Buffs.ShowmanFlatArmed = true
	b.TeamABuffs.NextSuccessBonus = 500

	logs, ok, err := ResolveTurn(b, game.ResultSuccess, testPool())
	if err != nil || !ok {
		t.Fatalf("expected turn to resolve, ok=%v err=%v", ok, err)
	}
	if b.TeamAScore != BaseSuccess+ShowmanPassiveBonus+ShowmanSkillBonus+500 {
		t.Fatalf("unexpected team A score %d", b.TeamAScore)
	}
	// every mutation must be visible in the RESULT entry
	if len(logs[0].Lines) < 4 {
		t.Fatalf("expected a ledger line per contribution, got %v", logs[0].Lines)
	}
}
