package engine

import (
	"fmt"
	"math"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

// Score tunables. Deltas are integers; ratios round to the nearest integer
// (half away from zero).
const (
	BaseSuccess             = 1000
	BaseFail                = -500
	SabotageSuccessOverride = 0

	ShowmanPassiveBonus = 500
	ShowmanSkillBonus   = 500
	ShowmanUltEnemyHit  = -2000

	MaestroComboStep        = 2
	MaestroComboMax         = 5
	MaestroSkillFailPenalty = -500
	MaestroUltPerCombo      = 800
	MaestroNextSuccessBonus = 500
	MaestroPassivePerCombo  = 200

	CoachSafeRefund = 300
	CoachAura       = 150

	HypeSkillBonus = 500
	HypeSkillTurns = 2
	HypeUltBonus   = 500
	HypeUltTurns   = 3
	HypeAura       = 400

	SaboteurPassiveEnemyHit = -300

	UnderdogPassiveBonus = 400
	UnderdogAura         = 500
	UnderdogSkillRatio   = 0.20
	UnderdogSkillCap     = 2000
	UnderdogUltRatio     = 0.50
	UnderdogUltCap       = 5000

	GamblerFailPenalty = -2000
	GamblerUltWin      = 5000
	GamblerUltLoss     = -1000
	GamblerSwingMin    = -200
	GamblerSwingMax    = 400

	MimicPassiveRatio = 0.30
	MimicEchoRatio    = 0.50

	IronwallPassiveKeepRatio = 0.70
)

// sabotageFailPenalty is config-overridable (default -1000).
var sabotageFailPenalty = -1000

// SetSabotageFailPenalty overrides the fixed delta a sabotaged singer takes
// on a failed turn.
func SetSabotageFailPenalty(v int) { sabotageFailPenalty = v }

// SabotageFailPenalty returns the currently configured sabotage fail delta.
func SabotageFailPenalty() int { return sabotageFailPenalty }

func roundRatio(v int, ratio float64) int {
	return int(math.Round(float64(v) * ratio))
}

func teamLabel(t game.TeamID) string { return "Team " + string(t) }

func formatChange(c game.ScoreChange) string {
	return fmt.Sprintf("%s %+d — %s (%d -> %d)", c.Target, c.Delta, c.Reason, c.From, c.To)
}

// applyTeamDelta mutates a team score immediately and returns the ledger
// entry. Used for ability effects that land outside turn resolution.
func applyTeamDelta(b *game.Battle, t game.TeamID, scope game.ScoreScope, delta int, reason string) game.ScoreChange {
	from := b.TeamScore(t)
	b.AddTeamScore(t, delta)
	return game.ScoreChange{
		Scope:  scope,
		Target: teamLabel(t),
		From:   from,
		To:     from + delta,
		Delta:  delta,
		Reason: reason,
	}
}

// applyMemberDelta mutates a member's personal score plus their team score
// and returns the ledger entry scoped to the player.
func applyMemberDelta(b *game.Battle, m *game.Member, delta int, reason string) game.ScoreChange {
	from := m.Score
	m.Score += delta
	b.AddTeamScore(m.Team, delta)
	return game.ScoreChange{
		Scope:  game.ScopePlayer,
		Target: m.Name,
		From:   from,
		To:     from + delta,
		Delta:  delta,
		Reason: reason,
	}
}

// turnContext accumulates a single turn's score changes before they are
// committed in one step. Singer-side contributions stay pending so the
// negative-delta mitigation can act on the running net; enemy-side hits are
// tracked separately and are never mitigated here.
type turnContext struct {
	b      *game.Battle
	singer *game.Member

	changes []game.ScoreChange
	notes   []string

	playerNet int
	teamNet   int
	enemyNet  int

	runPlayer int
	runOwn    int
	runEnemy  int
}

func newTurnContext(b *game.Battle, singer *game.Member) *turnContext {
	return &turnContext{
		b:         b,
		singer:    singer,
		changes:   make([]game.ScoreChange, 0, 8),
		runPlayer: singer.Score,
		runOwn:    b.TeamScore(singer.Team),
		runEnemy:  b.TeamScore(singer.Team.Enemy()),
	}
}

func (tc *turnContext) note(s string) { tc.notes = append(tc.notes, s) }

// addPlayer records a contribution that lands on the singer personally
// (and therefore on their team as well).
func (tc *turnContext) addPlayer(delta int, reason string) {
	tc.changes = append(tc.changes, game.ScoreChange{
		Scope:  game.ScopePlayer,
		Target: tc.singer.Name,
		From:   tc.runPlayer,
		To:     tc.runPlayer + delta,
		Delta:  delta,
		Reason: reason,
	})
	tc.runPlayer += delta
	tc.runOwn += delta
	tc.playerNet += delta
}

// addTeam records a team-level bonus for the singer's team.
func (tc *turnContext) addTeam(delta int, reason string) {
	tc.changes = append(tc.changes, game.ScoreChange{
		Scope:  game.ScopeTeam,
		Target: teamLabel(tc.singer.Team),
		From:   tc.runOwn,
		To:     tc.runOwn + delta,
		Delta:  delta,
		Reason: reason,
	})
	tc.runOwn += delta
	tc.teamNet += delta
}

// addEnemy records a hit on the enemy team.
func (tc *turnContext) addEnemy(delta int, reason string) {
	enemy := tc.singer.Team.Enemy()
	tc.changes = append(tc.changes, game.ScoreChange{
		Scope:  game.ScopeEnemyTeam,
		Target: teamLabel(enemy),
		From:   tc.runEnemy,
		To:     tc.runEnemy + delta,
		Delta:  delta,
		Reason: reason,
	})
	tc.runEnemy += delta
	tc.enemyNet += delta
}

// ownNet is the pending net delta for the singer's team this turn.
func (tc *turnContext) ownNet() int { return tc.playerNet + tc.teamNet }

// commit applies the pending deltas to the shared record in one step and
// updates the per-member and per-team bookkeeping the armed effects read.
func (tc *turnContext) commit(success bool) {
	net := tc.ownNet()
	tc.singer.Score += tc.playerNet
	tc.b.AddTeamScore(tc.singer.Team, net)
	tc.b.AddTeamScore(tc.singer.Team.Enemy(), tc.enemyNet)
	tc.singer.LastTurnDelta = net
	if success {
		tc.b.BuffsFor(tc.singer.Team).LastTeamDelta = net
	}
}

// lines renders the ledger plus notes for the RESULT log entry.
func (tc *turnContext) lines() game.StringList {
	out := make(game.StringList, 0, len(tc.changes)+len(tc.notes))
	for _, c := range tc.changes {
		out = append(out, formatChange(c))
	}
	out = append(out, tc.notes...)
	return out
}
