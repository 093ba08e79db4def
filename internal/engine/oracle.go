package engine

import (
	"fmt"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

// PickOracleTheme completes one item of an active oracle-ult pick. While the
// sub-state is present this is the only legal state-mutating operation; the
// caller must be the controller (or an authorized overseer), the target must
// match the cursor item, and the chosen card must be one of its choices
// (compared by value). Returns ok=false without mutation otherwise.
func PickOracleTheme(b *game.Battle, callerUUID string, overseer bool, targetUUID string, chosen game.ThemeCard) ([]game.LogEntry, bool) {
	pick := b.OraclePick
	if pick == nil {
		return nil, false
	}
	if !overseer && callerUUID != pick.ControllerUUID {
		return nil, false
	}
	if pick.Cursor < 0 || pick.Cursor >= len(pick.Items) {
		return nil, false
	}
	item := pick.Items[pick.Cursor]
	if item.TargetUUID != targetUUID {
		return nil, false
	}
	if !containsCard(item.Choices, chosen) {
		return nil, false
	}
	target := b.MemberByUUID(targetUUID)
	if target == nil {
		return nil, false
	}

	target.Challenge = chosen
	target.HasChallenge = true
	target.Candidates = nil
	pick.Cursor++

	lines := game.StringList{
		fmt.Sprintf("%s will sing %q", target.Name, chosen.Title),
	}
	done := pick.Cursor >= len(pick.Items)
	if done {
		// sub-state cleared: control returns to the outer turn machine
		b.OraclePick = nil
		lines = append(lines, "all enemy themes chosen")
	}
	entry := game.LogEntry{
		BattleID: b.ID,
		Kind:     game.LogSystem,
		Actor:    pick.ControllerName,
		Team:     pick.EnemyTeam.Enemy(),
		Title:    "Oracle decree",
		Lines:    lines,
	}
	return []game.LogEntry{entry}, true
}

// PickCandidate resolves a member's pending theme choice. It does not
// advance the turn; it only unblocks the member from being mid-selection.
// Overseers may pick on behalf of offline or guest members; that
// authorization is the caller's concern.
func PickCandidate(b *game.Battle, memberUUID string, chosen game.ThemeCard) bool {
	m := b.MemberByUUID(memberUUID)
	if m == nil || !m.MidSelection() {
		return false
	}
	if !containsCard(m.Candidates, chosen) {
		return false
	}
	m.Challenge = chosen
	m.HasChallenge = true
	m.Candidates = nil
	return true
}

func containsCard(cards []game.ThemeCard, c game.ThemeCard) bool {
	for _, x := range cards {
		if x.Equal(c) {
			return true
		}
	}
	return false
}
