package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/deck"
	"github.com/akikan18/shibari-karaoke/internal/game"

	"github.com/google/uuid"
)

// CreateBattle initializes a fresh battle with a shuffled deck and the
// given join code. The battle waits until both teams have at least one
// onboarded member.
func CreateBattle(repo BattleRepo, name string, private bool, joinCode string, pool []game.ThemeCard) (*game.Battle, error) {
	if len(pool) == 0 {
		return nil, deck.ErrEmptyPool
	}
	b := &game.Battle{
		Name:     name,
		Private:  private,
		JoinCode: joinCode,
		Status:   game.StatusWaiting,
		Message:  "Waiting for singers",
		Deck:     deck.Shuffle(pool),
	}
	if err := repo.CreateBattle(b); err != nil {
		return nil, err
	}
	return b, nil
}

// JoinBattle adds a member with a team and role to the battle. Role ids
// must be pairwise distinct across onboarded members. The new member gets
// the role's default use counts, the next turn-order slot and an initial
// challenge deal. When both teams become populated the battle starts.
func JoinBattle(repo BattleRepo, joinCode, name, avatar string, team game.TeamID, role game.RoleID, pool []game.ThemeCard, actionTimeout time.Duration) (*game.Battle, string, error) {
	if name == "" {
		return nil, "", ErrNameRequired
	}
	if team != game.TeamA && team != game.TeamB {
		return nil, "", ErrInvalidTeam
	}
	spec, ok := game.RoleByID(role)
	if !ok {
		return nil, "", ErrUnknownRole
	}

	found, err := repo.FindBattleByJoinCode(joinCode)
	if err != nil {
		return nil, "", ErrBattleNotFound
	}

	memberUUID := uuid.NewString()
	var joinErr error
	b, applied, err := transition(repo, found.ID, actionTimeout, func(b *game.Battle) ([]game.LogEntry, bool, error) {
		joinErr = nil
		if b.Status == game.StatusFinished {
			joinErr = ErrBattleNotJoinable
			return nil, false, nil
		}
		if b.RoleInUse(role) {
			joinErr = ErrRoleTaken
			return nil, false, nil
		}

		m := game.Member{
			MemberUUID: memberUUID,
			Name:       name,
			Avatar:     avatar,
			Team:       team,
			Role:       role,
			SkillUses:  game.DefaultSkillUses,
			UltUses:    spec.DefaultUltUses(),
			TurnOrder:  nextTurnOrder(b),
			Online:     true,
		}
		if err := dealInitialChallenge(b, &m, pool); err != nil {
			return nil, false, err
		}
		b.Members = append(b.Members, m)

		logs := []game.LogEntry{{
			Kind:  game.LogSystem,
			Actor: name,
			Team:  team,
			Title: fmt.Sprintf("%s joins %s as %s", name, "Team "+string(team), spec.Name),
		}}
		if b.Status == game.StatusWaiting && len(b.TeamMembers(game.TeamA)) > 0 && len(b.TeamMembers(game.TeamB)) > 0 {
			b.Status = game.StatusInProgress
			b.Message = "Battle on"
			b.CurrentSinger = firstSinger(b)
			logs = append(logs, game.LogEntry{
				Kind:  game.LogSystem,
				Title: "Both teams ready — battle starts",
			})
		}
		return logs, true, nil
	})
	if err != nil {
		return nil, "", err
	}
	if !applied {
		if joinErr != nil {
			return nil, "", joinErr
		}
		return nil, "", ErrBattleNotJoinable
	}
	return b, memberUUID, nil
}

func nextTurnOrder(b *game.Battle) int {
	max := 0
	for i := range b.Members {
		if b.Members[i].TurnOrder > max {
			max = b.Members[i].TurnOrder
		}
	}
	return max + 1
}

func firstSinger(b *game.Battle) string {
	idx := make([]*game.Member, 0, len(b.Members))
	for i := range b.Members {
		if b.Members[i].Onboarded() {
			idx = append(idx, &b.Members[i])
		}
	}
	if len(idx) == 0 {
		return ""
	}
	sort.SliceStable(idx, func(i, j int) bool { return idx[i].TurnOrder < idx[j].TurnOrder })
	return idx[0].MemberUUID
}

// dealInitialChallenge hands a joining member their first theme. Oracles
// start from a 3-card candidate hand; everyone else gets one card directly.
func dealInitialChallenge(b *game.Battle, m *game.Member, pool []game.ThemeCard) error {
	if m.Role == game.RoleOracle {
		fresh, rest, err := deck.Draw(b.Deck, pool, 2)
		if err != nil {
			return err
		}
		b.Deck = rest
		m.Candidates = append(game.ThemeCards{game.FreeTheme}, fresh...)
		return nil
	}
	card, rest, err := deck.DrawOne(b.Deck, pool)
	if err != nil {
		return err
	}
	b.Deck = rest
	m.Challenge = card
	m.HasChallenge = true
	return nil
}
