package service

import (
	"testing"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/storage"
	"gorm.io/gorm"
)

type mockRepo struct {
	battles       map[uint]*game.Battle
	committed     *game.Battle
	committedLogs []game.LogEntry
	commits       int
	// conflictsLeft makes the first N commits fail with a version conflict.
	conflictsLeft int
}

func (m *mockRepo) GetBattleByID(id uint) (*game.Battle, error) {
	if b, ok := m.battles[id]; ok {
		return copyBattle(b), nil
	}
	return nil, gorm.ErrRecordNotFound
}

// copyBattle returns an independent snapshot, matching the real repository's
// contract that every read loads a fresh record: a retry after a version
// conflict must not see mutations from the failed attempt.
func copyBattle(b *game.Battle) *game.Battle {
	cp := *b
	cp.Members = make([]game.Member, len(b.Members))
	for i, m := range b.Members {
		cp.Members[i] = m
		cp.Members[i].Candidates = append(game.ThemeCards{}, m.Candidates...)
	}
	cp.Deck = append(game.ThemeCards{}, b.Deck...)
	if b.OraclePick != nil {
		op := *b.OraclePick
		op.Items = append([]game.OraclePickItem{}, b.OraclePick.Items...)
		cp.OraclePick = &op
	}
	return &cp
}

func (m *mockRepo) FindBattleByJoinCode(code string) (*game.Battle, error) {
	for _, b := range m.battles {
		if b.JoinCode == code {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepo) CreateBattle(b *game.Battle) error {
	if m.battles == nil {
		m.battles = map[uint]*game.Battle{}
	}
	b.ID = uint(len(m.battles) + 1)
	m.battles[b.ID] = b
	return nil
}

func (m *mockRepo) CommitBattle(b *game.Battle, logs []game.LogEntry) error {
	m.commits++
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return storage.ErrVersionConflict
	}
	b.Version++
	m.battles[b.ID] = b
	m.committed = b
	m.committedLogs = append(m.committedLogs, logs...)
	return nil
}

func servicePool() []game.ThemeCard {
	return []game.ThemeCard{
		{Title: "80s only", Criteria: "Song released in the 1980s"},
		{Title: "Falsetto", Criteria: "Hit the chorus in falsetto"},
		{Title: "Duet solo", Criteria: "Sing both parts of a duet"},
		{Title: "One breath", Criteria: "First verse in one breath"},
	}
}

func inProgressBattle() *game.Battle {
	pool := servicePool()
	return &game.Battle{
		JoinCode: "AAAA1111",
		Status:   game.StatusInProgress,
		Members: []game.Member{
			{MemberUUID: "s1", Name: "Aki", Team: game.TeamA, Role: game.RoleCoach, SkillUses: 3, UltUses: 1, TurnOrder: 1, HasChallenge: true, Challenge: pool[0]},
			{MemberUUID: "s2", Name: "Ben", Team: game.TeamB, Role: game.RoleSaboteur, SkillUses: 3, UltUses: 1, TurnOrder: 2, HasChallenge: true, Challenge: pool[1]},
		},
		CurrentSinger: "s1",
		Deck:          game.ThemeCards(pool),
	}
}

func TestResolveTurn_CommitsAndRefreshesDeadline(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	before := time.Now()
	got, applied, err := ResolveTurn(mr, b.ID, "s1", false, game.ResultSuccess, servicePool(), 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatalf("expected the turn to apply")
	}
	if got.TurnCount != 1 {
		t.Fatalf("expected turn count 1, got %d", got.TurnCount)
	}
	if !got.ActionDeadline.After(before) {
		t.Fatalf("a committed transition must push the inactivity deadline")
	}
	if len(mr.committedLogs) != 2 {
		t.Fatalf("expected RESULT+TURN entries committed, got %d", len(mr.committedLogs))
	}
}

func TestResolveTurn_WrongCallerIsNoOp(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	got, applied, err := ResolveTurn(mr, b.ID, "s2", false, game.ResultSuccess, servicePool(), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatalf("a caller without the mic cannot resolve")
	}
	if got == nil || got.TurnCount != 0 {
		t.Fatalf("the no-op must still return the authoritative snapshot")
	}
	if mr.commits != 0 {
		t.Fatalf("a no-op must not write")
	}
}

func TestResolveTurn_OverseerMayResolve(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	_, applied, err := ResolveTurn(mr, b.ID, "", true, game.ResultFail, servicePool(), time.Minute)
	if err != nil || !applied {
		t.Fatalf("an overseer resolves on the singer's behalf, applied=%v err=%v", applied, err)
	}
}

func TestTransition_RetriesOnVersionConflict(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{conflictsLeft: 2}
	_ = mr.CreateBattle(b)

	_, applied, err := ResolveTurn(mr, b.ID, "s1", false, game.ResultSuccess, servicePool(), time.Minute)
	if err != nil || !applied {
		t.Fatalf("expected success after retries, applied=%v err=%v", applied, err)
	}
	if mr.commits != 3 {
		t.Fatalf("expected 3 commit attempts, got %d", mr.commits)
	}
}

func TestTransition_GivesUpAfterMaxRetries(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{conflictsLeft: 100}
	_ = mr.CreateBattle(b)

	_, _, err := ResolveTurn(mr, b.ID, "s1", false, game.ResultSuccess, servicePool(), time.Minute)
	if err != ErrConflictRetriesExhausted {
		t.Fatalf("expected ErrConflictRetriesExhausted, got %v", err)
	}
	if mr.commits != maxCommitRetries {
		t.Fatalf("expected %d attempts, got %d", maxCommitRetries, mr.commits)
	}
}

func TestActivateAbility_ReturnsFx(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	got, fx, applied, err := ActivateAbility(mr, b.ID, "s1", game.AbilitySkill, "s1", servicePool(), time.Minute)
	if err != nil || !applied {
		t.Fatalf("expected activation, applied=%v err=%v", applied, err)
	}
	if fx == nil || fx.Kind != game.AbilitySkill {
		t.Fatalf("expected an fx event, got %+v", fx)
	}
	if !got.MemberByUUID("s1").Buffs.Safe {
		t.Fatalf("coach skill should mark the target safe")
	}
}

func TestActivateAbility_NoOpReturnsNoFx(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	got, fx, applied, err := ActivateAbility(mr, b.ID, "s2", game.AbilitySkill, "s2", servicePool(), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied || fx != nil {
		t.Fatalf("a refused activation has no fx, applied=%v fx=%+v", applied, fx)
	}
	if got == nil {
		t.Fatalf("the no-op must still return the snapshot")
	}
}

func TestHandleTimedOutBattle_Finishes(t *testing.T) {
	b := inProgressBattle()
	mr := &mockRepo{}
	_ = mr.CreateBattle(b)

	if err := HandleTimedOutBattle(mr, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.committed == nil || mr.committed.Status != game.StatusFinished {
		t.Fatalf("expected the battle to finish, got %+v", mr.committed)
	}
	if len(mr.committedLogs) != 1 || mr.committedLogs[0].Kind != game.LogSystem {
		t.Fatalf("expected one SYSTEM entry, got %+v", mr.committedLogs)
	}
}
