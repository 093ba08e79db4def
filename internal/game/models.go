package game

import (
	"time"

	"gorm.io/gorm"
)

// TeamID identifies one of the two fixed battle teams.
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Enemy returns the opposing team. Returns "" for an unassigned team.
func (t TeamID) Enemy() TeamID {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	}
	return ""
}

// TurnResult is the externally-judged outcome of a singing turn.
type TurnResult string

const (
	ResultSuccess TurnResult = "SUCCESS"
	ResultFail    TurnResult = "FAIL"
)

// AbilityKind distinguishes the two one-shot ability slots of a role.
type AbilityKind string

const (
	AbilitySkill AbilityKind = "skill"
	AbilityUlt   AbilityKind = "ult"
)

// ThemeCard is a value type: two cards are the same card when both the
// title and the pass/fail criteria match.
type ThemeCard struct {
	Title    string `json:"title"`
	Criteria string `json:"criteria"`
}

func (c ThemeCard) Equal(o ThemeCard) bool {
	return c.Title == o.Title && c.Criteria == o.Criteria
}

func (c ThemeCard) IsZero() bool { return c.Title == "" && c.Criteria == "" }

// FreeTheme is the placeholder dealt into candidate slot 1 when a member
// has no current challenge to carry over.
var FreeTheme = ThemeCard{Title: "FREE THEME", Criteria: "Sing anything you like"}

// ThemeCards is stored as a JSON column (deck, candidate lists).
type ThemeCards []ThemeCard

// MemberBuffs holds every transient per-member positive effect. All fields
// default to their cleared state; effects are set and cleared by name, never
// by key presence.
type MemberBuffs struct {
	// Armed by abilities, consumed exactly once at the member's next
	// turn resolution.
	MaestroArmed     bool `json:"maestro_armed"`
	ShowmanFlatArmed bool `json:"showman_flat_armed"`
	ShowmanUltArmed  bool `json:"showman_ult_armed"`
	DoubleDown       bool `json:"double_down"`
	CoinFlip         bool `json:"coin_flip"`
	Safe             bool `json:"safe"`
	ForcedSuccess    bool `json:"forced_success"`
	// HypeTurns counts down on each of the member's own resolutions.
	HypeTurns int `json:"hype_turns"`
	// MimicPassiveTurns lets the member inherit the mimic passive once.
	MimicPassiveTurns int `json:"mimic_passive_turns"`
}

// MemberDebuffs holds per-member negative effects set by enemy abilities.
type MemberDebuffs struct {
	Sabotaged  bool `json:"sabotaged"`
	SealedOnce bool `json:"sealed_once"`
}

// TeamBuffs is the per-team buff record. NegHalfTurns and NegZeroTurns are
// mutually exclusive; the ult (zero) variant takes precedence when set.
type TeamBuffs struct {
	NegHalfTurns     int `json:"neg_half_turns"`
	NegZeroTurns     int `json:"neg_zero_turns"`
	SealedTurns      int `json:"sealed_turns"`
	NextSuccessBonus int `json:"next_success_bonus"`
	HypeUltTurns     int `json:"hype_ult_turns"`
	// LastTeamDelta is the most recent net successful turn delta for the
	// team; read by the mimic passive.
	LastTeamDelta int `json:"last_team_delta"`
}

// Member is a mutable per-match participant record.
type Member struct {
	gorm.Model
	BattleID   uint   `json:"-"`
	MemberUUID string `json:"member_uuid" gorm:"index"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Team       TeamID `json:"team"`
	Score      int    `json:"score"`
	// Combo is maestro-only in practice but stored generically (0..5).
	Combo     int           `json:"combo"`
	Role      RoleID        `json:"role"`
	SkillUses int           `json:"skill_uses"`
	UltUses   int           `json:"ult_uses"`
	Buffs     MemberBuffs   `json:"buffs" gorm:"embedded;embeddedPrefix:buff_"`
	Debuffs   MemberDebuffs `json:"debuffs" gorm:"embedded;embeddedPrefix:debuff_"`

	HasChallenge bool      `json:"has_challenge"`
	Challenge    ThemeCard `json:"challenge" gorm:"embedded;embeddedPrefix:challenge_"`
	// Candidates, when non-empty, blocks the member from being treated as
	// fully ready until a choice is made.
	Candidates ThemeCards `json:"candidates" gorm:"serializer:json"`

	TurnOrder int `json:"turn_order"`
	// LastTurnDelta is the member's own most recent net turn delta,
	// read by the mimic skill echo.
	LastTurnDelta int  `json:"last_turn_delta"`
	Online        bool `json:"online"`
}

// TableName stores per-battle participants in a dedicated table.
func (Member) TableName() string { return "battle_members" }

// Onboarded reports whether the member has both a team and a role and can
// therefore take singing turns.
func (m *Member) Onboarded() bool { return m.Team != "" && m.Role != "" }

// MidSelection reports whether the member still owes a candidate choice.
func (m *Member) MidSelection() bool { return len(m.Candidates) > 0 }

// OraclePickItem is one pending enemy-theme choice inside an oracle ult.
type OraclePickItem struct {
	TargetUUID string      `json:"target_uuid"`
	TargetName string      `json:"target_name"`
	Team       TeamID      `json:"team"`
	Choices    []ThemeCard `json:"choices"`
}

// OracleUltPick is the nested sub-state opened by the oracle's ultimate.
// While present it exclusively gates all turn progression and new ability
// activation; only completing the current pick is legal.
type OracleUltPick struct {
	ControllerUUID string           `json:"controller_uuid"`
	ControllerName string           `json:"controller_name"`
	EnemyTeam      TeamID           `json:"enemy_team"`
	Items          []OraclePickItem `json:"items"`
	Cursor         int              `json:"cursor"`
}

// ScoreScope classifies where a score change lands.
type ScoreScope string

const (
	ScopePlayer    ScoreScope = "PLAYER"
	ScopeTeam      ScoreScope = "TEAM"
	ScopeEnemyTeam ScoreScope = "ENEMY_TEAM"
)

// ScoreChange is one ledger entry. Every score mutation goes through one of
// these so a turn's net delta is always reconstructible from its log entry.
type ScoreChange struct {
	Scope  ScoreScope `json:"scope"`
	Target string     `json:"target"`
	From   int        `json:"from"`
	To     int        `json:"to"`
	Delta  int        `json:"delta"`
	Reason string     `json:"reason"`
}

// LogKind classifies the discrete per-turn log entries shown to clients.
type LogKind string

const (
	LogSkill  LogKind = "SKILL"
	LogUlt    LogKind = "ULT"
	LogResult LogKind = "RESULT"
	LogTurn   LogKind = "TURN"
	LogSystem LogKind = "SYSTEM"
)

// StringList is stored as a JSON column.
type StringList []string

// LogEntry is one structured history record, appended to a capped buffer.
type LogEntry struct {
	gorm.Model
	BattleID uint       `json:"-" gorm:"index"`
	Kind     LogKind    `json:"kind"`
	Actor    string     `json:"actor"`
	Team     TeamID     `json:"team"`
	Title    string     `json:"title"`
	Lines    StringList `json:"lines" gorm:"serializer:json"`
}

// TableName keeps the history table name explicit.
func (LogEntry) TableName() string { return "battle_logs" }

// AbilityFx is a short-lived event for transient UI overlays. It is not
// persisted; it is returned alongside the committed snapshot.
type AbilityFx struct {
	Kind     AbilityKind `json:"kind"`
	Actor    string      `json:"actor"`
	Role     RoleID      `json:"role"`
	Headline string      `json:"headline,omitempty"`
}

// Battle status values.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// Battle is the single shared state record per match. All state transitions
// are read-modify-write cycles against it, committed under an optimistic
// version check.
type Battle struct {
	gorm.Model
	Name     string   `json:"name" gorm:"size:32"`
	Private  bool     `json:"private"`
	JoinCode string   `json:"join_code" gorm:"unique"`
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Members  []Member `json:"members"`

	TeamAScore int       `json:"team_a_score"`
	TeamBScore int       `json:"team_b_score"`
	TeamABuffs TeamBuffs `json:"team_a_buffs" gorm:"embedded;embeddedPrefix:team_a_"`
	TeamBBuffs TeamBuffs `json:"team_b_buffs" gorm:"embedded;embeddedPrefix:team_b_"`

	// CurrentSinger holds the member UUID whose turn it is. Exactly one
	// member is the current singer once the battle is in progress.
	CurrentSinger string `json:"current_singer"`
	TurnCount     int    `json:"turn_count"`
	// Per-turn one-shot locks, reset when the turn advances. Skill and ult
	// are independent: the singer may use one of each in the same turn.
	SkillUsedThisTurn bool `json:"skill_used_this_turn"`
	UltUsedThisTurn   bool `json:"ult_used_this_turn"`

	Deck       ThemeCards     `json:"deck" gorm:"serializer:json"`
	OraclePick *OracleUltPick `json:"oracle_pick" gorm:"serializer:json"`

	// Inactivity handling (see the timeout scanner).
	ActionDeadline time.Time `json:"action_deadline"`
	ClaimedBy      string    `json:"-"`
	ClaimedUntil   time.Time `json:"-"`

	// Version is the optimistic concurrency token. Commits succeed only
	// when the stored version still matches the one that was read.
	Version int `json:"version"`
}

// MemberByUUID returns the member with the given UUID, or nil.
func (b *Battle) MemberByUUID(u string) *Member {
	for i := range b.Members {
		if b.Members[i].MemberUUID == u {
			return &b.Members[i]
		}
	}
	return nil
}

// CurrentSingerMember resolves the current-singer pointer, or nil.
func (b *Battle) CurrentSingerMember() *Member {
	if b.CurrentSinger == "" {
		return nil
	}
	return b.MemberByUUID(b.CurrentSinger)
}

// TeamScore returns the score of the given team.
func (b *Battle) TeamScore(t TeamID) int {
	if t == TeamA {
		return b.TeamAScore
	}
	return b.TeamBScore
}

// AddTeamScore applies a delta to the given team's score. Scores have no
// floor and no ceiling.
func (b *Battle) AddTeamScore(t TeamID, delta int) {
	if t == TeamA {
		b.TeamAScore += delta
		return
	}
	b.TeamBScore += delta
}

// BuffsFor returns the mutable buff record for the given team.
func (b *Battle) BuffsFor(t TeamID) *TeamBuffs {
	if t == TeamA {
		return &b.TeamABuffs
	}
	return &b.TeamBBuffs
}

// TeamMembers returns the onboarded members of a team.
func (b *Battle) TeamMembers(t TeamID) []*Member {
	out := make([]*Member, 0, len(b.Members))
	for i := range b.Members {
		if b.Members[i].Team == t && b.Members[i].Onboarded() {
			out = append(out, &b.Members[i])
		}
	}
	return out
}

// HasRoleOnTeam reports whether an onboarded member of the team holds the
// given role.
func (b *Battle) HasRoleOnTeam(t TeamID, role RoleID) bool {
	for _, m := range b.TeamMembers(t) {
		if m.Role == role {
			return true
		}
	}
	return false
}

// RoleInUse reports whether any onboarded member already holds the role.
// Role ids in use are pairwise distinct across both teams.
func (b *Battle) RoleInUse(role RoleID) bool {
	for i := range b.Members {
		if b.Members[i].Onboarded() && b.Members[i].Role == role {
			return true
		}
	}
	return false
}
