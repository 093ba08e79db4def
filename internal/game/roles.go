package game

// RoleID is a closed enumeration of the ten playable roles. Ability
// dispatch is a switch over this type, not a string-keyed lookup.
type RoleID string

const (
	RoleMaestro  RoleID = "maestro"
	RoleShowman  RoleID = "showman"
	RoleIronwall RoleID = "ironwall"
	RoleCoach    RoleID = "coach"
	RoleOracle   RoleID = "oracle"
	RoleMimic    RoleID = "mimic"
	RoleHype     RoleID = "hype"
	RoleSaboteur RoleID = "saboteur"
	RoleUnderdog RoleID = "underdog"
	RoleGambler  RoleID = "gambler"
)

// NoUltMarker is the literal ult text that means a role has no ultimate.
// Roles carrying it start with zero ult uses.
const NoUltMarker = "no ult"

// DefaultSkillUses is the per-match skill budget every role starts with.
const DefaultSkillUses = 3

// RoleSpec is the static catalog entry for a role: display texts plus the
// default use counts handed out at role assignment.
type RoleSpec struct {
	ID      RoleID `json:"id"`
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Passive string `json:"passive"`
	Skill   string `json:"skill"`
	Ult     string `json:"ult"`
}

// DefaultUltUses derives the starting ult budget from the catalog text.
func (r RoleSpec) DefaultUltUses() int {
	if r.Ult == NoUltMarker {
		return 0
	}
	return 1
}

// Catalog lists the ten roles in display order.
var Catalog = []RoleSpec{
	{ID: RoleMaestro, Name: "Maestro", Tag: "combo",
		Passive: "Successful turns pay out per combo stack",
		Skill:   "Arm: next success builds +2 combo (max 5), a fail costs 500",
		Ult:     "Cash out combo x800 for the team and arm a +500 next-success bonus"},
	{ID: RoleShowman, Name: "Showman", Tag: "burst",
		Passive: "+500 on every successful turn",
		Skill:   "Arm: +500 flat if this turn succeeds",
		Ult:     "Arm: on success the enemy team loses 2000"},
	{ID: RoleIronwall, Name: "Ironwall", Tag: "defense",
		Passive: "Softens the team's own-turn losses by 30%",
		Skill:   "This team turn: negative deltas are halved",
		Ult:     "This team turn: negative deltas are zeroed"},
	{ID: RoleCoach, Name: "Coach", Tag: "support",
		Passive: "+150 to the team whenever the coach steps up to sing",
		Skill:   "Shield an ally: their next fail pays +300 instead",
		Ult:     "Guarantee an ally: their next turn counts as SUCCESS"},
	{ID: RoleOracle, Name: "Oracle", Tag: "control",
		Passive: "Always sings from a hand of three candidate themes",
		Skill:   "Reroll an ally's candidates (keeps their current theme as option 1)",
		Ult:     "Choose the next theme for every ready enemy singer"},
	{ID: RoleMimic, Name: "Mimic", Tag: "echo",
		Passive: "Successful turns echo 30% of the team's last winning delta",
		Skill:   "Immediately copy 50% of your own last turn's net delta",
		Ult:     "Every ally inherits the mimic echo for their next turn"},
	{ID: RoleHype, Name: "Hype", Tag: "aura",
		Passive: "+400 to the team whenever the hype steps up to sing",
		Skill:   "An ally's next two successes pay +500 each",
		Ult:     "For three team turns every success pays +500"},
	{ID: RoleSaboteur, Name: "Saboteur", Tag: "attack",
		Passive: "Own successes chip the enemy team for 300",
		Skill:   "Sabotage an enemy: their next turn scores 0 or -1000",
		Ult:     "Seal an enemy: their next turn runs without any effects"},
	{ID: RoleUnderdog, Name: "Underdog", Tag: "comeback",
		Passive: "+400 on success while the team is behind",
		Skill:   "Steal 20% of the score gap (max 2000) from the leaders",
		Ult:     "Claw back 50% of the deficit (max 5000)"},
	{ID: RoleGambler, Name: "Gambler", Tag: "chaos",
		Passive: "Every success swings by a random amount",
		Skill:   "Double down: success doubles this turn's delta, a fail costs 2000",
		Ult:     "Coin flip at your next resolution: +5000 or -1000"},
}

// RoleByID looks up a catalog entry.
func RoleByID(id RoleID) (RoleSpec, bool) {
	for _, r := range Catalog {
		if r.ID == id {
			return r, true
		}
	}
	return RoleSpec{}, false
}
