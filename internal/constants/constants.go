package constants

// Centralized constants for env keys, routes and shared strings.
const (
	// Environment variable keys
	EnvConfigPath = "SHIBARI_CONFIG"
	EnvDBPath     = "SHIBARI_DB"

	DefaultConfigPath = "./shibari_config.json"
	DefaultDBPath     = "./data/shibari.db"
)

// Routes used by the backend router
const (
	RouteAPIPrefix        = "/api"
	RouteVersion          = "/version"
	RouteRoles            = "/roles"
	RoutePublicBattles    = "/public-battles"
	RouteBattles          = "/battles"
	RouteBattlesJoin      = "/battles/join"
	RouteBattleByCode     = "/battles/:battleCode"
	RouteBattleLog        = "/battles/:battleCode/log"
	RouteBattleAbility    = "/battles/:battleCode/ability"
	RouteBattleResolve    = "/battles/:battleCode/resolve"
	RouteBattleCandidate  = "/battles/:battleCode/candidate"
	RouteBattleOraclePick = "/battles/:battleCode/oracle-pick"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyApplied = "applied"
	JSONKeyBattle  = "battle"
	JSONKeyFx      = "fx"
	JSONKeyMember  = "member_uuid"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrInvalidBattleCode     = "Invalid battle code"
	ErrBattleNotFound        = "Battle not found"
	ErrFailedCreateBattle    = "Failed to create battle"
	ErrFailedFetchBattles    = "Failed to fetch battles"
	ErrFailedFetchLog        = "Failed to fetch battle log"
	ErrFailedEncodeBattle    = "Failed to encode battle"
	ErrFailedCommit          = "Failed to store transition"
	ErrBattleNameExceeds     = "Battle name exceeds 32 characters"
	ErrTransientConflict     = "Temporarily unable to commit; try again"
	ErrThemePoolEmpty        = "No theme cards configured"
	ErrTooManyRequests       = "Too many requests"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldMember   = "member_uuid"
	LogFieldAddr     = "addr"
	LogFieldCode     = "join_code"
)
