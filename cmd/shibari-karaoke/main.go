package main

import (
	"os"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/api"
	"github.com/akikan18/shibari-karaoke/internal/config"
	"github.com/akikan18/shibari-karaoke/internal/constants"
	"github.com/akikan18/shibari-karaoke/internal/engine"
	"github.com/akikan18/shibari-karaoke/internal/logging"
	"github.com/akikan18/shibari-karaoke/internal/service"
	"github.com/akikan18/shibari-karaoke/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	timeoutScanInterval = 30 * time.Second
	timeoutScanBatch    = 16
	timeoutClaimLease   = time.Minute
)

func main() {
	// Theme pool configuration file (required). Path may be provided via
	// SHIBARI_CONFIG env var or defaults to ./shibari_config.json in the
	// current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid shibari configuration", err, logging.Fields{"config_path": configPath, "hint": "create a shibari_config.json with a 'theme_pool' array of cards (title,criteria) and optional server.address"})
	}

	// The sabotage fail penalty is the one score constant operators tune.
	if cfg.SabotageFailPenalty != nil {
		engine.SetSabotageFailPenalty(*cfg.SabotageFailPenalty)
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = constants.DefaultDBPath
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize the database", err, logging.Fields{"db_path": dbPath})
	}

	repo := storage.NewSQLiteRepository(db)
	handler := api.NewBattleHandler(repo, cfg.Pool, cfg.ActionTimeout)

	go runTimeoutScanner(repo)

	router := gin.Default()
	router.Use(api.CORSMiddleware())
	router.Use(api.RateLimitMiddleware(api.NewIPRateLimiter(rate.Limit(20), 40)))

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, api.GetVersion)
		apiRoutes.GET(constants.RouteRoles, handler.ListRoles)
		apiRoutes.GET(constants.RoutePublicBattles, handler.ListPublicBattles)

		apiRoutes.POST(constants.RouteBattles, handler.CreateBattle)
		apiRoutes.POST(constants.RouteBattlesJoin, handler.JoinBattle)
		apiRoutes.GET(constants.RouteBattleByCode, handler.GetBattle)
		apiRoutes.GET(constants.RouteBattleLog, handler.GetBattleLog)
		apiRoutes.POST(constants.RouteBattleAbility, handler.SubmitAbility)
		apiRoutes.POST(constants.RouteBattleResolve, handler.SubmitResult)
		apiRoutes.POST(constants.RouteBattleCandidate, handler.PickCandidate)
		apiRoutes.POST(constants.RouteBattleOraclePick, handler.PickOracleTheme)
	}

	addr := cfg.ServerAddress
	displayAddr := addr
	if len(addr) > 0 && addr[0] == ':' {
		displayAddr = "http://localhost" + addr
	}
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: displayAddr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start the server", err, nil)
	}
}

// runTimeoutScanner periodically expires battles whose action deadline has
// passed. Each scan claims a small batch under a lease so multiple server
// instances sharing a database never double-finish a battle.
func runTimeoutScanner(repo storage.Repository) {
	owner := uuid.NewString()
	ticker := time.NewTicker(timeoutScanInterval)
	defer ticker.Stop()
	for range ticker.C {
		ids, err := repo.ClaimTimedOutBattleIDs(time.Now(), timeoutScanBatch, timeoutClaimLease, owner)
		if err != nil {
			logging.Warn("timeout scan failed", err, nil)
			continue
		}
		for _, id := range ids {
			if err := service.HandleTimedOutBattle(repo, id); err != nil {
				logging.Error("failed to expire battle", err, logging.Fields{constants.LogFieldBattleID: id})
			}
		}
	}
}
