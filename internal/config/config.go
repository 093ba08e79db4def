package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akikan18/shibari-karaoke/internal/game"
)

type themeEntry struct {
	Title    string `json:"title"`
	Criteria string `json:"criteria"`
}

type rawConfig struct {
	ThemePool []themeEntry `json:"theme_pool"`
	Server    *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Optional engine overrides.
	SabotageFailPenalty *int `json:"sabotage_fail_penalty"`
	// Seconds without a committed transition before a battle is expired.
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`
}

// LoadedConfig contains the theme pool and server settings.
type LoadedConfig struct {
	Pool                []game.ThemeCard
	ServerAddress       string
	ActionTimeout       time.Duration
	SabotageFailPenalty *int
}

// LoadConfig reads the configuration file at path. It requires a non-empty
// `theme_pool` array with unique (title, criteria) cards.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(rc.ThemePool) == 0 {
		return nil, fmt.Errorf("config file %s: theme_pool is empty (provide a 'theme_pool' array)", path)
	}

	pool := make([]game.ThemeCard, 0, len(rc.ThemePool))
	seen := make(map[string]struct{}, len(rc.ThemePool))
	for _, t := range rc.ThemePool {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			return nil, fmt.Errorf("config file %s: theme entry missing 'title'", path)
		}
		key := strings.ToLower(title) + "\x00" + strings.ToLower(strings.TrimSpace(t.Criteria))
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("config file %s: duplicate theme card '%s'", path, t.Title)
		}
		seen[key] = struct{}{}
		pool = append(pool, game.ThemeCard{Title: title, Criteria: strings.TrimSpace(t.Criteria)})
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	timeout := 10 * time.Minute
	if rc.ActionTimeoutSeconds > 0 {
		timeout = time.Duration(rc.ActionTimeoutSeconds) * time.Second
	}

	return &LoadedConfig{
		Pool:                pool,
		ServerAddress:       addr,
		ActionTimeout:       timeout,
		SabotageFailPenalty: rc.SabotageFailPenalty,
	}, nil
}
