package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	DefaultVariant      string `json:"default_variant"`
	DefaultTargetScore  int    `json:"default_target_score"`
	TurnDurationSeconds int    `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int    `json:"bot_auto_fill_delay_seconds"`
	BotMinDelayMs           int    `json:"bot_min_delay_ms"`
	BotMaxDelayMs           int    `json:"bot_max_delay_ms"`
	ShareTokenIssuer        string `json:"share_token_issuer"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// TurnDuration returns the configured turn clock in seconds, or a safe
// default when no config was loaded.
func TurnDuration() int {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 30
	}
	return cfg.TurnDurationSeconds
}

// DefaultVariant returns the variant used when a lobby does not name one.
func DefaultVariant() string {
	if cfg == nil || cfg.DefaultVariant == "" {
		return "block"
	}
	return cfg.DefaultVariant
}

// DefaultTargetScore returns the match target used when a lobby does not
// set one.
func DefaultTargetScore() int {
	if cfg == nil || cfg.DefaultTargetScore <= 0 {
		return 100
	}
	return cfg.DefaultTargetScore
}

// BotAutoFillDelay returns how long a solo human lobby waits before bots
// fill the remaining seats, in seconds.
func BotAutoFillDelay() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 5
	}
	return cfg.BotAutoFillDelaySeconds
}

// BotDelayRangeMs returns the simulated thinking delay bounds for bots.
func BotDelayRangeMs() (int, int) {
	min, max := 800, 2500
	if cfg != nil && cfg.BotMinDelayMs > 0 {
		min = cfg.BotMinDelayMs
	}
	if cfg != nil && cfg.BotMaxDelayMs >= min {
		max = cfg.BotMaxDelayMs
	}
	if max < min {
		max = min
	}
	return min, max
}
