package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"viralspiral/internal/domain"
)

type GameConfig struct {
	WinScore            int     `json:"win_score"`
	TGBEndScore         int     `json:"tgb_end_score"`
	BiasCardProbability float64 `json:"bias_card_probability"`

	ViralSpiralBiasCount     int  `json:"viral_spiral_bias_count"`
	ViralSpiralAffinityCount int  `json:"viral_spiral_affinity_count"`
	CancellingAffinityCount  int  `json:"cancelling_affinity_count"`
	FakeNewsBiasCount        int  `json:"fake_news_bias_count"`
	CancelVoteAllPlayers     bool `json:"cancel_vote_all_players"`

	ExcludedBiasTargets []string `json:"excluded_bias_targets"`

	// TickRateHz is how often the scheduler advances, per second.
	TickRateHz int `json:"tick_rate_hz"`
	// HeartbeatTicks is the number of ticks between lobby snapshots.
	HeartbeatTicks int `json:"heartbeat_ticks"`
	MaxGames       int `json:"max_games"`

	GrantSecret    string `json:"grant_secret"`
	GrantIssuer    string `json:"grant_issuer"`
	CatalogPath    string `json:"catalog_path"`
	DefaultPlayers int    `json:"default_players"`
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

// Rules maps the loaded configuration onto the engine rule set, falling back
// to the defaults for anything unset.
func Rules() domain.Rules {
	rules := domain.DefaultRules()
	if cfg == nil {
		return rules
	}
	if cfg.WinScore > 0 {
		rules.WinScore = cfg.WinScore
	}
	if cfg.TGBEndScore > 0 {
		rules.TGBEndScore = cfg.TGBEndScore
	}
	if cfg.BiasCardProbability > 0 {
		rules.BiasCardProbability = cfg.BiasCardProbability
	}
	if cfg.ViralSpiralBiasCount > 0 {
		rules.ViralSpiralBiasCount = cfg.ViralSpiralBiasCount
	}
	if cfg.ViralSpiralAffinityCount > 0 {
		rules.ViralSpiralAffinityCount = cfg.ViralSpiralAffinityCount
	}
	if cfg.CancellingAffinityCount > 0 {
		rules.CancellingAffinityCount = cfg.CancellingAffinityCount
	}
	if cfg.FakeNewsBiasCount > 0 {
		rules.FakeNewsBiasCount = cfg.FakeNewsBiasCount
	}
	rules.CancelVoteAllPlayers = cfg.CancelVoteAllPlayers
	rules.ExcludedBiasTargets = cfg.ExcludedBiasTargets
	return rules
}

// TickRateHz returns the configured scheduler rate, defaulting to 2.
func TickRateHz() int {
	if cfg == nil || cfg.TickRateHz <= 0 {
		return 2
	}
	return cfg.TickRateHz
}

// HeartbeatTicks returns the lobby heartbeat interval in ticks, defaulting
// to 10.
func HeartbeatTicks() int {
	if cfg == nil || cfg.HeartbeatTicks <= 0 {
		return 10
	}
	return cfg.HeartbeatTicks
}

// MaxGames returns the concurrent game cap, defaulting to 32.
func MaxGames() int {
	if cfg == nil || cfg.MaxGames <= 0 {
		return 32
	}
	return cfg.MaxGames
}

// DefaultPlayers returns the slot count for games created without an
// explicit size.
func DefaultPlayers() int {
	if cfg == nil || cfg.DefaultPlayers <= 0 {
		return 4
	}
	return cfg.DefaultPlayers
}
