package config

import (
	"os"
	"path/filepath"
	"testing"
)

// Loading is process-global behind a sync.Once, so defaults and the loaded
// state are checked in one ordered test.
func TestLoadGameConfig(t *testing.T) {
	if GetGameConfig() != nil {
		t.Fatal("config should start unloaded")
	}
	rules := Rules()
	if rules.WinScore != 10 || rules.TGBEndScore != 15 {
		t.Fatalf("default rules = %+v", rules)
	}
	if TickRateHz() != 2 || HeartbeatTicks() != 10 || MaxGames() != 32 || DefaultPlayers() != 4 {
		t.Fatal("unloaded host settings should fall back to defaults")
	}

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"win_score": 7,
		"tgb_end_score": 12,
		"bias_card_probability": 0.3,
		"cancelling_affinity_count": 4,
		"cancel_vote_all_players": true,
		"excluded_bias_targets": ["yellow"],
		"tick_rate_hz": 5,
		"max_games": 8
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("load config: %v", err)
	}

	rules = Rules()
	if rules.WinScore != 7 {
		t.Fatalf("win score = %d, want 7", rules.WinScore)
	}
	if rules.TGBEndScore != 12 {
		t.Fatalf("tgb end score = %d, want 12", rules.TGBEndScore)
	}
	if rules.CancellingAffinityCount != 4 {
		t.Fatalf("cancelling affinity count = %d, want 4", rules.CancellingAffinityCount)
	}
	if !rules.CancelVoteAllPlayers {
		t.Fatal("cancel_vote_all_players should carry through")
	}
	if !rules.BiasTargetExcluded("yellow") {
		t.Fatal("yellow should be an excluded bias target")
	}
	// Unset fields keep their defaults.
	if rules.ViralSpiralBiasCount != 2 {
		t.Fatalf("viral spiral bias count = %d, want default 2", rules.ViralSpiralBiasCount)
	}
	if TickRateHz() != 5 || MaxGames() != 8 {
		t.Fatal("host settings should come from the file")
	}
	if HeartbeatTicks() != 10 {
		t.Fatal("unset heartbeat_ticks should keep its default")
	}
}
