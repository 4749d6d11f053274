package config

import "testing"

func TestLoadGameConfigAccessors(t *testing.T) {
	if err := LoadGameConfig("testdata/game_config.json"); err != nil {
		t.Fatalf("load: %v", err)
	}

	c := GetGameConfig()
	if c == nil {
		t.Fatalf("config not retained after load")
	}
	if c.ShareTokenIssuer != "dominoes-test" {
		t.Fatalf("issuer = %q, want dominoes-test", c.ShareTokenIssuer)
	}

	if got := TurnDuration(); got != 20 {
		t.Fatalf("turn duration = %d, want 20", got)
	}
	if got := DefaultVariant(); got != "all_fives" {
		t.Fatalf("default variant = %q, want all_fives", got)
	}
	if got := DefaultTargetScore(); got != 150 {
		t.Fatalf("default target = %d, want 150", got)
	}
	if got := BotAutoFillDelay(); got != 4 {
		t.Fatalf("auto-fill delay = %d, want 4", got)
	}
	if min, max := BotDelayRangeMs(); min != 1200 || max != 2600 {
		t.Fatalf("bot delay range = %d..%d, want 1200..2600", min, max)
	}

	// The loader runs once; a second call does not replace the config.
	_ = LoadGameConfig("testdata/no_such_file.json")
	if GetGameConfig() != c {
		t.Fatalf("second load replaced the config")
	}
}
