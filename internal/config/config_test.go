package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:      "postgres://localhost/art",
		LLMAPIKey:        "sk-test",
		CuratorMode:      CuratorModeVision,
		ArticEnabled:     true,
		CurationSchedule: "04:00",
		CurationTimezone: "Local",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsUnknownCuratorMode(t *testing.T) {
	cfg := validConfig()
	cfg.CuratorMode = "telepathy"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown curator mode")
	}
}

func TestValidateRequiresGoogleKeyAndEngineTogether(t *testing.T) {
	cfg := validConfig()
	cfg.GoogleAPIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when SEARCH_ENGINE_ID is missing")
	}
	cfg.SearchEngineID = "cx"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresAtLeastOneSource(t *testing.T) {
	cfg := validConfig()
	cfg.ArticEnabled = false
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without sources")
	}
}

func TestScheduleClock(t *testing.T) {
	cfg := validConfig()
	cfg.CurationSchedule = "07:45"
	h, m, err := cfg.ScheduleClock()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 7 || m != 45 {
		t.Fatalf("expected 07:45, got %02d:%02d", h, m)
	}

	cfg.CurationSchedule = "4am"
	if _, _, err := cfg.ScheduleClock(); err == nil {
		t.Fatalf("expected error for malformed schedule")
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("expected time.Local, got %v (%v)", loc, err)
	}

	cfg.CurationTimezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v (%v)", loc, err)
	}

	cfg.CurationTimezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
