package main

import (
	"testing"
	"time"

	"github.com/example/tutor-scheduler/internal/config"
)

func TestResolveRange(t *testing.T) {
	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.MaterializeWindowDays = 30

	now := time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults to the configured window", func(t *testing.T) {
		from, to, err := resolveRange(cfg, "", "", now)
		if err != nil {
			t.Fatalf("resolveRange returned error: %v", err)
		}
		if !from.Equal(now) {
			t.Fatalf("expected range to start now, got %s", from)
		}
		if !to.Equal(now.AddDate(0, 0, 30)) {
			t.Fatalf("expected 30 day window, got %s", to)
		}
	})

	t.Run("accepts RFC 3339 boundaries", func(t *testing.T) {
		from, to, err := resolveRange(cfg, "2025-10-01T00:00:00Z", "2025-10-31T23:59:59Z", now)
		if err != nil {
			t.Fatalf("resolveRange returned error: %v", err)
		}
		if !from.Equal(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected from: %s", from)
		}
		if !to.Equal(time.Date(2025, time.October, 31, 23, 59, 59, 0, time.UTC)) {
			t.Fatalf("unexpected to: %s", to)
		}
	})

	t.Run("date-only end covers the whole day", func(t *testing.T) {
		_, to, err := resolveRange(cfg, "2025-10-01", "2025-10-31", now)
		if err != nil {
			t.Fatalf("resolveRange returned error: %v", err)
		}
		want := time.Date(2025, time.October, 31, 23, 59, 59, 999000000, time.UTC)
		if !to.Equal(want) {
			t.Fatalf("expected end of day %s, got %s", want, to)
		}
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		if _, _, err := resolveRange(cfg, "2025-10-31", "2025-10-01", now); err == nil {
			t.Fatal("expected error for inverted range")
		}
	})

	t.Run("rejects unparseable boundaries", func(t *testing.T) {
		if _, _, err := resolveRange(cfg, "next tuesday", "", now); err == nil {
			t.Fatal("expected error for unparseable boundary")
		}
	})
}
