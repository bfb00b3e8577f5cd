package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/tutor-scheduler/internal/config"
)

// resolveRange turns the --from/--to flags into a concrete closed range.
// Empty flags fall back to the configured materialization window starting
// now. A date-only --to covers the whole day.
func resolveRange(cfg config.Config, fromFlag, toFlag string, now time.Time) (from, to time.Time, err error) {
	location, err := cfg.Location()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	defaultFrom, defaultTo := cfg.MaterializeWindow(now)

	from = defaultFrom
	if strings.TrimSpace(fromFlag) != "" {
		from, _, err = parseBoundary(fromFlag, location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
	}

	to = defaultTo
	if strings.TrimSpace(toFlag) != "" {
		var dateOnly bool
		to, dateOnly, err = parseBoundary(toFlag, location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s is before range start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}

// parseBoundary accepts either an RFC 3339 timestamp or a plain date
// interpreted in the configured time zone.
func parseBoundary(value string, location *time.Location) (parsed time.Time, dateOnly bool, err error) {
	value = strings.TrimSpace(value)
	if parsed, err = time.Parse(time.RFC3339, value); err == nil {
		return parsed, false, nil
	}
	if parsed, err = time.ParseInLocation("2006-01-02", value, location); err == nil {
		return parsed, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%q is neither an RFC 3339 timestamp nor a YYYY-MM-DD date", value)
}
