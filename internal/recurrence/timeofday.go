package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeOfDay parses a 24-hour "HH:MM" value into its components.
func ParseTimeOfDay(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTimeOfDay
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTimeOfDay
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTimeOfDay
	}

	return hour, minute, nil
}

// FormatTimeOfDay renders hour and minute as a zero-padded "HH:MM" string.
func FormatTimeOfDay(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
