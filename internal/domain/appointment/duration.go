package appointment

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDuration = "30 minutes"
	fallbackLength  = 30 * time.Minute
)

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes?|hours?)`)
	strictDuration  = regexp.MustCompile(`(?i)^\s*([1-9]\d*)\s+(minutes?|hours?)\s*$`)
)

// ParseDuration reads "<n> minute(s)" or "<n> hour(s)" anywhere in s.
// Anything else yields exactly 30 minutes; read paths never fail on a bad duration.
func ParseDuration(s string) time.Duration {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return fallbackLength
	}
	n, unit, ok := amount(m[1], m[2])
	if !ok {
		return fallbackLength
	}
	return time.Duration(n) * unit
}

// amount reports false when n units would not fit in a time.Duration.
func amount(digits, unitName string) (int64, time.Duration, bool) {
	unit := time.Minute
	if strings.HasPrefix(strings.ToLower(unitName), "hour") {
		unit = time.Hour
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, 0, false
	}
	return n, unit, true
}

// FormatDuration writes whole hours as "1 hour"/"<n> hours" and everything else in minutes.
func FormatDuration(minutes int) string {
	if minutes >= 60 && minutes%60 == 0 {
		if h := minutes / 60; h > 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// ValidateDuration is the strict check applied on create: a positive integer, a space, a unit.
func ValidateDuration(s string) error {
	m := strictDuration.FindStringSubmatch(s)
	if m == nil {
		return ErrInvalidDuration
	}
	if _, _, ok := amount(m[1], m[2]); !ok {
		return ErrInvalidDuration
	}
	return nil
}
