package progression

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`(?i)^(\d+)\s*(minute|hour|day)s?$`)

var durationUnits = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseDoubleExpDuration parses "<integer> <minute|hour|day>[s]", e.g. "30 minutes" or "1 day".
func ParseDoubleExpDuration(input string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return 0, fmt.Errorf("%q: %w", input, ErrInvalidDuration)
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%q: %w", input, ErrInvalidDuration)
	}

	unit := durationUnits[strings.ToLower(match[2])]
	if value > int64(math.MaxInt64/unit) {
		return 0, fmt.Errorf("%q is too long: %w", input, ErrInvalidDuration)
	}
	return time.Duration(value) * unit, nil
}
