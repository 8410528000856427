package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/impulse/expbot/expbot/config"
)

// ProgressBar renders percent (clamped to 0..100) as a fixed-width bar.
func ProgressBar(percent int) string {
	percent = max(0, min(percent, 100))
	filled := percent * config.ProgressBarLen / 100

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(strings.Repeat("■", filled))
	bar.WriteString(strings.Repeat("□", config.ProgressBarLen-filled))
	bar.WriteString(fmt.Sprintf("] %d%%", percent))
	return bar.String()
}

// FormatExp renders an amount with the EXP unit and thousands separators.
func FormatExp(exp int64) string {
	return FormatNumber(exp) + " " + config.ExpUnit
}

func FormatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}

	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(s[i : i+3])
	}
	return sign + out.String()
}

// FormatDuration renders d in the largest whole units, e.g. "1d 2h" or "45m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
