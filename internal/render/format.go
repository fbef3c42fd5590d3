package render

import (
	"fmt"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatYuan formats a yuan amount with 亿/万 suffixes.
func FormatYuan(v float64) string {
	switch {
	case v >= 1e8:
		return fmt.Sprintf("%.2f亿", v/1e8)
	case v >= 1e4:
		return fmt.Sprintf("%.1f万", v/1e4)
	case v == 0:
		return "-"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatPct formats a percentage with a sign, e.g. "+3.2%".
func FormatPct(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

// FormatSealTime formats an "HHMMSS" seal time as "HH:MM:SS", or "-" when
// missing.
func FormatSealTime(s string) string {
	if len(s) != 6 {
		return "-"
	}
	return s[:2] + ":" + s[2:4] + ":" + s[4:]
}

// FormatStreak renders a consecutive limit-up count, e.g. "3连板" or "首板".
func FormatStreak(n int) string {
	if n <= 1 {
		return "首板"
	}
	return fmt.Sprintf("%d连板", n)
}
