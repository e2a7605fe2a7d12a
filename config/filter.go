package config

import (
	"strconv"
	"strings"
	"time"
)

// ExpandFilter substitutes date tokens in a filter pattern so a static
// config can match only today's entries:
//
//	%{month} — abbreviated month name, e.g. Jan
//	%{day}   — day of month with an optional leading zero, e.g. 0?5
//
// A pattern like `%{month}\s+%{day}` becomes `Jan\s+0?5` on January 5th.
// Patterns without tokens pass through unchanged.
func ExpandFilter(pattern string, now time.Time) string {
	if pattern == "" {
		return ""
	}

	day := strconv.Itoa(now.Day())
	if now.Day() < 10 {
		day = "0?" + day
	}

	r := strings.NewReplacer(
		"%{month}", now.Format("Jan"),
		"%{day}", day,
	)

	return r.Replace(pattern)
}
