package utils

import "time"

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// DateBucket renders a timestamp as a UTC calendar-day bucket (YYYY-MM-DD).
// Date-scoped cache keys use this so all requests within one day share an entry.
func DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DaysUntil returns the number of whole days from `from` until `until`,
// rounding any partial day up. Negative spans return 0.
func DaysUntil(from, until time.Time) int {
	d := until.Sub(from)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// WholeDaysBetween returns the count of complete 24h periods between two
// instants, zero when `until` is not after `from`.
func WholeDaysBetween(from, until time.Time) int {
	d := until.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
