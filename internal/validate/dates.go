package validate

import (
	"strings"
	"time"
)

// dateLayouts covers the formats documents actually arrive in. Order matters:
// US month-first layouts are tried before day-first ones.
var dateLayouts = []string{
	"01/02/2006", "2006-01-02", "01-02-2006", "02/01/2006",
	"2006/01/02", "01.02.2006", "02.01.2006", "2006.01.02",
	"January 2, 2006", "Jan 2, 2006", "2 January 2006", "2 Jan 2006",
	"01/02/06", "06-01-02", "01-02-06",
	"1/2/2006", "2006-1-2",
}

// ParseDate parses a free-form date string, trying each supported layout in
// turn. Returns the zero time and false when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isExpired reports whether s parses to a date strictly before now.
// Unparseable dates are never expired.
func isExpired(s string, now time.Time) bool {
	t, ok := ParseDate(s)
	return ok && t.Before(now)
}

// expiringSoon reports whether s falls strictly between now and now+days.
func expiringSoon(s string, now time.Time, days int) bool {
	t, ok := ParseDate(s)
	if !ok {
		return false
	}
	return t.After(now) && t.Before(now.AddDate(0, 0, days))
}

// dateLogicOK checks that the issue date precedes the expiration date.
// Missing or unparseable dates cannot be validated and pass.
func dateLogicOK(issue, expiration string) bool {
	i, ok1 := ParseDate(issue)
	e, ok2 := ParseDate(expiration)
	if !ok1 || !ok2 {
		return true
	}
	return i.Before(e)
}

// ageYears is the rough age in whole years at now, matching a 365-day year.
func ageYears(dob, now time.Time) int {
	return int(now.Sub(dob).Hours() / 24 / 365)
}
