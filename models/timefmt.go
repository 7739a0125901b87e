// ABOUTME: Human-friendly relative time formatting for listings
// ABOUTME: Falls back to calendar dates once a timestamp is older than six months
package models

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders t relative to now, e.g. "3 days ago" or "Jan 2, 2006".
func FormatRelativeTime(t, now time.Time) string {
	days, weeks, months := elapsed(t, now)

	if months > 6 {
		return t.Format("Jan 2, 2006")
	}

	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case weeks == 1:
		return "1 week ago"
	case weeks < 4:
		return fmt.Sprintf("%d weeks ago", weeks)
	case months == 1:
		return "1 month ago"
	default:
		return fmt.Sprintf("%d months ago", months)
	}
}

// FormatRelativeTimeShort is the compact form used in tables, e.g. "3d ago".
func FormatRelativeTimeShort(t, now time.Time) string {
	days, weeks, months := elapsed(t, now)

	if months > 6 {
		return t.Format("Jan 2")
	}

	switch {
	case days == 0:
		return "today"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case weeks < 4:
		return fmt.Sprintf("%dw ago", weeks)
	default:
		return fmt.Sprintf("%dm ago", months)
	}
}

func elapsed(t, now time.Time) (days, weeks, months int) {
	days = int(now.Sub(t).Hours() / 24)
	return days, days / 7, days / 30
}
