package casework

import (
	"strings"
	"time"

	"github.com/ompisal63/smart-pothole-system/api"
)

// FilterMode selects exactly one dashboard status filter.
type FilterMode string

// Dashboard filter modes.
const (
	FilterAll      FilterMode = "all"
	FilterToday    FilterMode = "today"
	FilterOpen     FilterMode = "open"
	FilterResolved FilterMode = "resolved"
)

// ParseFilterMode maps user input to a filter mode, defaulting to All.
func ParseFilterMode(s string) FilterMode {
	switch FilterMode(strings.ToLower(s)) {
	case FilterToday:
		return FilterToday
	case FilterOpen:
		return FilterOpen
	case FilterResolved:
		return FilterResolved
	default:
		return FilterAll
	}
}

// Filter applies the dashboard's pure local filtering: a
// case-insensitive substring match over id, name, and mobile, composed
// with one status filter. It never re-fetches; now anchors the Today
// filter's date prefix.
func Filter(complaints []api.Complaint, query string, mode FilterMode, now time.Time) []api.Complaint {
	query = strings.ToLower(query)
	today := now.Format("2006-01-02")

	var out []api.Complaint
	for _, c := range complaints {
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		switch mode {
		case FilterToday:
			if !strings.HasPrefix(c.Timestamp, today) {
				continue
			}
		case FilterOpen:
			if c.Status != "OPEN" {
				continue
			}
		case FilterResolved:
			if c.Status != "RESOLVED" {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func matchesQuery(c api.Complaint, query string) bool {
	return strings.Contains(strings.ToLower(c.ComplaintID), query) ||
		strings.Contains(strings.ToLower(c.FullName), query) ||
		strings.Contains(strings.ToLower(c.Mobile), query)
}
