package expiry

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"doctrack-cli/internal/model"
)

// Status is the derived urgency bucket of a document. It is never stored:
// callers recompute it from the expiry date and "now" so it cannot drift
// within a session.
type Status string

const (
	StatusExpired Status = "expired"
	StatusSoon    Status = "soon"
	StatusMid     Status = "mid"
	StatusActive  Status = "active"

	// FilterAll is the pseudo-status used by list filtering.
	FilterAll Status = "all"
)

// Bucket boundaries in days, inclusive.
const (
	soonMaxDays = 30
	midMaxDays  = 60
)

var reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD string at local midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !reDateOnly.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
//
// Shape alone is not enough: time.Date silently normalizes impossible dates
// (2023-02-30 becomes March 2), so we round-trip and require the
// year/month/day to survive unchanged.
func IsValidDate(s string) bool {
	s = strings.TrimSpace(s)
	if !reDateOnly.MatchString(s) {
		return false
	}
	var y, mo, d int
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02d", &y, &mo, &d); err != nil {
		return false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == mo && t.Day() == d
}

// DaysUntil returns the whole-day distance from now's calendar day to date.
//
// Both sides are normalized to local midnight, so the result is stable for
// any two calls within the same local day. The division rounds toward
// positive infinity: a same-day expiry is 0 and any partial-day overage
// (DST-shortened days included) still counts as a full day.
func DaysUntil(date string, now time.Time) (int, error) {
	target, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return int(math.Ceil(target.Sub(today).Hours() / 24)), nil
}

// Classify buckets a document by days remaining until its expiry date:
// <0 expired, 0..30 soon, 31..60 mid, >60 active. The ranges are adjoining
// and closed on both ends.
//
// Malformed dates classify as expired: a document whose deadline cannot be
// read must surface at the top of the list, not hide in "active".
func Classify(date string, now time.Time) Status {
	days, err := DaysUntil(date, now)
	if err != nil {
		return StatusExpired
	}
	switch {
	case days < 0:
		return StatusExpired
	case days <= soonMaxDays:
		return StatusSoon
	case days <= midMaxDays:
		return StatusMid
	default:
		return StatusActive
	}
}

// Filter keeps documents matching the status filter AND the search term.
//
// The search is a case-insensitive substring match against Title or DocType.
// Input order is preserved; the result is always a fresh slice so callers
// can replace state wholesale without aliasing.
func Filter(docs []model.Document, filter Status, search string, now time.Time) []model.Document {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if filter != FilterAll && filter != "" && Classify(d.ExpiryDate, now) != filter {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Title), needle) &&
			!strings.Contains(strings.ToLower(d.DocType), needle) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Counts holds per-status tallies over the full, unfiltered collection.
type Counts struct {
	Expired int `json:"expired"`
	Soon    int `json:"soon"`
	Mid     int `json:"mid"`
	Active  int `json:"active"`
}

// Count tallies classifications in a single pass. It ignores the active
// filter on purpose: the summary bar always reflects the whole collection.
func Count(docs []model.Document, now time.Time) Counts {
	var c Counts
	for _, d := range docs {
		switch Classify(d.ExpiryDate, now) {
		case StatusExpired:
			c.Expired++
		case StatusSoon:
			c.Soon++
		case StatusMid:
			c.Mid++
		case StatusActive:
			c.Active++
		}
	}
	return c
}

// ParseStatus normalizes a user-supplied filter name.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "expired":
		return StatusExpired, nil
	case "soon":
		return StatusSoon, nil
	case "mid":
		return StatusMid, nil
	case "active":
		return StatusActive, nil
	default:
		return "", fmt.Errorf("invalid status %q (expected all, expired, soon, mid or active)", s)
	}
}
