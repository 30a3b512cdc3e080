package timeutil

import (
	"fmt"
	"time"
)

// Layouts accepted for client-supplied timestamps that carry no offset.
// These are interpreted as wall-clock time in the scheduling zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse reads a client-supplied timestamp. Offset-aware values keep their
// instant, naive values are taken as wall clock in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Normalize rewrites t into the scheduling zone without changing the instant.
func Normalize(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// Display converts a stored timestamp for read responses.
func Display(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// FallbackDisplay is the placeholder scheduled time shown for posts that do
// not have one yet: a day out, in the scheduling zone.
func FallbackDisplay(now time.Time, loc *time.Location) time.Time {
	return now.In(loc).Add(24 * time.Hour)
}
