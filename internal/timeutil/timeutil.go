package timeutil

import (
	"fmt"
	"time"
)

// CivilLayout is the offset-less format used on queue items:
// day-month-year hour:minute:second, local civil time, no zone tag.
const CivilLayout = "02-01-2006 15:04:05"

// instantLayouts are tried in order for externally supplied timestamps.
// The first two carry their own offset and identify an instant; the rest
// are civil times that need the fixed zone attached.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

var civilFallbackLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseCivilInZone parses an offset-less civil timestamp in CivilLayout and
// attaches the given zone. Use this for strings this process formatted
// itself (queue item timestamps).
func ParseCivilInZone(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(CivilLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseInstantToZone parses an externally supplied timestamp and normalizes
// it to the given zone. A string carrying its own offset is parsed as an
// instant and converted; attaching the zone to it instead would silently
// shift the instant. Offset-less ISO strings fall back to civil-in-zone.
func ParseInstantToZone(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range civilFallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", s)
}
