package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is rendered wherever a stored timestamp is empty or cannot be
// parsed. Display never fails a page over a bad value.
const Placeholder = "—"

// canonicalLayout is the single write-path encoding: absolute UTC instants
// at second granularity.
const canonicalLayout = time.RFC3339

const displayLayout = "02/01/2006 15:04"

// legacy encodings found in old rows. Naive values (no offset) were written
// as local wall-clock time and are interpreted in the configured zone.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer converts between wall-clock time and the persisted timestamp
// representation, and renders stored values in the configured display zone.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewNormalizer builds a normalizer displaying in the named IANA zone.
func NewNormalizer(zone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc, now: time.Now}, nil
}

// WithClock returns a copy using the given clock. Test hook.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	return &Normalizer{loc: n.loc, now: now}
}

// Location returns the configured display zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current instant in the persisted encoding.
func (n *Normalizer) Now() string {
	return n.Format(n.now())
}

// Format encodes an instant for persistence.
func (n *Normalizer) Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(canonicalLayout)
}

// Parse decodes a persisted timestamp. Offset-aware values are absolute
// instants; naive legacy values are wall-clock time in the display zone.
func (n *Normalizer) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

// ParseOrMin decodes a persisted timestamp for sorting; values that cannot
// be parsed sort as the minimum possible instant.
func (n *Normalizer) ParseOrMin(value string) time.Time {
	t, err := n.Parse(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Display renders a persisted timestamp in the display zone, or the
// placeholder when the value is empty or unparsable.
func (n *Normalizer) Display(value string) string {
	t, err := n.Parse(value)
	if err != nil {
		return Placeholder
	}
	return t.In(n.loc).Format(displayLayout)
}

// DisplayPtr renders an optional persisted timestamp.
func (n *Normalizer) DisplayPtr(value *string) string {
	if value == nil {
		return Placeholder
	}
	return n.Display(*value)
}

// LocalDate returns the calendar date of a persisted timestamp in the
// display zone.
func (n *Normalizer) LocalDate(value string) (year int, month time.Month, day int, err error) {
	t, err := n.Parse(value)
	if err != nil {
		return 0, 0, 0, err
	}
	year, month, day = t.In(n.loc).Date()
	return year, month, day, nil
}
