// Package normalize turns raw scraped marketplace cards into canonical
// Listing records.
package normalize

import (
	"errors"
	"fmt"
	"time"
)

// ErrParse marks a malformed scraped field. Callers drop the single record
// and continue the batch.
var ErrParse = errors.New("parse error")

// ResolveListedTime converts a page-local "HH:MM" string into an absolute
// timestamp on the reference instant's date, shifted by the configured
// site correction offset. The result carries no timezone beyond now's;
// all timestamps are treated as one fixed local zone end to end.
func ResolveListedTime(raw string, now time.Time, offset time.Duration) (time.Time, error) {
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrParse, raw)
	}
	resolved := time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, now.Location())
	return resolved.Add(offset), nil
}
