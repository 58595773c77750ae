package status

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps how many records ListRecent returns
const DefaultListLimit = 1000

// StatusCheck ties a caller supplied name to a server stamped time.
// Records are immutable once created.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// Clock returns the current time
type Clock func() time.Time

// IDSource returns a fresh unique identifier
type IDSource func() string

func SystemClock() time.Time {
	return time.Now()
}

func UUIDSource() string {
	return uuid.NewString()
}

// NewStatusCheck builds a record from the given clock and id source.
// The timestamp is UTC at microsecond precision so it survives a text round trip
// through any store unchanged.
func NewStatusCheck(clientName string, now Clock, newID IDSource) *StatusCheck {
	return &StatusCheck{
		ID:         newID(),
		ClientName: clientName,
		Timestamp:  now().UTC().Truncate(time.Microsecond),
	}
}

// StatusCreatedEvent is published after a record is persisted
type StatusCreatedEvent struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	Timestamp  string `json:"timestamp"`
}

func newStatusCreatedEvent(sc *StatusCheck) *StatusCreatedEvent {
	return &StatusCreatedEvent{
		ID:         sc.ID,
		ClientName: sc.ClientName,
		Timestamp:  FormatTimestamp(sc.Timestamp),
	}
}

// naive ISO-8601 timestamps (no offset) are read as UTC
const naiveTimestampLayout = "2006-01-02T15:04:05.999999999"

// FormatTimestamp renders t as ISO-8601 text in UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp reads ISO-8601 text written by FormatTimestamp or by other
// writers using an explicit offset ("+00:00") or no offset at all.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(naiveTimestampLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
