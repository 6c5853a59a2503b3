package domain

import "time"

// Timestamp is a point in time in epoch milliseconds.
// It is the unit used on the wire and in both persisted layouts.
type Timestamp int64

// Clock returns the current time. Swapped in tests.
type Clock func() Timestamp

// Now returns the current wall clock time as a Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts a time.Time, dropping sub-millisecond precision.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts back to a time.Time in the local zone.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// IsZero reports whether the timestamp was never set.
func (t Timestamp) IsZero() bool {
	return t == 0
}
