// Package utils contains various common utils separate by utility types
package utils

import (
	"time"
)

// MillisToTime converts an int64 of milliseconds from epoch to Time struct
func MillisToTime(ts int64) time.Time {
	return time.Unix(0, ts*int64(time.Millisecond))
}

// CurrentEpochMillis returns the current wall clock time in milliseconds from epoch
func CurrentEpochMillis() int64 {
	return TimeToMillis(time.Now())
}

// TimeToMillis converts a Time struct to milliseconds from epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
