package services

import "time"

// Clock returns the current time. Services default to time.Now when nil.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Default windows, used when a service is constructed with zero durations.
const (
	DefaultOnlineWindow   = 5 * time.Minute
	DefaultUnreadWindow   = 24 * time.Hour
	DefaultCommunityLimit = 50
)

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
