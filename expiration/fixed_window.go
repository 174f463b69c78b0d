package expiration

import "time"

/*
FixedWindow expires a snapshot once Window has elapsed since it was written.
A snapshot is valid while now - writtenAt < Window, so at exactly Window it is
already expired.
*/
type FixedWindow struct {
	Window time.Duration
}

func (f FixedWindow) IsExpired(writtenAt, now time.Time) bool {
	return now.Sub(writtenAt) >= f.Window
}
