// This file defines how persisted snapshots expire over time.

package expiration

import "time"

/*
Strategy is the interface that all expiration rules must follow. The engine
asks it one question when a snapshot is restored: is a snapshot written at
writtenAt still usable at now?

Expiry applies to the snapshot as a whole; there is no per-entry TTL.
*/
type Strategy interface {
	IsExpired(writtenAt, now time.Time) bool
}
