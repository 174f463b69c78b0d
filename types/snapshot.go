package types

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	// ExpiryWindow is how long a persisted snapshot stays valid after it was written.
	ExpiryWindow = 24 * time.Hour

	// DefaultStorageKey is the storage slot the evolution cache persists under.
	DefaultStorageKey = "evolutionMoonCache"
)

/*
Snapshot is the persisted form of the whole cache.

	{ "timestamp": <epoch millis>, "data": { "<id>": EvolutionRecord, ... } }

The timestamp belongs to the snapshot, not to individual entries: the whole
snapshot is valid or the whole snapshot is discarded.
*/
type Snapshot struct {
	Timestamp int64                      `json:"timestamp"`
	Data      map[string]EvolutionRecord `json:"data"`
}

// NewSnapshot stamps entries with writtenAt and converts ids to their string form.
func NewSnapshot(entries map[int]EvolutionRecord, writtenAt time.Time) *Snapshot {
	data := make(map[string]EvolutionRecord, len(entries))
	for id, rec := range entries {
		data[strconv.Itoa(id)] = rec
	}
	return &Snapshot{
		Timestamp: writtenAt.UnixMilli(),
		Data:      data,
	}
}

// WrittenAt returns the snapshot timestamp as a time.Time.
func (s *Snapshot) WrittenAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Encode serializes the snapshot as JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return b, nil
}

/*
Entries converts the string keys back to integer ids.

Keys that are not integers in canonical form ("6", not "06" or "+6") are
returned in skipped so the caller can report them; they never abort the
conversion of the remaining entries.
*/
func (s *Snapshot) Entries() (entries map[int]EvolutionRecord, skipped []string) {
	entries = make(map[int]EvolutionRecord, len(s.Data))
	for k, rec := range s.Data {
		id, err := strconv.Atoi(k)
		if err != nil || strconv.Itoa(id) != k {
			skipped = append(skipped, k)
			continue
		}
		entries[id] = rec
	}
	return entries, skipped
}

// DecodeSnapshot parses a stored value. Anything that is not a JSON object of
// the snapshot shape is reported as ErrMalformedSnapshot.
func DecodeSnapshot(raw string) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Wrapf(ErrMalformedSnapshot, "decode: %v", err)
	}
	if s.Timestamp <= 0 {
		return nil, errors.Wrap(ErrMalformedSnapshot, "missing timestamp")
	}
	if s.Data == nil {
		s.Data = map[string]EvolutionRecord{}
	}
	return &s, nil
}
