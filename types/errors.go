package types

import "github.com/pkg/errors"

// Failure modes of the evolution cache. None of them is ever returned by the
// cache API; they classify what gets logged and counted.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMalformedSnapshot  = errors.New("malformed snapshot")
	ErrExpiredSnapshot    = errors.New("expired snapshot")
	ErrWriteFailure       = errors.New("snapshot write failed")
)
