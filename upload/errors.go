package upload

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Validation failure reasons.
const (
	ReasonMissing    = "does not exist"
	ReasonNotRegular = "is not a regular file"
	ReasonTooSmall   = "too small"
	ReasonTooLarge   = "too large"
)

// ValidationError is a local pre-check failure; no request was made.
type ValidationError struct {
	Path   string
	Size   int64
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonTooSmall:
		return fmt.Sprintf("backup file %s is too small (%d bytes)", e.Path, e.Size)
	case ReasonTooLarge:
		return fmt.Sprintf("backup file %s is too large (%s, limit %s)", e.Path,
			humanize.IBytes(uint64(e.Size)), humanize.IBytes(MaxSize))
	}
	return fmt.Sprintf("backup file %s %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError is a failure to complete the HTTP exchange.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upload to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
