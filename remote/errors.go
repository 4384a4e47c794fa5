package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a retrieval failure.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindAuth
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindAuth:
		return "auth"
	case KindTransfer:
		return "transfer"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against a *FetchError of the same kind.
var (
	ErrConnect  = errors.New("remote: connect failed")
	ErrAuth     = errors.New("remote: authentication failed")
	ErrTransfer = errors.New("remote: transfer failed")
)

// FetchError reports a failed retrieval of one remote path.
type FetchError struct {
	Kind Kind
	Host string
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s:%s: %s failed: %v", e.Host, e.Path, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrConnect:
		return e.Kind == KindConnect
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrTransfer:
		return e.Kind == KindTransfer
	}
	return false
}

// dialError carries the kind decided while dialing up to Fetch.
type dialError struct {
	kind Kind
	err  error
}

func (e *dialError) Error() string { return e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }
