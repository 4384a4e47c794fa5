// Package envelope handles the metadata envelope: a JSON object obtained once
// from the custody service, cached on disk and attached verbatim to every
// upload. The only field this program reads is "hostname", which names the
// service that receives uploads.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultPath is the cache file used when none is configured.
const DefaultPath = "metadata.json"

// ErrNoHostname is returned when the envelope lacks a usable "hostname".
var ErrNoHostname = errors.New(`metadata has no "hostname" string field`)

// Envelope is an immutable snapshot of the cached metadata object.
type Envelope struct {
	raw    []byte
	fields map[string]json.RawMessage
}

// Parse validates that b holds a JSON object and wraps it.
func Parse(b []byte) (*Envelope, error) {
	b = bytes.TrimSpace(b)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("metadata is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("metadata is not a JSON object: null")
	}
	raw := make([]byte, len(b))
	copy(raw, b)
	return &Envelope{raw: raw, fields: fields}, nil
}

// Bytes returns the envelope exactly as it was loaded.
func (e *Envelope) Bytes() []byte {
	out := make([]byte, len(e.raw))
	copy(out, e.raw)
	return out
}

// Hostname returns the custody service host named by the envelope.
func (e *Envelope) Hostname() (string, error) {
	v, ok := e.fields["hostname"]
	if !ok {
		return "", ErrNoHostname
	}
	var h string
	if err := json.Unmarshal(v, &h); err != nil || h == "" {
		return "", ErrNoHostname
	}
	return h, nil
}

// MarshalJSON emits the raw envelope.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return e.Bytes(), nil
}
