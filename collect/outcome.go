package collect

import (
	"errors"
	"fmt"
	"time"

	"github.com/nuclearcat/mybackup/remote"
)

// Status is the result class of a host or target.
type Status string

const (
	StatusOK             Status = "ok"
	StatusFailed         Status = "failed"
	StatusSkipped        Status = "skipped"
	StatusNotImplemented Status = "not-implemented"
	StatusUnsupported    Status = "unsupported"
)

// TargetOutcome records what happened to one backup target.
type TargetOutcome struct {
	Path     string
	Status   Status
	Note     string
	Artifact *remote.Artifact
	Err      error
}

// HostOutcome records what happened to one host.
type HostOutcome struct {
	Host    string
	Type    string
	Status  Status
	Note    string
	Targets []TargetOutcome
	Err     error
}

// failed counts failed targets, or 1 for a host that failed as a whole.
func (h HostOutcome) failed() int {
	n := 0
	for _, t := range h.Targets {
		if t.Status == StatusFailed {
			n++
		}
	}
	if n == 0 && h.Status == StatusFailed {
		return 1
	}
	return n
}

// Report is the result of one collection run, hosts in fleet order.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Hosts    []HostOutcome
}

// Artifacts returns every file retrieved during the run.
func (r *Report) Artifacts() []remote.Artifact {
	var out []remote.Artifact
	for _, h := range r.Hosts {
		for _, t := range h.Targets {
			if t.Artifact != nil {
				out = append(out, *t.Artifact)
			}
		}
	}
	return out
}

// Failed is the number of failed targets plus hosts that failed outright.
func (r *Report) Failed() int {
	n := 0
	for _, h := range r.Hosts {
		n += h.failed()
	}
	return n
}

// Err summarises failures, nil when nothing failed.
func (r *Report) Err() error {
	var errs []error
	for _, h := range r.Hosts {
		if h.Status == StatusFailed && len(h.Targets) == 0 {
			errs = append(errs, fmt.Errorf("host %s: %w", h.Host, h.Err))
		}
		for _, t := range h.Targets {
			if t.Status == StatusFailed {
				errs = append(errs, t.Err)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("collection finished with %d failure(s): %w", len(errs), errors.Join(errs...))
}
