// Package collect runs a backup collection over a fleet: for every host it
// dispatches on the device type and retrieves each configured backup target,
// recording one outcome per target so callers can aggregate results and pick
// an exit status.
package collect

//go:generate mockgen -destination=mock_collect.go -package=collect github.com/nuclearcat/mybackup/collect Fetcher

import (
	"context"

	"github.com/nuclearcat/mybackup/remote"
)

// Fetcher retrieves a single remote file. *remote.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req remote.Request) (remote.Artifact, error)
}
