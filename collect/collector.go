package collect

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nuclearcat/mybackup/fleet"
)

// Collector walks a fleet and retrieves backup targets through a Fetcher.
type Collector struct {
	Fetcher Fetcher
	// Workers bounds how many hosts are processed at once; values below 2
	// keep hosts strictly sequential.
	Workers int
	Logger  zerolog.Logger
	RunID   string
}

// New returns a sequential collector.
func New(f Fetcher, logger zerolog.Logger) *Collector {
	return &Collector{Fetcher: f, Workers: 1, Logger: logger}
}

type hostJob struct {
	name  string
	entry fleet.HostEntry
	found bool
}

// Run collects the named hosts, or every host when no names are given. The
// data directory is created before any retrieval. A failing host or target
// never stops the others; inspect the report for failures. The error return
// is reserved for problems that prevent the run from starting.
func (c *Collector) Run(ctx context.Context, fl *fleet.Fleet, names ...string) (*Report, error) {
	if err := os.MkdirAll(fl.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", fl.DataDir, err)
	}

	runID := c.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	report := &Report{RunID: runID, Started: time.Now()}

	jobs := selectHosts(fl, names)
	outcomes := make([]HostOutcome, len(jobs))

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			outcomes[i] = c.collectHost(ctx, j)
			return nil
		})
	}
	_ = g.Wait()

	report.Hosts = outcomes
	report.Finished = time.Now()
	c.Logger.Info().
		Str("run_id", runID).
		Int("hosts", len(outcomes)).
		Int("artifacts", len(report.Artifacts())).
		Int("failures", report.Failed()).
		Dur("elapsed", report.Finished.Sub(report.Started)).
		Msg("collection finished")
	return report, nil
}

func (c *Collector) collectHost(ctx context.Context, j hostJob) HostOutcome {
	if !j.found {
		err := fmt.Errorf("host %q not found in fleet config", j.name)
		c.Logger.Error().Str("host", j.name).Msg(err.Error())
		return HostOutcome{Host: j.name, Status: StatusFailed, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return HostOutcome{Host: j.name, Type: j.entry.Type.String(), Status: StatusFailed, Err: err}
	}
	return handlerFor(j.entry.Type).collect(ctx, c, j.entry)
}

func selectHosts(fl *fleet.Fleet, names []string) []hostJob {
	if len(names) == 0 {
		jobs := make([]hostJob, 0, len(fl.Hosts))
		for _, h := range fl.Hosts {
			jobs = append(jobs, hostJob{name: h.Name, entry: h, found: true})
		}
		return jobs
	}
	jobs := make([]hostJob, 0, len(names))
	for _, n := range names {
		h, ok := fl.Host(n)
		jobs = append(jobs, hostJob{name: n, entry: h, found: ok})
	}
	return jobs
}
