package collect

import (
	"context"
	"fmt"

	"github.com/nuclearcat/mybackup/fleet"
	"github.com/nuclearcat/mybackup/remote"
)

// handler collects one host of a given device type.
type handler interface {
	collect(ctx context.Context, c *Collector, h fleet.HostEntry) HostOutcome
}

// handlerFor returns the handler for every DeviceType variant.
func handlerFor(t fleet.DeviceType) handler {
	switch t {
	case fleet.DeviceGOS:
		return fileHandler{}
	case fleet.DeviceJunos, fleet.DeviceIOS, fleet.DeviceRouterOS, fleet.DeviceLinux:
		return notImplementedHandler{}
	case fleet.DeviceUnknown:
		return unsupportedHandler{}
	}
	return unsupportedHandler{}
}

// fileHandler copies every file target of the host, one Fetch per target.
type fileHandler struct{}

func (fileHandler) collect(ctx context.Context, c *Collector, h fleet.HostEntry) HostOutcome {
	out := HostOutcome{Host: h.Name, Type: h.Type.String(), Status: StatusOK}
	log := c.Logger.With().Str("host", h.Name).Logger()
	log.Info().Str("type", h.RawType).Int("targets", len(h.Backup)).Msg("backing up host")

	for _, item := range h.Backup {
		if fleet.IsDirectoryTarget(item) {
			log.Warn().Str("path", item).Msg("skipping directory target, directory backup is not supported")
			out.Targets = append(out.Targets, TargetOutcome{
				Path: item, Status: StatusSkipped, Note: "directory targets are not supported",
			})
			continue
		}
		if err := ctx.Err(); err != nil {
			out.Targets = append(out.Targets, TargetOutcome{Path: item, Status: StatusFailed, Err: err})
			out.Status = StatusFailed
			continue
		}
		log.Info().Str("path", item).Msg("backing up")
		art, err := c.Fetcher.Fetch(ctx, remote.NewRequest(h, item))
		if err != nil {
			log.Error().Err(err).Str("path", item).Msg("retrieval failed")
			out.Targets = append(out.Targets, TargetOutcome{Path: item, Status: StatusFailed, Err: err})
			out.Status = StatusFailed
			continue
		}
		out.Targets = append(out.Targets, TargetOutcome{Path: item, Status: StatusOK, Artifact: &art})
	}
	return out
}

type notImplementedHandler struct{}

func (notImplementedHandler) collect(_ context.Context, c *Collector, h fleet.HostEntry) HostOutcome {
	note := fmt.Sprintf("%s not implemented yet", h.Type)
	c.Logger.Warn().Str("host", h.Name).Msg(note)
	return HostOutcome{Host: h.Name, Type: h.Type.String(), Status: StatusNotImplemented, Note: note}
}

type unsupportedHandler struct{}

func (unsupportedHandler) collect(_ context.Context, c *Collector, h fleet.HostEntry) HostOutcome {
	note := fmt.Sprintf("unknown host type %q", h.RawType)
	c.Logger.Warn().Str("host", h.Name).Msg(note)
	return HostOutcome{Host: h.Name, Type: h.Type.String(), Status: StatusUnsupported, Note: note}
}
