package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/envelope"
	"github.com/nuclearcat/mybackup/fleet"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the fleet config, key files and metadata cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fl, err := loadFleet(cfgConfigPath)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, h := range fl.Hosts {
			state := "supported"
			switch {
			case !h.Type.Known():
				state = fmt.Sprintf("unsupported type %q", h.RawType)
			case !h.Type.Supported():
				state = "not implemented"
			}
			_, _ = fmt.Fprintf(out, "%s (%s, %s via %s): %s\n", h.Name, h.Type, h.Addr(), h.CopyTransport(), state)
			for _, item := range h.Backup {
				if fleet.IsDirectoryTarget(item) {
					_, _ = fmt.Fprintf(out, "  warning: %s is a directory target and will be skipped\n", item)
				}
			}
		}

		env, err := envelope.Load(cfgMetadataPath)
		switch {
		case errors.Is(err, envelope.ErrMissing):
			_, _ = fmt.Fprintf(out, "Metadata: %s not found; run `mybackup metadata` before uploading\n", cfgMetadataPath)
		case err != nil:
			return fmt.Errorf("invalid metadata: %w", err)
		default:
			host, err := env.Hostname()
			if err != nil {
				return fmt.Errorf("invalid metadata: %s: %w", cfgMetadataPath, err)
			}
			_, _ = fmt.Fprintf(out, "Metadata: uploads go to %s\n", host)
		}
		_, _ = fmt.Fprintf(out, "Config OK: %d host(s)\n", len(fl.Hosts))
		return nil
	},
}
