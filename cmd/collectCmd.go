package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/collect"
	"github.com/nuclearcat/mybackup/logger"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Retrieve backup targets from every fleet host into the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := runCollect(cmd.Context())
		if err != nil {
			return err
		}
		writeCollectSummary(cmd.OutOrStdout(), rep)
		if cfgReportPath != "" {
			if err := saveYAMLReport(cfgReportPath, newYAMLReport(rep, nil)); err != nil {
				return err
			}
		}
		return rep.Err()
	},
}

func init() {
	addCollectFlags(collectCmd)
}

func addCollectFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&cfgHosts, "host", nil, "Only collect these hosts (repeatable or comma-separated)")
	c.Flags().IntVarP(&cfgWorkers, "workers", "w", 1, "Number of hosts processed concurrently")
	c.Flags().StringVar(&cfgReportPath, "report", "", "Write a YAML run report to this path")
}

// runCollect loads the fleet and collects every selected host.
func runCollect(ctx context.Context) (*collect.Report, error) {
	fl, err := loadFleet(cfgConfigPath)
	if err != nil {
		return nil, err
	}
	log := logger.WithComponent("collect")
	c := &collect.Collector{
		Fetcher: newFetcherFunc(fl.DataDir, logger.WithComponent("remote")),
		Workers: cfgWorkers,
		Logger:  log,
	}
	rep, err := c.Run(ctx, fl, cfgHosts...)
	if err != nil {
		return nil, fmt.Errorf("collection failed: %w", err)
	}
	return rep, nil
}
