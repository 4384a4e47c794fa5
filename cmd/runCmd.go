package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/upload"
)

// runCmd executes the primary workflow: the metadata envelope is loaded once,
// every fleet host is collected and each retrieved file is uploaded with that
// envelope. Failures on one host or file never stop the others; the command
// fails when anything failed.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect every fleet host, then upload the retrieved files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := loadEnvelope(ctx)
		if err != nil {
			return err
		}
		rep, err := runCollect(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writeCollectSummary(out, rep)

		var paths []string
		for _, a := range rep.Artifacts() {
			paths = append(paths, a.LocalPath)
		}
		var sum *upload.Summary
		if len(paths) > 0 {
			if sum, err = runUpload(ctx, env, paths); err != nil {
				return err
			}
			writeUploadSummary(out, sum)
		}

		if cfgReportPath != "" {
			if err := saveYAMLReport(cfgReportPath, newYAMLReport(rep, sum)); err != nil {
				return err
			}
		}
		errs := []error{rep.Err()}
		if sum != nil {
			errs = append(errs, sum.Err())
		}
		return errors.Join(errs...)
	},
}

func init() {
	addCollectFlags(runCmd)
	addUploadFlags(runCmd)
}
