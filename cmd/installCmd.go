package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/fleet"
	"github.com/nuclearcat/mybackup/logger"
	"github.com/nuclearcat/mybackup/schedule"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a systemd timer that runs collection and upload daily",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := filepath.Abs(cfgConfigPath)
		if err != nil {
			return err
		}
		// Refuse to schedule a config that would fail every night.
		if _, err := fleet.Load(configPath); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		binary := cfgInstallBinary
		if binary == "" {
			exe, err := executableFunc()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			binary = exe
			if cfgCopyBinary {
				binary = schedule.DefaultBinary
			}
		}

		opts := schedule.Options{
			Binary:     binary,
			ConfigPath: configPath,
			WorkDir:    filepath.Dir(configPath),
			OnCalendar: cfgOnCalendar,
		}
		metadataPath, err := filepath.Abs(cfgMetadataPath)
		if err != nil {
			return err
		}
		opts.Args = append(opts.Args, "--metadata", metadataPath, "--no-prompt")

		res, err := newInstallerFunc(logger.WithComponent("install")).Install(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("install failed: %w", err)
		}
		if cfgCopyBinary {
			exe, err := executableFunc()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			if err := schedule.CopyBinary(exe, binary); err != nil {
				return fmt.Errorf("copy binary to %s: %w", binary, err)
			}
		}

		out := cmd.OutOrStdout()
		for _, f := range res.Files {
			_, _ = fmt.Fprintf(out, "Wrote %s\n", f)
		}
		if res.Activated {
			_, _ = fmt.Fprintf(out, "%s enabled and started\n", schedule.TimerName)
		} else {
			_, _ = fmt.Fprintln(out, "systemd is not running; enable the timer manually")
		}
		return nil
	},
}

func init() {
	f := installCmd.Flags()
	f.StringVar(&cfgInstallBinary, "binary", "", "Binary path used in ExecStart (default: this executable, or "+schedule.DefaultBinary+" with --copy-binary)")
	f.BoolVar(&cfgCopyBinary, "copy-binary", false, "Copy this executable to the --binary path")
	f.StringVar(&cfgOnCalendar, "on-calendar", schedule.DefaultOnCalendar, "systemd OnCalendar expression for the timer")
	f.StringVar(&cfgUnitDir, "unit-dir", schedule.DefaultUnitDir, "Directory the unit files are written to")
}
