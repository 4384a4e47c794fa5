package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/logger"
)

var rootCmd = &cobra.Command{
	Use:   "mybackup",
	Short: "Collect configuration backups from a device fleet and upload them",
	Long: "Retrieves configuration files from the hosts listed in a fleet config over SSH (SCP or SFTP), " +
		"stores them in a local data directory and uploads them, with a cached metadata envelope, " +
		"to the custody service.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFileErr != nil {
			return envFileErr
		}
		return initLogging()
	},
}

// initLogging (re)initializes the global logger from the cfg variables.
func initLogging() error {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	lc := logger.DefaultConfig()
	lc.Level = cfgLogLevel
	lc.Format = cfgLogFormat
	lc.File = cfgLogFile
	closer, err := logger.Init(lc)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}
