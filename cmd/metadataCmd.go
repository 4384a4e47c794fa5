package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/envelope"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Fetch the metadata envelope from the custody service and cache it",
	Long: "Prompts for the custody service hostname, the admin password and the customer name, requests " +
		"GET /api/metadata and stores the returned JSON object in the metadata cache file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := envelope.Acquire(cmd.Context(), cfgMetadataPath, newPrompterFunc(), newMetadataClient())
		if err != nil {
			return fmt.Errorf("failed to retrieve metadata: %w", err)
		}
		host, err := env.Hostname()
		if err != nil {
			return fmt.Errorf("metadata saved to %s but is unusable: %w", cfgMetadataPath, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Metadata saved to %s (uploads go to %s)\n", cfgMetadataPath, host)
		return nil
	},
}
