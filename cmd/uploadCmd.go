package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuclearcat/mybackup/envelope"
	"github.com/nuclearcat/mybackup/logger"
	"github.com/nuclearcat/mybackup/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file-or-directory>...",
	Short: "Upload backup files, or every file in a directory, to the custody service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvelope(cmd.Context())
		if err != nil {
			return err
		}
		sum, err := runUpload(cmd.Context(), env, args)
		if err != nil {
			return err
		}
		writeUploadSummary(cmd.OutOrStdout(), sum)
		return sum.Err()
	},
}

func init() {
	addUploadFlags(uploadCmd)
}

func addUploadFlags(c *cobra.Command) {
	c.Flags().BoolVar(&cfgFailFast, "fail-fast", false, "Stop at the first file that is not accepted")
	c.Flags().BoolVar(&cfgNoPrompt, "no-prompt", false, "Never prompt for metadata; fail when the cache is missing")
}

// loadEnvelope returns the cached envelope, prompting for it when the cache
// is missing and stdin is a terminal.
func loadEnvelope(ctx context.Context) (*envelope.Envelope, error) {
	var p *envelope.Prompter
	if !cfgNoPrompt && isInteractiveFunc() {
		p = newPrompterFunc()
	}
	env, err := envelope.LoadOrAcquire(ctx, cfgMetadataPath, p, newMetadataClient())
	if err != nil {
		return nil, err
	}
	if _, err := env.Hostname(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgMetadataPath, err)
	}
	return env, nil
}

func newMetadataClient() *envelope.Client {
	return &envelope.Client{
		HTTPClient: newHTTPClientFunc(),
		Scheme:     cfgScheme,
		Logger:     logger.WithComponent("metadata"),
	}
}

// runUpload sends paths to the endpoint named by env. Every file in the batch
// carries the same envelope.
func runUpload(ctx context.Context, env *envelope.Envelope, paths []string) (*upload.Summary, error) {
	host, err := env.Hostname()
	if err != nil {
		return nil, err
	}
	log := logger.WithComponent("upload")
	b := &upload.Batcher{
		Client: &upload.Client{
			HTTPClient: newHTTPClientFunc(),
			Envelope:   env,
			Logger:     log,
		},
		FailFast: cfgFailFast,
		Logger:   log,
	}
	return b.UploadAll(ctx, paths, upload.Endpoint(cfgScheme, host))
}
