package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nuclearcat/mybackup/envelope"
)

const envPrefix = "MYBACKUP"

// init configures the root command's persistent flags, binds them to
// environment variables via Viper, and registers all subcommands.
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgConfigPath, "config", "c", "config.yaml", "Path to the fleet config YAML")
	pf.StringVar(&cfgEnvFile, "env-file", "", "Load environment overrides from this file (default ./.env when present)")
	pf.StringVar(&cfgMetadataPath, "metadata", envelope.DefaultPath, "Path to the cached metadata envelope")
	pf.StringVar(&cfgScheme, "scheme", "https", "URL scheme used to reach the custody service")
	pf.StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")
	pf.BoolVar(&cfgStrictHost, "strict-host-key", true, "Require host key verification (disable to accept any host key)")
	pf.StringVar(&cfgPassphrase, "passphrase", "", "Private key passphrase (or set MYBACKUP_PASSPHRASE)")
	pf.DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "SSH connection timeout")
	pf.DurationVar(&cfgTransferTimeout, "transfer-timeout", 0, "Per-file transfer timeout (e.g., 5m). 0 disables")
	pf.DurationVar(&cfgUploadTimeout, "upload-timeout", 5*time.Minute, "Per-upload HTTP timeout. 0 disables")
	pf.StringVar(&cfgLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&cfgLogFormat, "log-format", "console", "Log format (console or json)")
	pf.StringVar(&cfgLogFile, "log-file", "", "Also write JSON logs to this rotating file")

	// Bind env with Viper
	for _, name := range []string{
		"config", "metadata", "scheme", "known-hosts", "strict-host-key", "passphrase",
		"conn-timeout", "transfer-timeout", "upload-timeout", "log-level", "log-format", "log-file",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Pull in .env and environment overrides on init
	cobra.OnInitialize(func() {
		envFileErr = loadEnvFile(cfgEnvFile)
		applyOverrides()
	})

	// Add subcommands
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(genkeyCmd)
	rootCmd.AddCommand(installCmd)
}

// loadEnvFile loads path, or ./.env when path is empty and the file exists.
// Variables already present in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// applyOverrides copies viper values (flags or MYBACKUP_* variables) back
// into the cfg variables.
func applyOverrides() {
	if v := viper.GetString("config"); v != "" {
		cfgConfigPath = v
	}
	if v := viper.GetString("metadata"); v != "" {
		cfgMetadataPath = v
	}
	if v := viper.GetString("scheme"); v != "" {
		cfgScheme = v
	}
	if v := viper.GetString("known-hosts"); v != "" {
		cfgKnownHosts = v
	}
	if v := viper.GetString("passphrase"); v != "" {
		cfgPassphrase = v
	}
	if v := viper.GetString("conn-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgConnTimeout = d
		}
	}
	if v := viper.GetString("transfer-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgTransferTimeout = d
		}
	}
	if v := viper.GetString("upload-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgUploadTimeout = d
		}
	}
	if v := viper.GetString("log-level"); v != "" {
		cfgLogLevel = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfgLogFormat = v
	}
	if v := viper.GetString("log-file"); v != "" {
		cfgLogFile = v
	}
	// Booleans
	if viper.IsSet("strict-host-key") {
		cfgStrictHost = viper.GetBool("strict-host-key")
	}
}
