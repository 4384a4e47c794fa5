package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuclearcat/mybackup/collect"
	"github.com/nuclearcat/mybackup/envelope"
	"github.com/nuclearcat/mybackup/remote"
	"github.com/nuclearcat/mybackup/schedule"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags and/or environment variables.
	// These are declared here so they are visible across subcommands.
	cfgConfigPath      string
	cfgEnvFile         string
	cfgMetadataPath    string
	cfgScheme          string
	cfgKnownHosts      string
	cfgStrictHost      bool
	cfgPassphrase      string
	cfgConnTimeout     time.Duration
	cfgTransferTimeout time.Duration
	cfgUploadTimeout   time.Duration
	cfgLogLevel        string
	cfgLogFormat       string
	cfgLogFile         string

	// collect and run
	cfgHosts      []string
	cfgWorkers    int
	cfgReportPath string

	// upload and run
	cfgFailFast bool
	cfgNoPrompt bool

	// genkey
	cfgKeyComment string

	// install
	cfgInstallBinary string
	cfgCopyBinary    bool
	cfgOnCalendar    string
	cfgUnitDir       string
)

// envFileErr carries a .env loading failure from OnInitialize to the
// command, which can return it.
var envFileErr error

// logCloser releases the rotating log file, if any.
var logCloser io.Closer

// installer is the part of *schedule.Installer used by the install command.
type installer interface {
	Install(ctx context.Context, o schedule.Options) (*schedule.Result, error)
}

// Allow tests to stub retrieval, installation, prompting and HTTP.
var (
	newFetcherFunc = func(dataDir string, log zerolog.Logger) collect.Fetcher {
		return &remote.Fetcher{
			DataDir:         dataDir,
			KnownHostsPath:  cfgKnownHosts,
			StrictHostKey:   cfgStrictHost,
			Passphrase:      cfgPassphrase,
			ConnTimeout:     cfgConnTimeout,
			TransferTimeout: cfgTransferTimeout,
			Logger:          log,
		}
	}
	newInstallerFunc = func(log zerolog.Logger) installer {
		i := schedule.NewInstaller(log)
		if cfgUnitDir != "" {
			i.UnitDir = cfgUnitDir
		}
		return i
	}
	newPrompterFunc   = envelope.NewTerminalPrompter
	isInteractiveFunc = envelope.Interactive
	newHTTPClientFunc = func() *http.Client {
		return &http.Client{Timeout: cfgUploadTimeout}
	}
	executableFunc = os.Executable
)
