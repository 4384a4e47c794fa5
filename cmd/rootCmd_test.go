package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// writeTemp creates a temp file with content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// resetConfig clears global configuration so tests don't leak state
func resetConfig() {
	viper.Reset()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	for _, name := range []string{
		"config", "metadata", "scheme", "known-hosts", "strict-host-key", "passphrase",
		"conn-timeout", "transfer-timeout", "upload-timeout", "log-level", "log-format", "log-file",
	} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	// Reset flags to defaults and clear Changed status
	resetFlags(rootCmd.PersistentFlags())
	resetFlags(rootCmd.Flags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}
	envFileErr = nil
}

// stubSeams restores every test seam when the test ends.
func stubSeams(t *testing.T) {
	t.Helper()
	origFetcher, origInstaller := newFetcherFunc, newInstallerFunc
	origPrompter, origInteractive := newPrompterFunc, isInteractiveFunc
	origHTTP, origExe, origExit := newHTTPClientFunc, executableFunc, exitFunc
	t.Cleanup(func() {
		newFetcherFunc, newInstallerFunc = origFetcher, origInstaller
		newPrompterFunc, isInteractiveFunc = origPrompter, origInteractive
		newHTTPClientFunc, executableFunc, exitFunc = origHTTP, origExe, origExit
	})
	isInteractiveFunc = func() bool { return false }
}

// execute runs the CLI with args and returns what the command printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	want := []string{"check", "collect", "genkey", "install", "metadata", "run", "upload"}
	var got []string
	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		got = append(got, c.Name())
	}
	require.ElementsMatch(t, want, got)
}

func TestRoot_Version(t *testing.T) {
	resetConfig()
	stubSeams(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	require.Contains(t, out, Version)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	resetConfig()
	stubSeams(t)
	rootCmd.SetArgs([]string{"check", "--log-level", "loud"})
	err := rootCmd.ExecuteContext(context.Background())
	require.ErrorContains(t, err, "invalid log level")
}

func TestRoot_SharedFlagsOnRun(t *testing.T) {
	for _, name := range []string{"host", "workers", "report", "fail-fast", "no-prompt"} {
		require.NotNil(t, runCmd.Flags().Lookup(name), name)
	}
	require.Nil(t, collectCmd.Flags().Lookup("fail-fast"))
}
