package remote

import "strings"

// scpSafe lists the bytes passed to the remote shell without quoting.
const scpSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./@:,+="

// scpSourceCommand is the remote command line that streams path in scp
// source mode.
func scpSourceCommand(path string) string {
	return "scp -f " + quoteArg(path)
}

// quoteArg single-quotes s for a POSIX shell unless every byte is in scpSafe.
func quoteArg(s string) string {
	if s != "" && strings.Trim(s, scpSafe) == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
