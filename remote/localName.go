package remote

import "strings"

var (
	pathEscaper = strings.NewReplacer("%", "%25", "_", "%5F")
	hostEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "%2F")
)

// LocalName derives the data-directory file name for a host's remote path:
// the host name, an underscore, then the path with every "/" replaced by "_".
// Literal "%" and "_" are percent-encoded first so that two distinct
// (host, path) pairs never share a name.
func LocalName(host, remotePath string) string {
	return hostEscaper.Replace(host) + "_" + strings.ReplaceAll(pathEscaper.Replace(remotePath), "/", "_")
}
