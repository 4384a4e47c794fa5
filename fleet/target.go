package fleet

import "strings"

// IsDirectoryTarget reports whether a backup target names a directory. Such
// targets end with a path separator and are never fetched.
func IsDirectoryTarget(path string) bool {
	return strings.HasSuffix(path, "/")
}
