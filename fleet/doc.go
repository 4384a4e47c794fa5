// Package fleet models the fleet definition consumed by a collection run: the
// local data directory and the ordered list of hosts with their device type,
// SSH credentials and backup targets.
//
// A Fleet is loaded once per run with Load and is treated as immutable
// afterwards. CheckCredentials performs the key-file pre-flight that must pass
// before any network activity starts.
package fleet
