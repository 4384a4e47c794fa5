// Package remote retrieves single files from fleet hosts over SSH.
//
// Each Fetch dials the host, authenticates with the host's key, copies one
// remote path with either the SCP source protocol or SFTP, and closes the
// connection. Files land in the data directory under a name derived by
// LocalName and only appear at that name once the transfer has completed.
// Failures are reported as *FetchError so callers can tell connect, auth and
// transfer problems apart.
package remote
