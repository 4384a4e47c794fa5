package remote

import "github.com/nuclearcat/mybackup/fleet"

// Request names one remote file to retrieve.
type Request struct {
	Host       string // fleet host name, used for the local file name
	Addr       string // host:port to dial
	Username   string
	KeyPath    string
	Transport  string // fleet.TransportSCP or fleet.TransportSFTP
	RemotePath string
}

// NewRequest builds a request for one backup target of a host entry.
func NewRequest(h fleet.HostEntry, remotePath string) Request {
	return Request{
		Host:       h.Name,
		Addr:       h.Addr(),
		Username:   h.Username,
		KeyPath:    h.KeyPath,
		Transport:  h.CopyTransport(),
		RemotePath: remotePath,
	}
}

// Artifact is a retrieved file at its final local path.
type Artifact struct {
	Host       string `yaml:"host"`
	SourcePath string `yaml:"source_path"`
	LocalPath  string `yaml:"local_path"`
	Size       int64  `yaml:"size"`
}
