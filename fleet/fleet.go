package fleet

import (
	"net"
	"strconv"
)

// DefaultSSHPort is used when a host entry does not set a port.
const DefaultSSHPort = 22

// Transport names accepted in the host "transport" field.
const (
	TransportSCP  = "scp"
	TransportSFTP = "sftp"
)

// Fleet is the in-memory form of the fleet config document.
type Fleet struct {
	DataDir string      `yaml:"datadir" validate:"required"`
	Hosts   []HostEntry `yaml:"hosts" validate:"required,min=1,dive"`
}

// HostEntry describes one device or host subject to backup.
type HostEntry struct {
	Name      string     `yaml:"name" validate:"required"`
	RawType   string     `yaml:"type" validate:"required"`
	Type      DeviceType `yaml:"-"`
	Address   string     `yaml:"host" validate:"required"`
	Port      int        `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username  string     `yaml:"username" validate:"required"`
	KeyPath   string     `yaml:"key" validate:"required"`
	Transport string     `yaml:"transport,omitempty" validate:"omitempty,oneof=scp sftp"`
	Backup    []string   `yaml:"backup" validate:"dive,required"`
}

// Addr returns the host:port pair used to dial the entry.
func (h HostEntry) Addr() string {
	port := h.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(h.Address, strconv.Itoa(port))
}

// CopyTransport returns the configured copy transport, scp when unset.
func (h HostEntry) CopyTransport() string {
	if h.Transport == "" {
		return TransportSCP
	}
	return h.Transport
}

// Host looks up a host entry by name.
func (f *Fleet) Host(name string) (HostEntry, bool) {
	for _, h := range f.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return HostEntry{}, false
}
