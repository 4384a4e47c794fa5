package fleet

import "strings"

// DeviceType is the closed set of device kinds a host entry can declare.
// Any string outside the known set maps to DeviceUnknown; the original value
// stays available in HostEntry.RawType for reporting.
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DeviceGOS
	DeviceJunos
	DeviceIOS
	DeviceRouterOS
	DeviceLinux
)

var deviceTypeNames = map[DeviceType]string{
	DeviceUnknown:  "unknown",
	DeviceGOS:      "gos",
	DeviceJunos:    "junos",
	DeviceIOS:      "ios",
	DeviceRouterOS: "routeros",
	DeviceLinux:    "linux",
}

// ParseDeviceType maps a config "type" value to its DeviceType.
func ParseDeviceType(s string) DeviceType {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range deviceTypeNames {
		if t != DeviceUnknown && name == s {
			return t
		}
	}
	return DeviceUnknown
}

func (d DeviceType) String() string {
	if name, ok := deviceTypeNames[d]; ok {
		return name
	}
	return deviceTypeNames[DeviceUnknown]
}

// Supported reports whether file collection is implemented for the type.
func (d DeviceType) Supported() bool {
	return d == DeviceGOS
}

// Known reports whether the type is part of the recognised set.
func (d DeviceType) Known() bool {
	_, ok := deviceTypeNames[d]
	return ok && d != DeviceUnknown
}
