package schedule

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"
)

// DBusAPI is the part of the systemd D-Bus connection the installer uses.
type DBusAPI interface {
	Close()
	LinkUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) ([]dbus.LinkUnitFileChange, error)
	ReloadContext(ctx context.Context) error
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []dbus.EnableUnitFileChange, error)
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
}

// DBusAPIFactory opens a connection to the system manager.
type DBusAPIFactory = func(ctx context.Context) (DBusAPI, error)

var NewDBusAPI DBusAPIFactory = func(ctx context.Context) (DBusAPI, error) {
	return dbus.NewWithContext(ctx)
}
