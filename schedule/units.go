// Package schedule installs the daily collection run as a systemd service
// and timer.
package schedule

import (
	"fmt"
	"io"
	"strings"

	"github.com/coreos/go-systemd/v22/unit"
)

const (
	Name        = "mybackup-collect"
	ServiceName = Name + ".service"
	TimerName   = Name + ".timer"

	// DefaultOnCalendar fires once a day at midnight.
	DefaultOnCalendar = "*-*-* 00:00:00"
	DefaultUnitDir    = "/etc/systemd/system"
	DefaultBinary     = "/usr/local/bin/mybackup"
)

// Options describe the scheduled command.
type Options struct {
	Binary     string
	ConfigPath string
	// WorkDir is where relative datadir, key and metadata paths resolve.
	WorkDir    string
	OnCalendar string
	// Args are appended after "run --config <ConfigPath>".
	Args []string
}

func (o Options) withDefaults() Options {
	if o.Binary == "" {
		o.Binary = DefaultBinary
	}
	if o.OnCalendar == "" {
		o.OnCalendar = DefaultOnCalendar
	}
	return o
}

func (o Options) execStart() string {
	args := append([]string{o.Binary, "run", "--config", o.ConfigPath}, o.Args...)
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\") {
			args[i] = fmt.Sprintf("%q", a)
		}
	}
	return strings.Join(args, " ")
}

// ServiceUnit is a oneshot service running one collect-and-upload pass.
func ServiceUnit(o Options) []*unit.UnitOption {
	o = o.withDefaults()
	opts := []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", "mybackup fleet configuration backup"),
		unit.NewUnitOption("Unit", "Wants", "network-online.target"),
		unit.NewUnitOption("Unit", "After", "network-online.target"),
		unit.NewUnitOption("Service", "Type", "oneshot"),
	}
	if o.WorkDir != "" {
		opts = append(opts, unit.NewUnitOption("Service", "WorkingDirectory", o.WorkDir))
	}
	return append(opts, unit.NewUnitOption("Service", "ExecStart", o.execStart()))
}

// TimerUnit triggers the service on o.OnCalendar, catching up missed runs.
func TimerUnit(o Options) []*unit.UnitOption {
	o = o.withDefaults()
	return []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", "Daily mybackup fleet configuration backup"),
		unit.NewUnitOption("Timer", "OnCalendar", o.OnCalendar),
		unit.NewUnitOption("Timer", "Persistent", "true"),
		unit.NewUnitOption("Timer", "Unit", ServiceName),
		unit.NewUnitOption("Install", "WantedBy", "timers.target"),
	}
}

// Render serializes unit options to unit-file text.
func Render(opts []*unit.UnitOption) ([]byte, error) {
	return io.ReadAll(unit.Serialize(opts))
}
