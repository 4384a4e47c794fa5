package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/util"
	"github.com/rs/zerolog"
)

// ErrNotRoot is returned when installation is attempted without root.
var ErrNotRoot = errors.New("install must be run as root")

// Installer writes the unit files and activates the timer.
type Installer struct {
	UnitDir   string
	NewDBus   DBusAPIFactory
	IsRoot    func() bool
	IsSystemd func() bool
	Logger    zerolog.Logger
}

// NewInstaller returns an installer for the running system.
func NewInstaller(logger zerolog.Logger) *Installer {
	return &Installer{
		UnitDir:   DefaultUnitDir,
		NewDBus:   NewDBusAPI,
		IsRoot:    func() bool { return os.Geteuid() == 0 },
		IsSystemd: util.IsRunningSystemd,
		Logger:    logger,
	}
}

// Result lists what Install did.
type Result struct {
	Files     []string
	Activated bool
}

// Install writes the service and timer, then links them, reloads the
// manager, enables the timer and starts it. When systemd is not the running
// init system the files are written but not activated.
func (i *Installer) Install(ctx context.Context, o Options) (*Result, error) {
	if i.IsRoot != nil && !i.IsRoot() {
		return nil, ErrNotRoot
	}
	if o.ConfigPath == "" {
		return nil, errors.New("config path is required")
	}

	res := &Result{}
	files := []struct {
		name string
		data func() ([]byte, error)
	}{
		{ServiceName, func() ([]byte, error) { return Render(ServiceUnit(o)) }},
		{TimerName, func() ([]byte, error) { return Render(TimerUnit(o)) }},
	}
	for _, f := range files {
		data, err := f.data()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f.name, err)
		}
		path := filepath.Join(i.UnitDir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		i.Logger.Info().Str("file", path).Msg("unit file written")
		res.Files = append(res.Files, path)
	}

	if i.IsSystemd != nil && !i.IsSystemd() {
		i.Logger.Warn().Msg("systemd is not the running init system, timer not activated")
		return res, nil
	}

	conn, err := i.NewDBus(ctx)
	if err != nil {
		return res, fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	const runtime, force = false, true
	if _, err := conn.LinkUnitFilesContext(ctx, res.Files, runtime, force); err != nil {
		return res, fmt.Errorf("dbus link request failed: %w", err)
	}
	if err := conn.ReloadContext(ctx); err != nil {
		return res, fmt.Errorf("dbus daemon reload request failed: %w", err)
	}
	timerPath := filepath.Join(i.UnitDir, TimerName)
	if _, _, err := conn.EnableUnitFilesContext(ctx, []string{timerPath}, runtime, force); err != nil {
		return res, fmt.Errorf("dbus enable request failed: %w", err)
	}

	statusCh := make(chan string, 1)
	if _, err := conn.StartUnitContext(ctx, TimerName, "replace", statusCh); err != nil {
		return res, fmt.Errorf("dbus start request failed: %w", err)
	}
	select {
	case status := <-statusCh:
		if status != "done" {
			return res, fmt.Errorf("start %s: job finished with %q", TimerName, status)
		}
	case <-ctx.Done():
		return res, ctx.Err()
	}
	i.Logger.Info().Str("unit", TimerName).Msg("timer enabled and started")
	res.Activated = true
	return res, nil
}

// CopyBinary copies the executable at src to dst with mode 0755.
func CopyBinary(src, dst string) error {
	if same, err := samePath(src, dst); err == nil && same {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".new"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func samePath(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(fa, fb), nil
}
