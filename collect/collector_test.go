package collect

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nuclearcat/mybackup/fleet"
	"github.com/nuclearcat/mybackup/remote"
)

func gosHost(name string, targets ...string) fleet.HostEntry {
	return fleet.HostEntry{
		Name:     name,
		RawType:  "gos",
		Type:     fleet.DeviceGOS,
		Address:  "10.0.252.9",
		Username: "root",
		KeyPath:  "/keys/id",
		Backup:   targets,
	}
}

func artifactFor(req remote.Request) remote.Artifact {
	return remote.Artifact{
		Host:       req.Host,
		SourcePath: req.RemotePath,
		LocalPath:  filepath.Join("/data", remote.LocalName(req.Host, req.RemotePath)),
		Size:       10,
	}
}

func newCollector(t *testing.T) (*Collector, *MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := NewMockFetcher(ctrl)
	return New(f, zerolog.Nop()), f
}

func TestRun_FileAndDirectoryTarget(t *testing.T) {
	c, f := newCollector(t)
	fl := &fleet.Fleet{
		DataDir: t.TempDir(),
		Hosts:   []fleet.HostEntry{gosHost("pppoe9", "/mnt/flash/secure2/config.tgz", "/mnt/flash/secure2/")},
	}

	var got []remote.Request
	f.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r remote.Request) (remote.Artifact, error) {
			got = append(got, r)
			return artifactFor(r), nil
		}).
		Times(1)

	rep, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "/mnt/flash/secure2/config.tgz", got[0].RemotePath)
	require.Equal(t, "10.0.252.9:22", got[0].Addr)
	require.Equal(t, fleet.TransportSCP, got[0].Transport)
	require.NoError(t, rep.Err())
	require.NotEmpty(t, rep.RunID)

	require.Len(t, rep.Hosts, 1)
	h := rep.Hosts[0]
	require.Equal(t, StatusOK, h.Status)
	require.Len(t, h.Targets, 2)
	require.Equal(t, StatusOK, h.Targets[0].Status)
	require.Equal(t, StatusSkipped, h.Targets[1].Status)
	require.Equal(t, "directory targets are not supported", h.Targets[1].Note)

	arts := rep.Artifacts()
	require.Len(t, arts, 1)
	require.Equal(t, "/data/pppoe9__mnt_flash_secure2_config.tgz", filepath.ToSlash(arts[0].LocalPath))
}

func TestRun_DirectoryTargetsNeverFetch(t *testing.T) {
	c, _ := newCollector(t)
	fl := &fleet.Fleet{DataDir: t.TempDir(), Hosts: []fleet.HostEntry{gosHost("h1", "/etc/", "/var/")}}

	rep, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	require.Empty(t, rep.Artifacts())
}

func TestRun_FailureIsolation(t *testing.T) {
	c, f := newCollector(t)
	fl := &fleet.Fleet{
		DataDir: t.TempDir(),
		Hosts: []fleet.HostEntry{
			gosHost("h1", "/a", "/b"),
			gosHost("h2", "/c"),
		},
	}
	boom := &remote.FetchError{Kind: remote.KindConnect, Host: "h1", Path: "/a", Err: errors.New("refused")}

	var order []string
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r remote.Request) (remote.Artifact, error) {
			order = append(order, r.Host+":"+r.RemotePath)
			if r.RemotePath == "/a" {
				return remote.Artifact{}, boom
			}
			return artifactFor(r), nil
		}).
		Times(3)

	rep, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.Equal(t, []string{"h1:/a", "h1:/b", "h2:/c"}, order)
	require.Equal(t, 1, rep.Failed())
	require.Len(t, rep.Artifacts(), 2)
	require.Equal(t, StatusFailed, rep.Hosts[0].Status)
	require.Equal(t, StatusOK, rep.Hosts[1].Status)

	runErr := rep.Err()
	require.Error(t, runErr)
	require.ErrorIs(t, runErr, remote.ErrConnect)
}

func TestRun_DeviceTypeDispatch(t *testing.T) {
	c, _ := newCollector(t)
	fl := &fleet.Fleet{
		DataDir: t.TempDir(),
		Hosts: []fleet.HostEntry{
			{Name: "core", RawType: "junos", Type: fleet.DeviceJunos, Backup: []string{"/config/juniper.conf.gz"}},
			{Name: "toaster", RawType: "Toaster", Type: fleet.DeviceUnknown, Backup: []string{"/etc/toast"}},
		},
	}

	rep, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	require.Equal(t, StatusNotImplemented, rep.Hosts[0].Status)
	require.Equal(t, "junos not implemented yet", rep.Hosts[0].Note)
	require.Equal(t, StatusUnsupported, rep.Hosts[1].Status)
	require.Contains(t, rep.Hosts[1].Note, `"Toaster"`)
	require.Empty(t, rep.Hosts[1].Targets)
}

func TestHandlerFor_CoversEveryType(t *testing.T) {
	for _, dt := range []fleet.DeviceType{
		fleet.DeviceGOS, fleet.DeviceJunos, fleet.DeviceIOS, fleet.DeviceRouterOS, fleet.DeviceLinux,
	} {
		require.True(t, dt.Known())
		_, unsupported := handlerFor(dt).(unsupportedHandler)
		require.False(t, unsupported, dt.String())
	}
	require.IsType(t, fileHandler{}, handlerFor(fleet.DeviceGOS))
	require.IsType(t, unsupportedHandler{}, handlerFor(fleet.DeviceUnknown))
	require.IsType(t, unsupportedHandler{}, handlerFor(fleet.DeviceType(99)))
}

func TestRun_HostFilter(t *testing.T) {
	c, f := newCollector(t)
	fl := &fleet.Fleet{
		DataDir: t.TempDir(),
		Hosts:   []fleet.HostEntry{gosHost("h1", "/a"), gosHost("h2", "/b")},
	}
	var hosts []string
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r remote.Request) (remote.Artifact, error) {
			hosts = append(hosts, r.Host)
			return artifactFor(r), nil
		})

	rep, err := c.Run(context.Background(), fl, "h2", "nope")
	require.NoError(t, err)
	require.Len(t, rep.Hosts, 2)
	require.Equal(t, []string{"h2"}, hosts)
	require.Equal(t, "h2", rep.Hosts[0].Host)
	require.Equal(t, StatusFailed, rep.Hosts[1].Status)
	require.Equal(t, 1, rep.Failed())
	require.ErrorContains(t, rep.Err(), `host "nope" not found`)
}

func TestRun_CreatesDataDir(t *testing.T) {
	c, _ := newCollector(t)
	dir := filepath.Join(t.TempDir(), "nested", "data")
	fl := &fleet.Fleet{DataDir: dir, Hosts: []fleet.HostEntry{gosHost("h1")}}

	_, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func TestRun_WorkersKeepFleetOrder(t *testing.T) {
	c, f := newCollector(t)
	c.Workers = 4
	var hosts []fleet.HostEntry
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		hosts = append(hosts, gosHost(n, "/cfg"))
	}
	fl := &fleet.Fleet{DataDir: t.TempDir(), Hosts: hosts}
	f.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r remote.Request) (remote.Artifact, error) { return artifactFor(r), nil }).
		Times(len(hosts))

	rep, err := c.Run(context.Background(), fl)
	require.NoError(t, err)
	require.NoError(t, rep.Err())
	for i, h := range rep.Hosts {
		require.Equal(t, hosts[i].Name, h.Host)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	c, _ := newCollector(t)
	fl := &fleet.Fleet{DataDir: t.TempDir(), Hosts: []fleet.HostEntry{gosHost("h1", "/a"), gosHost("h2", "/b")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := c.Run(ctx, fl)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Failed())
	require.ErrorIs(t, rep.Err(), context.Canceled)
}
