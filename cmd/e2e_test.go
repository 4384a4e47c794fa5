package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nuclearcat/mybackup/keygen"
	"github.com/nuclearcat/mybackup/remote"
	srv "github.com/nuclearcat/mybackup/tools/sshserv"
)

type fixture struct {
	dir      string
	config   string
	dataDir  string
	srcA     string
	srcB     string
	server   *srv.Server
	metadata string
}

// newFixture starts a test SSH server that only accepts a freshly generated
// key and writes a fleet config with a gos host over SCP, a gos host over
// SFTP and a junos host.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	key := filepath.Join(dir, ".ssh_id_ecdsa")
	pub, err := keygen.Generate(key, "test")
	require.NoError(t, err)

	s, err := srv.Listen("127.0.0.1:0", srv.WithAuthorizedKey(pub))
	if err != nil {
		t.Skipf("skipping e2e: cannot start test ssh server: %v", err)
	}
	t.Cleanup(s.Stop)
	host, port, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)

	f := &fixture{
		dir:      dir,
		dataDir:  filepath.Join(dir, "data"),
		srcA:     writeTemp(t, dir, "remote/mnt/flash/secure2/config.tgz", strings.Repeat("a", 50)),
		srcB:     writeTemp(t, dir, "remote/etc/edge.conf", "hostname edge\n"),
		server:   s,
		metadata: filepath.Join(dir, "metadata.json"),
	}
	f.config = writeTemp(t, dir, "config.yaml", fmt.Sprintf(`
datadir: %[1]s
hosts:
  - name: pppoe9
    type: gos
    host: %[2]s
    port: %[3]s
    username: root
    key: %[4]s
    backup:
      - %[5]s
      - %[6]s/
  - name: edge
    type: gos
    host: %[2]s
    port: %[3]s
    username: root
    key: %[4]s
    transport: sftp
    backup:
      - %[7]s
  - name: core
    type: junos
    host: %[2]s
    port: %[3]s
    username: backup
    key: %[4]s
    backup:
      - /config/juniper.conf.gz
`, f.dataDir, host, port, key, f.srcA, filepath.Dir(f.srcA), f.srcB))
	return f
}

func (f *fixture) args(cmd string, extra ...string) []string {
	return append([]string{cmd, "--config", f.config, "--metadata", f.metadata, "--strict-host-key=false"}, extra...)
}

type custody struct {
	*httptest.Server
	mu       sync.Mutex
	names    []string
	metadata []string
}

// newCustody starts an upload endpoint answering every upload with body.
func newCustody(t *testing.T, body string) *custody {
	t.Helper()
	c := &custody{}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		file, hdr, err := r.FormFile("backup")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		var meta []byte
		if fhs := r.MultipartForm.File["metadata"]; len(fhs) == 1 {
			if mf, err := fhs[0].Open(); err == nil {
				meta, _ = io.ReadAll(mf)
				_ = mf.Close()
			}
		}
		c.mu.Lock()
		c.names = append(c.names, hdr.Filename)
		c.metadata = append(c.metadata, string(meta))
		c.mu.Unlock()
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(c.Close)
	return c
}

func (c *custody) host() string {
	u, _ := url.Parse(c.URL)
	return u.Host
}

func writeMetadata(t *testing.T, path, hostname string) {
	t.Helper()
	b, err := json.Marshal(map[string]any{"hostname": hostname, "customer": "ACME"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
}

func TestEndToEnd_Collect(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)
	reportPath := filepath.Join(f.dir, "reports", "run.yaml")

	out, err := execute(t, f.args("collect", "--report", reportPath)...)
	require.NoError(t, err, out)

	a, err := os.ReadFile(filepath.Join(f.dataDir, remote.LocalName("pppoe9", f.srcA)))
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", 50), string(a))
	b, err := os.ReadFile(filepath.Join(f.dataDir, remote.LocalName("edge", f.srcB)))
	require.NoError(t, err)
	require.Equal(t, "hostname edge\n", string(b))

	entries, err := os.ReadDir(f.dataDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Contains(t, out, "core (junos): not-implemented: junos not implemented yet")
	require.Contains(t, out, "directory targets are not supported")

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep yamlReport
	require.NoError(t, yaml.Unmarshal(raw, &rep))
	require.NotEmpty(t, rep.RunID)
	require.Len(t, rep.Hosts, 3)
	require.Equal(t, "ok", rep.Hosts[0].Status)
	require.Equal(t, []string{"ok", "skipped"}, []string{rep.Hosts[0].Targets[0].Status, rep.Hosts[0].Targets[1].Status})
	require.EqualValues(t, 50, rep.Hosts[0].Targets[0].Size)
	require.Equal(t, "not-implemented", rep.Hosts[2].Status)
	require.Nil(t, rep.Uploads)
}

func TestEndToEnd_CollectHostFilterAndFailure(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)
	require.NoError(t, os.Remove(f.srcB))

	out, err := execute(t, f.args("collect", "--host", "edge")...)
	require.Error(t, err)
	require.ErrorIs(t, err, remote.ErrTransfer)
	require.NotContains(t, out, "pppoe9")

	entries, _ := os.ReadDir(f.dataDir)
	require.Empty(t, entries)
}

func TestEndToEnd_PreflightAbortsBeforeConnecting(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)
	raw, err := os.ReadFile(f.config)
	require.NoError(t, err)
	broken := strings.Replace(string(raw), filepath.Join(f.dir, ".ssh_id_ecdsa"), filepath.Join(f.dir, "missing_key"), 2)
	require.NoError(t, os.WriteFile(f.config, []byte(broken), 0o600))

	_, err = execute(t, f.args("collect")...)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pppoe9")
	require.Contains(t, err.Error(), "edge")
	require.Contains(t, err.Error(), "mybackup genkey")
	require.Zero(t, f.server.ExecCount())
	require.NoDirExists(t, f.dataDir)
}

func TestEndToEnd_Run(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)
	c := newCustody(t, `{"status":"OK"}`)
	writeMetadata(t, f.metadata, c.host())
	reportPath := filepath.Join(f.dir, "run.yaml")

	out, err := execute(t, f.args("run", "--scheme", "http", "--report", reportPath)...)
	require.NoError(t, err, out)
	require.Contains(t, out, "Accepted: 2  Rejected: 0")

	sort.Strings(c.names)
	require.Equal(t, []string{remote.LocalName("edge", f.srcB), remote.LocalName("pppoe9", f.srcA)}, c.names)
	for _, m := range c.metadata {
		require.JSONEq(t, fmt.Sprintf(`{"hostname":%q,"customer":"ACME"}`, c.host()), m)
	}

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep yamlReport
	require.NoError(t, yaml.Unmarshal(raw, &rep))
	require.NotNil(t, rep.Uploads)
	require.Equal(t, 2, rep.Uploads.Accepted)
	require.Equal(t, "http://"+c.host()+"/api/upload", rep.Uploads.Endpoint)
}

func TestEndToEnd_RunRejected(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)
	c := newCustody(t, `{"status":"ERROR"}`)
	writeMetadata(t, f.metadata, c.host())

	out, err := execute(t, f.args("run", "--scheme", "http")...)
	require.ErrorContains(t, err, "application-level failure: ERROR")
	require.Contains(t, out, "Accepted: 0  Rejected: 2")
}

func TestEndToEnd_RunNeedsMetadataFirst(t *testing.T) {
	resetConfig()
	stubSeams(t)
	f := newFixture(t)

	_, err := execute(t, f.args("run", "--scheme", "http")...)
	require.ErrorContains(t, err, "mybackup metadata")
	require.Zero(t, f.server.ExecCount())
}
