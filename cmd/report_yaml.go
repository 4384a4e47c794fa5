package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nuclearcat/mybackup/collect"
	"github.com/nuclearcat/mybackup/upload"
)

// yamlReport is the top-level structure serialized to the --report file: run
// metadata, per-host collection outcomes and, for run, the upload verdicts.
type yamlReport struct {
	RunID     string       `yaml:"run_id"`
	Generated string       `yaml:"generated"`
	Elapsed   string       `yaml:"elapsed"`
	Config    string       `yaml:"config"`
	Hosts     []yamlHost   `yaml:"hosts"`
	Uploads   *yamlUploads `yaml:"uploads,omitempty"`
}

// yamlHost groups the target outcomes of a single host.
type yamlHost struct {
	Host    string       `yaml:"host"`
	Type    string       `yaml:"type,omitempty"`
	Status  string       `yaml:"status"`
	Note    string       `yaml:"note,omitempty"`
	Error   string       `yaml:"error,omitempty"`
	Targets []yamlTarget `yaml:"targets,omitempty"`
}

// yamlTarget records the outcome of a single backup target.
type yamlTarget struct {
	Path      string `yaml:"path"`
	Status    string `yaml:"status"`
	Note      string `yaml:"note,omitempty"`
	LocalPath string `yaml:"local_path,omitempty"`
	Size      int64  `yaml:"size,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

type yamlUploads struct {
	Endpoint string       `yaml:"endpoint"`
	Accepted int          `yaml:"accepted"`
	Rejected int          `yaml:"rejected"`
	Files    []yamlUpload `yaml:"files"`
}

type yamlUpload struct {
	Path       string `yaml:"path"`
	Verdict    string `yaml:"verdict"`
	StatusCode int    `yaml:"status_code,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

// newYAMLReport builds the report for a collection and optional upload batch.
func newYAMLReport(rep *collect.Report, sum *upload.Summary) *yamlReport {
	r := &yamlReport{
		RunID:     rep.RunID,
		Generated: rep.Finished.Format(time.RFC3339),
		Elapsed:   rep.Finished.Sub(rep.Started).Round(time.Millisecond).String(),
		Config:    cfgConfigPath,
	}
	for _, h := range rep.Hosts {
		yh := yamlHost{Host: h.Host, Type: h.Type, Status: string(h.Status), Note: h.Note}
		if h.Err != nil {
			yh.Error = h.Err.Error()
		}
		for _, t := range h.Targets {
			yt := yamlTarget{Path: t.Path, Status: string(t.Status), Note: t.Note}
			if t.Artifact != nil {
				yt.LocalPath = t.Artifact.LocalPath
				yt.Size = t.Artifact.Size
			}
			if t.Err != nil {
				yt.Error = t.Err.Error()
			}
			yh.Targets = append(yh.Targets, yt)
		}
		r.Hosts = append(r.Hosts, yh)
	}
	if sum != nil {
		r.Uploads = &yamlUploads{Endpoint: sum.Endpoint, Accepted: sum.Accepted(), Rejected: sum.Rejected()}
		for _, o := range sum.Outcomes {
			yu := yamlUpload{Path: o.Path}
			if o.Verdict != nil {
				yu.Verdict = o.Verdict.String()
				yu.StatusCode = o.Verdict.StatusCode
			} else {
				yu.Verdict = "error"
				yu.Error = o.Err.Error()
			}
			r.Uploads.Files = append(r.Uploads.Files, yu)
		}
	}
	return r
}

// writeYAMLReport serializes the report to YAML with indentation and writes to
// the provided writer in a buffered manner for efficiency.
func writeYAMLReport(w io.Writer, r *yamlReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// saveYAMLReport writes the report to path, creating parent directories.
func saveYAMLReport(path string, r *yamlReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := writeYAMLReport(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write YAML report: %w", err)
	}
	return f.Close()
}
