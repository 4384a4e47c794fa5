package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// FileOutcome is the result of uploading one file. Exactly one of Verdict
// and Err is set.
type FileOutcome struct {
	Path    string
	Verdict *Verdict
	Err     error
}

// Accepted reports whether the upload was accepted.
func (o FileOutcome) Accepted() bool {
	return o.Verdict != nil && o.Verdict.Accepted
}

// Summary aggregates a batch.
type Summary struct {
	Endpoint string
	Outcomes []FileOutcome
}

// Accepted counts accepted uploads.
func (s *Summary) Accepted() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Accepted() {
			n++
		}
	}
	return n
}

// Rejected counts everything that was not accepted.
func (s *Summary) Rejected() int {
	return len(s.Outcomes) - s.Accepted()
}

// Err is nil when every file was accepted.
func (s *Summary) Err() error {
	var errs []error
	for _, o := range s.Outcomes {
		switch {
		case o.Err != nil:
			errs = append(errs, o.Err)
		case !o.Accepted():
			errs = append(errs, fmt.Errorf("upload %s rejected: %s", o.Path, o.Verdict))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d upload(s) failed: %w", len(errs), len(s.Outcomes), errors.Join(errs...))
}

// Expand replaces each directory in paths with its regular, non-hidden
// entries in name order. Nested directories are not descended into. Other
// paths are passed through for Validate to judge.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		var names []string
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, filepath.Join(p, n))
		}
	}
	return out, nil
}

// Batcher uploads many files one after another.
type Batcher struct {
	Client *Client
	// FailFast stops the batch at the first file that is not accepted.
	FailFast bool
	Logger   zerolog.Logger
}

// UploadAll expands paths and uploads every resulting file to endpoint.
func (b *Batcher) UploadAll(ctx context.Context, paths []string, endpoint string) (*Summary, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}
	s := &Summary{Endpoint: endpoint}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			s.Outcomes = append(s.Outcomes, FileOutcome{Path: f, Err: err})
			continue
		}
		o := b.uploadOne(ctx, f, endpoint)
		s.Outcomes = append(s.Outcomes, o)
		if b.FailFast && !o.Accepted() {
			b.Logger.Warn().Str("file", f).Msg("stopping batch after failed upload")
			break
		}
	}
	return s, nil
}

func (b *Batcher) uploadOne(ctx context.Context, path, endpoint string) FileOutcome {
	res, err := b.Client.Upload(ctx, path, endpoint)
	if err != nil {
		b.Logger.Error().Err(err).Str("file", path).Msg("upload failed")
		return FileOutcome{Path: path, Err: err}
	}
	v := Verify(res)
	if v.Accepted {
		b.Logger.Info().Str("file", path).Msg("backup uploaded successfully")
	} else {
		b.Logger.Error().Str("file", path).Str("reason", v.String()).Str("body", v.Body).Msg("upload rejected")
	}
	return FileOutcome{Path: path, Verdict: &v}
}
