package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/nuclearcat/mybackup/envelope"
)

// maxResponse caps how much of a response body is kept.
const maxResponse = 1 << 20

// Result is the raw HTTP response to one upload.
type Result struct {
	StatusCode int
	Body       []byte
}

// Client uploads files with one envelope snapshot attached to every request.
type Client struct {
	HTTPClient *http.Client
	Envelope   *envelope.Envelope
	Logger     zerolog.Logger
}

// Endpoint returns the upload URL for a custody service host.
func Endpoint(scheme, hostname string) string {
	if scheme == "" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: hostname, Path: "/api/upload"}).String()
}

// Upload validates path and posts it to endpoint. Any HTTP response, whatever
// its status, is returned as a Result; pass it to Verify. A failed pre-check
// returns *ValidationError and a failed exchange *TransportError.
func (c *Client) Upload(ctx context.Context, path, endpoint string) (*Result, error) {
	fi, err := Validate(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: err.Error(), Err: err}
	}
	defer f.Close()

	body, err := newMultipartBody(f, filepath.Base(path), fi.Size(), c.Envelope.Bytes())
	if err != nil {
		return nil, fmt.Errorf("build upload body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body.reader)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	req.ContentLength = body.length
	req.Header.Set("Content-Type", body.contentType)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	c.Logger.Info().
		Str("file", path).
		Str("size", humanize.IBytes(uint64(fi.Size()))).
		Str("endpoint", endpoint).
		Msg("uploading")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}
	return &Result{StatusCode: resp.StatusCode, Body: b}, nil
}
