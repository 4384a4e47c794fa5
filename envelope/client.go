package envelope

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// AdminUser is the account used for metadata retrieval.
const AdminUser = "admin"

// maxBody caps how much of a metadata response is read.
const maxBody = 1 << 20

// Credentials identify the custody service and customer to fetch metadata for.
type Credentials struct {
	Hostname     string
	Password     string
	CustomerName string
}

// RetrieveError is a non-200 or non-object response from the metadata endpoint.
type RetrieveError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RetrieveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata request failed (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("metadata request failed (HTTP %d): %s", e.StatusCode, e.Body)
}

func (e *RetrieveError) Unwrap() error { return e.Err }

// Client fetches the envelope from GET <scheme>://<hostname>/api/metadata.
type Client struct {
	HTTPClient *http.Client
	Scheme     string
	Logger     zerolog.Logger
}

// Retrieve performs the metadata request. The body is returned only when the
// response is 200 with a JSON object.
func (c *Client) Retrieve(ctx context.Context, cr Credentials) (*Envelope, error) {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "https"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     cr.Hostname,
		Path:     "/api/metadata",
		RawQuery: url.Values{"customername": {cr.CustomerName}}.Encode(),
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}
	req.SetBasicAuth(AdminUser, cr.Password)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	c.Logger.Debug().Str("url", u.String()).Msg("requesting metadata")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read metadata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RetrieveError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	env, err := Parse(body)
	if err != nil {
		return nil, &RetrieveError{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	return env, nil
}
