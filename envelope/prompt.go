package envelope

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks an operator for metadata credentials.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// readPassword reads a line without echo; nil falls back to a plain line.
	readPassword func() (string, error)
}

// NewTerminalPrompter prompts on stdin/stderr, hiding the password when stdin
// is a terminal.
func NewTerminalPrompter() *Prompter {
	p := &Prompter{In: os.Stdin, Out: os.Stderr}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.readPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.Out)
			return string(b), err
		}
	}
	return p
}

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask reads hostname, admin password and customer name in that order.
func (p *Prompter) Ask() (Credentials, error) {
	r := bufio.NewReader(p.In)
	line := func(label string) (string, error) {
		fmt.Fprint(p.Out, label)
		s, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || s == "") {
			return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
		}
		return strings.TrimSpace(s), nil
	}

	var cr Credentials
	var err error
	if cr.Hostname, err = line("Enter hostname: "); err != nil {
		return cr, err
	}
	if p.readPassword != nil {
		fmt.Fprint(p.Out, "Enter admin password: ")
		if cr.Password, err = p.readPassword(); err != nil {
			return cr, fmt.Errorf("read admin password: %w", err)
		}
	} else if cr.Password, err = line("Enter admin password: "); err != nil {
		return cr, err
	}
	if cr.CustomerName, err = line("Enter customer name: "); err != nil {
		return cr, err
	}
	if cr.Hostname == "" {
		return cr, errors.New("hostname must not be empty")
	}
	return cr, nil
}

// Acquire prompts for credentials, fetches the envelope and caches it at path.
func Acquire(ctx context.Context, path string, p *Prompter, c *Client) (*Envelope, error) {
	cr, err := p.Ask()
	if err != nil {
		return nil, err
	}
	env, err := c.Retrieve(ctx, cr)
	if err != nil {
		return nil, err
	}
	if err := Save(path, env); err != nil {
		return nil, err
	}
	c.Logger.Info().Str("path", path).Msg("metadata saved")
	return env, nil
}

// LoadOrAcquire loads the cached envelope, falling back to Acquire when the
// cache is absent and a prompter is available.
func LoadOrAcquire(ctx context.Context, path string, p *Prompter, c *Client) (*Envelope, error) {
	env, err := Load(path)
	if err == nil || !errors.Is(err, ErrMissing) || p == nil {
		return env, err
	}
	return Acquire(ctx, path, p, c)
}
