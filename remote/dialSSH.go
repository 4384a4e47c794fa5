package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// dialConfig carries everything needed to open one authenticated connection.
type dialConfig struct {
	addr           string
	user           string
	keyPath        string
	passphrase     string
	knownHostsPath string
	strictHost     bool
	timeout        time.Duration
}

// dialSSH establishes an SSH client connection. Errors are *dialError values
// classified as KindConnect or KindAuth.
func dialSSH(ctx context.Context, dc dialConfig) (*ssh.Client, error) {
	var auths []ssh.AuthMethod

	if dc.keyPath != "" {
		signer, err := loadSigner(dc.keyPath, dc.passphrase)
		if err != nil {
			return nil, &dialError{KindAuth, fmt.Errorf("load key: %w", err)}
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	// Try SSH agent if available
	if a := os.Getenv("SSH_AUTH_SOCK"); a != "" {
		if conn, err := net.Dial("unix", a); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	var hostKeyCB ssh.HostKeyCallback
	if dc.strictHost {
		if _, err := os.Stat(dc.knownHostsPath); err != nil {
			return nil, &dialError{KindAuth, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled", dc.knownHostsPath)}
		}
		cb, err := knownhosts.New(dc.knownHostsPath)
		if err != nil {
			return nil, &dialError{KindAuth, fmt.Errorf("known_hosts: %w", err)}
		}
		hostKeyCB = cb
	} else {
		hostKeyCB = ssh.InsecureIgnoreHostKey()
	}

	cfg := &ssh.ClientConfig{
		User:            dc.user,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         dc.timeout,
	}

	d := net.Dialer{Timeout: dc.timeout}
	conn, err := d.DialContext(ctx, "tcp", dc.addr)
	if err != nil {
		return nil, &dialError{KindConnect, err}
	}

	// The handshake is bounded by the connect timeout and by ctx.
	if dc.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(dc.timeout))
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, dc.addr, cfg)
	stopped := stop()
	if err != nil {
		_ = conn.Close()
		if !stopped {
			err = errors.Join(ctx.Err(), err)
		}
		return nil, &dialError{handshakeKind(err), err}
	}
	if !stopped {
		_ = c.Close()
		return nil, &dialError{KindConnect, ctx.Err()}
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}

// handshakeKind separates credential and host-key rejections from plain
// connection problems.
func handshakeKind(err error) Kind {
	var keyErr *knownhosts.KeyError
	var revoked *knownhosts.RevokedError
	if errors.As(err, &keyErr) || errors.As(err, &revoked) {
		return KindAuth
	}
	if strings.Contains(err.Error(), "unable to authenticate") {
		return KindAuth
	}
	return KindConnect
}
