package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/nuclearcat/mybackup/fleet"
)

// copier streams one remote file into dst over an established connection.
type copier func(conn *ssh.Client, remotePath string, dst io.Writer) (int64, error)

var copiers = map[string]copier{
	fleet.TransportSCP:  scpCopy,
	fleet.TransportSFTP: sftpCopy,
}

// Allow tests to stub dialing
var dialSSHFunc = dialSSH

// Fetcher retrieves remote files into DataDir.
type Fetcher struct {
	DataDir         string
	KnownHostsPath  string
	StrictHostKey   bool
	Passphrase      string
	ConnTimeout     time.Duration
	TransferTimeout time.Duration // 0 disables
	Logger          zerolog.Logger
}

// Fetch opens one SSH connection for req, copies the remote file and closes
// the connection. The destination only appears once the copy completed; a
// failed or cancelled transfer leaves nothing behind.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (Artifact, error) {
	fail := func(kind Kind, err error) (Artifact, error) {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		return Artifact{}, &FetchError{Kind: kind, Host: req.Host, Path: req.RemotePath, Err: err}
	}

	cp, ok := copiers[req.Transport]
	if !ok {
		return fail(KindTransfer, fmt.Errorf("unknown transport %q", req.Transport))
	}

	if f.TransferTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.TransferTimeout)
		defer cancel()
	}

	log := f.Logger.With().Str("host", req.Host).Str("path", req.RemotePath).Logger()
	log.Debug().Str("addr", req.Addr).Str("transport", req.Transport).Msg("connecting")

	client, err := dialSSHFunc(ctx, dialConfig{
		addr:           req.Addr,
		user:           req.Username,
		keyPath:        req.KeyPath,
		passphrase:     f.Passphrase,
		knownHostsPath: f.KnownHostsPath,
		strictHost:     f.StrictHostKey,
		timeout:        f.ConnTimeout,
	})
	if err != nil {
		kind := KindConnect
		var de *dialError
		if errors.As(err, &de) {
			kind = de.kind
		}
		return fail(kind, err)
	}
	defer func() { _ = client.Close() }()
	// Closing the connection unblocks an in-flight copy on cancellation.
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	name := LocalName(req.Host, req.RemotePath)
	dst := filepath.Join(f.DataDir, name)
	tmp, err := os.CreateTemp(f.DataDir, "."+name+".partial-*")
	if err != nil {
		return fail(KindTransfer, fmt.Errorf("create local file: %w", err))
	}
	tmpName := tmp.Name()
	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	n, err := cp(client, req.RemotePath, tmp)
	if err != nil {
		discard()
		return fail(KindTransfer, err)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return fail(KindTransfer, err)
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return fail(KindTransfer, fmt.Errorf("sync local file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fail(KindTransfer, fmt.Errorf("close local file: %w", err))
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fail(KindTransfer, fmt.Errorf("rename local file: %w", err))
	}

	log.Info().Str("local", dst).Str("size", humanize.IBytes(uint64(n))).Msg("retrieved")
	return Artifact{Host: req.Host, SourcePath: req.RemotePath, LocalPath: dst, Size: n}, nil
}
