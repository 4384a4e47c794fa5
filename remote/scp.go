package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

// scpError is a failure reported by the remote scp process.
type scpError struct {
	msg string
}

func (e *scpError) Error() string { return "scp: " + strings.TrimPrefix(e.msg, "scp: ") }

// Is lets callers detect a missing remote file with fs.ErrNotExist.
func (e *scpError) Is(target error) bool {
	return target == fs.ErrNotExist && strings.Contains(e.msg, "No such file")
}

// scpCopy retrieves remotePath over the SCP source protocol.
func scpCopy(conn *ssh.Client, remotePath string, dst io.Writer) (int64, error) {
	return scpReceive(clientOpener{conn}, remotePath, dst)
}

// scpReceive runs "scp -f" on the remote side and reads exactly one file.
func scpReceive(client sessionOpener, remotePath string, dst io.Writer) (int64, error) {
	sess, err := client.NewSession()
	if err != nil {
		return 0, fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = sess.Close() }()

	stdin, err := sess.StdinPipe()
	if err != nil {
		return 0, err
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		return 0, err
	}
	if err := sess.Start(scpSourceCommand(remotePath)); err != nil {
		return 0, fmt.Errorf("start scp: %w", err)
	}

	r := bufio.NewReader(stdout)
	ack := func() error {
		_, err := stdin.Write([]byte{0})
		return err
	}
	if err := ack(); err != nil {
		return 0, err
	}

	var n int64
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("read scp header: %w", err)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("read scp header: %w", err)
		}
		line = strings.TrimSuffix(line, "\n")
		switch b {
		case 'T':
			// Timestamps only appear with -p; acknowledge and move on.
			if err := ack(); err != nil {
				return 0, err
			}
			continue
		case 'C':
			size, err := parseSCPHeader(line)
			if err != nil {
				return 0, err
			}
			if err := ack(); err != nil {
				return 0, err
			}
			n, err = io.CopyN(dst, r, size)
			if err != nil {
				return n, fmt.Errorf("read payload: %w", err)
			}
			if err := readSCPStatus(r); err != nil {
				return n, err
			}
			if err := ack(); err != nil {
				return n, err
			}
		case 'D', 'E':
			return 0, fmt.Errorf("%s is a directory", remotePath)
		case 1, 2:
			return 0, &scpError{msg: line}
		default:
			return 0, fmt.Errorf("unexpected scp response %q", string(b)+line)
		}
		break
	}

	_ = stdin.Close()
	if err := sess.Wait(); err != nil {
		var missing *ssh.ExitMissingError
		if !errors.As(err, &missing) {
			return n, fmt.Errorf("scp exit: %w", err)
		}
	}
	return n, nil
}

// parseSCPHeader parses the "<mode> <size> <name>" part of a C record.
func parseSCPHeader(line string) (int64, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed scp header %q", line)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("malformed scp size %q", parts[1])
	}
	return size, nil
}

func readSCPStatus(r *bufio.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("read scp status: %w", err)
	}
	if b == 0 {
		return nil
	}
	msg, _ := r.ReadString('\n')
	return &scpError{msg: strings.TrimSuffix(msg, "\n")}
}
