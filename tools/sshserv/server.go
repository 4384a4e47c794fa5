// Package sshserv is a small in-process SSH server used by tests and by the
// ssh_test_server tool. It serves files from the local filesystem through the
// SCP source protocol ("scp -f <path>") and the "sftp" subsystem.
package sshserv

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Option configures a Server.
type Option func(*Server)

// WithAuthorizedKey restricts logins to the given public key. Without it
// any client is accepted with no authentication.
func WithAuthorizedKey(k ssh.PublicKey) Option {
	return func(s *Server) { s.authorized = k }
}

// Server is a running test SSH server.
type Server struct {
	ln         net.Listener
	authorized ssh.PublicKey
	stopCh     chan struct{}
	done       chan struct{}

	mu   sync.Mutex
	exec []string
}

// Listen starts a server on listenAddr (e.g. 127.0.0.1:0).
func Listen(listenAddr string, opts ...Option) (*Server, error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{ln: ln, stopCh: make(chan struct{}), done: make(chan struct{})}
	for _, o := range opts {
		o(s)
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	cfg := &ssh.ServerConfig{NoClientAuth: s.authorized == nil}
	if s.authorized != nil {
		want := s.authorized.Marshal()
		cfg.PublicKeyCallback = func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), want) {
				return nil, nil
			}
			return nil, errors.New("unknown public key")
		}
	}
	cfg.AddHostKey(signer)

	go func() {
		defer close(s.done)
		for {
			_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(500 * time.Millisecond))
			conn, err := ln.Accept()
			select {
			case <-s.stopCh:
				if conn != nil {
					_ = conn.Close()
				}
				return
			default:
			}
			if err != nil {
				continue
			}
			go s.handleConn(conn, cfg)
		}
	}()
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Stop closes the listener and waits for the accept loop to exit.
func (s *Server) Stop() {
	close(s.stopCh)
	_ = s.ln.Close()
	<-s.done
}

// ExecCount returns how many exec requests the server has received.
func (s *Server) ExecCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exec)
}

func (s *Server) recordExec(cmd string) {
	s.mu.Lock()
	s.exec = append(s.exec, cmd)
	s.mu.Unlock()
}

func (s *Server) handleConn(raw net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	defer func() { _ = sc.Close() }()
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "")
			continue
		}
		c, reqs, err := ch.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(c, reqs)
	}
}

func (s *Server) handleSession(ch ssh.Channel, in <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()
	for req := range in {
		switch req.Type {
		case "exec":
			cmd := payloadString(req.Payload)
			s.recordExec(cmd)
			_ = req.Reply(true, nil)
			path, ok := strings.CutPrefix(cmd, "scp -f ")
			if !ok {
				_, _ = fmt.Fprintf(ch.Stderr(), "unsupported command: %s\n", cmd)
				sendExit(ch, 127)
				return
			}
			sendExit(ch, scpSource(ch, unquote(path)))
			return
		case "subsystem":
			if payloadString(req.Payload) != "sftp" {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			srv, err := sftp.NewServer(ch)
			if err != nil {
				return
			}
			_ = srv.Serve()
			_ = srv.Close()
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

// scpSource plays the remote side of "scp -f" for a single file and returns
// the process exit status.
func scpSource(ch ssh.Channel, path string) uint32 {
	br := bufio.NewReader(ch)
	waitAck := func() bool {
		b, err := br.ReadByte()
		return err == nil && b == 0
	}
	if !waitAck() {
		return 1
	}
	f, err := os.Open(path)
	if err != nil {
		_, _ = fmt.Fprintf(ch, "\x01scp: %s: No such file or directory\n", path)
		return 1
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		_, _ = fmt.Fprintf(ch, "\x01scp: %s: not a regular file\n", path)
		return 1
	}
	_, _ = fmt.Fprintf(ch, "C%04o %d %s\n", st.Mode().Perm(), st.Size(), filepath.Base(path))
	if !waitAck() {
		return 1
	}
	if _, err := io.Copy(ch, f); err != nil {
		return 1
	}
	_, _ = ch.Write([]byte{0})
	if !waitAck() {
		return 1
	}
	return 0
}

func payloadString(p []byte) string {
	if len(p) < 4 {
		return ""
	}
	n := binary.BigEndian.Uint32(p)
	if int(n)+4 > len(p) {
		return ""
	}
	return string(p[4 : 4+n])
}

func sendExit(ch ssh.Channel, code uint32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, code)
	_, _ = ch.SendRequest("exit-status", false, b)
}

// unquote reverses single-quote shell quoting of one argument.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return strings.ReplaceAll(s[1:len(s)-1], `'\''`, "'")
	}
	return s
}
