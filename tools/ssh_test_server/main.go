// Command ssh_test_server runs the in-process SSH server used by the tests so
// the collector can be pointed at it by hand. It serves files from the local
// filesystem over "scp -f" and the sftp subsystem.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/ssh"

	"github.com/nuclearcat/mybackup/tools/sshserv"
)

func main() {
	addr := flag.String("listen", "127.0.0.1:20222", "address to listen on")
	pubPath := flag.String("authorized-key", "", "public key file allowed to log in (default: no authentication)")
	flag.Parse()

	var opts []sshserv.Option
	if *pubPath != "" {
		b, err := os.ReadFile(*pubPath)
		if err != nil {
			fatal(err)
		}
		pub, _, _, _, err := ssh.ParseAuthorizedKey(b)
		if err != nil {
			fatal(fmt.Errorf("%s: %w", *pubPath, err))
		}
		opts = append(opts, sshserv.WithAuthorizedKey(pub))
	}

	s, err := sshserv.Listen(*addr, opts...)
	if err != nil {
		fatal(err)
	}
	defer s.Stop()
	_, _ = fmt.Fprintf(os.Stderr, "test ssh server listening on %s\n", s.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	_, _ = fmt.Fprintf(os.Stderr, "served %d exec request(s)\n", s.ExecCount())
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, "ssh_test_server:", err)
	os.Exit(1)
}
