package remote

import (
	"errors"
	"io"

	"golang.org/x/crypto/ssh"
)

// execSession is the part of an SSH exec channel the scp receiver drives.
// *ssh.Session satisfies it.
type execSession interface {
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.Reader, error)
	Start(cmd string) error
	Wait() error
	Close() error
}

// sessionOpener opens exec channels on an established connection.
type sessionOpener interface {
	NewSession() (execSession, error)
}

var errNilClient = errors.New("nil ssh client")

// clientOpener opens sessions on a live *ssh.Client.
type clientOpener struct {
	c *ssh.Client
}

func (o clientOpener) NewSession() (execSession, error) {
	if o.c == nil {
		return nil, errNilClient
	}
	s, err := o.c.NewSession()
	if err != nil {
		return nil, err
	}
	return s, nil
}
