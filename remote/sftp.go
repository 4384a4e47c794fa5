package remote

import (
	"fmt"
	"io"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// sftpCopy retrieves remotePath through the SFTP subsystem.
func sftpCopy(conn *ssh.Client, remotePath string, dst io.Writer) (int64, error) {
	c, err := sftp.NewClient(conn)
	if err != nil {
		return 0, fmt.Errorf("start sftp: %w", err)
	}
	defer func() { _ = c.Close() }()

	f, err := c.Open(remotePath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if st.IsDir() {
		return 0, fmt.Errorf("%s is a directory", remotePath)
	}
	return io.Copy(dst, f)
}
