package remote

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// ErrKeyEncrypted is returned for a protected private key when no passphrase
// was configured.
var ErrKeyEncrypted = errors.New("private key is encrypted")

// loadSigner reads the private key at path, decrypting it with passphrase
// when one is set.
func loadSigner(path, passphrase string) (ssh.Signer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var signer ssh.Signer
	if passphrase == "" {
		signer, err = ssh.ParsePrivateKey(pem)
	} else {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	}
	var missing *ssh.PassphraseMissingError
	switch {
	case errors.As(err, &missing):
		return nil, fmt.Errorf("private key %s: %w, set --passphrase or MYBACKUP_PASSPHRASE", path, ErrKeyEncrypted)
	case err != nil:
		return nil, fmt.Errorf("private key %s: %w", path, err)
	}
	return signer, nil
}
