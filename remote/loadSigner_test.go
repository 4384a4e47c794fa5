package remote

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadSigner_FileNotFound(t *testing.T) {
	_, err := loadSigner(filepath.Join(t.TempDir(), "missing_key"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSigner_RSAKey_Success(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	p := writeTemp(t, t.TempDir(), "id_rsa", string(pemBytes))
	s, err := loadSigner(p, "")
	require.NoError(t, err)
	require.NotNil(t, s.PublicKey())
}

func TestLoadSigner_EncryptedKey_MissingPassphrase(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	//nolint:staticcheck // legacy PEM encryption is what older devices ship.
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key), []byte("pp"), x509.PEMCipherAES256)
	require.NoError(t, err)
	p := writeTemp(t, t.TempDir(), "id_rsa_enc", string(pem.EncodeToMemory(block)))

	_, err = loadSigner(p, "")
	require.ErrorIs(t, err, ErrKeyEncrypted)
	require.ErrorContains(t, err, p)

	s, err := loadSigner(p, "pp")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestLoadSigner_Garbage(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "id_bad", "not a key")
	_, err := loadSigner(p, "")
	require.ErrorContains(t, err, "private key "+p)
	require.NotErrorIs(t, err, ErrKeyEncrypted)
}
