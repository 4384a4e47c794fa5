package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuclearcat/mybackup/envelope"
	"github.com/nuclearcat/mybackup/upload"
)

func TestUpload_Directory(t *testing.T) {
	resetConfig()
	stubSeams(t)
	c := newCustody(t, `{"status":"OK"}`)
	tmp := t.TempDir()
	meta := filepath.Join(tmp, "metadata.json")
	writeMetadata(t, meta, c.host())
	data := filepath.Join(tmp, "data")
	writeTemp(t, data, "h1__etc_a", "a")
	writeTemp(t, data, "h2__etc_b", "b")
	writeTemp(t, data, ".h2__etc_b.partial-123", "partial")

	out, err := execute(t, "upload", data, "--metadata", meta, "--scheme", "http")
	require.NoError(t, err, out)
	require.Equal(t, []string{"h1__etc_a", "h2__etc_b"}, c.names)
	require.Contains(t, out, "Accepted: 2  Rejected: 0")
}

func TestUpload_ValidationFailureContinues(t *testing.T) {
	resetConfig()
	stubSeams(t)
	c := newCustody(t, `{"status":"OK"}`)
	tmp := t.TempDir()
	meta := filepath.Join(tmp, "metadata.json")
	writeMetadata(t, meta, c.host())
	empty := writeTemp(t, tmp, "empty", "")
	good := writeTemp(t, tmp, "good", "x")

	out, err := execute(t, "upload", empty, good, "--metadata", meta, "--scheme", "http")
	var ve *upload.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, upload.ReasonTooSmall, ve.Reason)
	require.Equal(t, []string{"good"}, c.names)
	require.Contains(t, out, "failed   "+empty)
}

func TestUpload_TransportLevelFailure(t *testing.T) {
	resetConfig()
	stubSeams(t)
	c := newCustody(t, `{"status":"OK"}`)
	tmp := t.TempDir()
	meta := filepath.Join(tmp, "metadata.json")
	writeMetadata(t, meta, c.host())
	f := writeTemp(t, tmp, "cfg", "x")

	// the stub only serves http; https gets a handshake error
	_, err := execute(t, "upload", f, "--metadata", meta, "--scheme", "https")
	var te *upload.TransportError
	require.ErrorAs(t, err, &te)
}

func TestUpload_MissingMetadataNoPrompt(t *testing.T) {
	resetConfig()
	stubSeams(t)
	isInteractiveFunc = func() bool { return true }
	prompted := false
	newPrompterFunc = func() *envelope.Prompter {
		prompted = true
		return &envelope.Prompter{In: strings.NewReader(""), Out: &strings.Builder{}}
	}
	tmp := t.TempDir()
	f := writeTemp(t, tmp, "cfg", "x")

	_, err := execute(t, "upload", f, "--metadata", filepath.Join(tmp, "metadata.json"), "--no-prompt")
	require.ErrorIs(t, err, envelope.ErrMissing)
	require.False(t, prompted)
}

func TestUpload_AcquiresMissingMetadata(t *testing.T) {
	resetConfig()
	stubSeams(t)
	c := newCustody(t, `{"status":"OK"}`)
	meta := newMetadataService(t, c.host())
	isInteractiveFunc = func() bool { return true }
	newPrompterFunc = func() *envelope.Prompter {
		return &envelope.Prompter{In: strings.NewReader(meta.host() + "\ns3cret\nACME\n"), Out: &strings.Builder{}}
	}
	tmp := t.TempDir()
	metaPath := filepath.Join(tmp, "metadata.json")
	f := writeTemp(t, tmp, "cfg", "x")

	out, err := execute(t, "upload", f, "--metadata", metaPath, "--scheme", "http")
	require.NoError(t, err, out)
	require.FileExists(t, metaPath)
	require.Equal(t, []string{"cfg"}, c.names)
}
