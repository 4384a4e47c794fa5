package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody lays out the form as head | file | CRLF | tail so the file is
// streamed from disk while the total length stays known up front.
type multipartBody struct {
	contentType string
	length      int64
	reader      io.Reader
}

func newMultipartBody(file io.Reader, name string, size int64, metadata []byte) (*multipartBody, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)
	bh := make(textproto.MIMEHeader)
	bh.Set("Content-Disposition", fmt.Sprintf(`form-data; name="backup"; filename="%s"`, quoteEscaper.Replace(name)))
	bh.Set("Content-Type", "application/octet-stream")
	if _, err := mw.CreatePart(bh); err != nil {
		return nil, err
	}

	var tail bytes.Buffer
	tw := multipart.NewWriter(&tail)
	if err := tw.SetBoundary(mw.Boundary()); err != nil {
		return nil, err
	}
	mh := make(textproto.MIMEHeader)
	mh.Set("Content-Disposition", `form-data; name="metadata"; filename="metadata"`)
	mh.Set("Content-Type", "application/json")
	pw, err := tw.CreatePart(mh)
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write(metadata); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	const sep = "\r\n"
	return &multipartBody{
		contentType: mw.FormDataContentType(),
		length:      int64(head.Len()) + size + int64(len(sep)) + int64(tail.Len()),
		reader:      io.MultiReader(&head, io.LimitReader(file, size), strings.NewReader(sep), &tail),
	}, nil
}
