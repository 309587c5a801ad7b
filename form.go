package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form is a multipart/form-data payload of named fields and file parts.
// Passing a *Form to [Client.Post] or [Client.Put] bypasses body
// serialization: the transport encodes the parts itself and supplies the
// boundary-bearing Content-Type, so the merged header set never carries a
// Content-Type of its own for form requests.
type Form struct {
	parts []formPart
}

type formPart struct {
	field    string
	filename string
	value    string
	r        io.Reader
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, formPart{field: name, value: value})
	return f
}

// AddFile appends a file part whose content is consumed from r when the
// request is sent.
func (f *Form) AddFile(name, filename string, r io.Reader) *Form {
	f.parts = append(f.parts, formPart{field: name, filename: filename, r: r})
	return f
}

// encode serializes the form with a fresh boundary, returning the wire body
// and the matching multipart Content-Type.
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, part := range f.parts {
		if part.r == nil {
			if err := w.WriteField(part.field, part.value); err != nil {
				return nil, "", fmt.Errorf("writing form field %q: %w", part.field, err)
			}
			continue
		}

		fw, err := w.CreateFormFile(part.field, part.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file %q: %w", part.field, err)
		}
		if _, err := io.Copy(fw, part.r); err != nil {
			return nil, "", fmt.Errorf("copying form file %q: %w", part.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
