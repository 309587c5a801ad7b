package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the normalized result of a successful call. The raw payload is
// always retained; Kind reports how it was interpreted.
type Response struct {
	StatusCode int
	Status     string
	URL        string
	Header     http.Header
	Kind       Kind

	raw   []byte
	value any
}

// Bytes returns the raw response payload.
func (r *Response) Bytes() []byte {
	return r.raw
}

// Text returns the response payload as a string.
func (r *Response) Text() string {
	return string(r.raw)
}

// JSON returns the generically decoded payload for [KindJSON] responses. It
// is nil for other kinds, and nil when the event transport received a payload
// that was not valid JSON.
func (r *Response) JSON() any {
	return r.value
}

// Decode unmarshals the raw payload into dst, which must be a pointer.
func (r *Response) Decode(dst any) error {
	if err := json.Unmarshal(r.raw, dst); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// decodeJSON decodes b leniently: an empty or unparseable payload yields a
// nil value while the raw bytes stay available on the Response.
func decodeJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}

	return v
}
