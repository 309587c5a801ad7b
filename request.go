package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-Id"
)

// Request is the assembled outgoing request handed to a [Transport]. It
// lives for a single dispatch: the URL is fully joined, the headers merged
// and the body serialized, except for form payloads, which the transport
// encodes itself.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	Form   *Form

	progress func(Progress)
}

// encode returns the wire body and, for form payloads, the boundary-bearing
// Content-Type the transport must apply.
func (r *Request) encode() ([]byte, string, error) {
	if r.Form != nil {
		return r.Form.encode()
	}

	return r.Body, "", nil
}

// assemble builds the Request for one verb call: URL joining, header
// merging, body serialization and, when enabled, request-ID stamping.
func (c *Client) assemble(method, endpoint string, payload any, opts *callOptions) (*Request, error) {
	form, _ := payload.(*Form)
	isForm := form != nil

	header := c.mergeHeaders(opts.headers, isForm)

	req := &Request{
		Method:   method,
		URL:      c.buildURL(endpoint, opts.params),
		Header:   header,
		Form:     form,
		progress: opts.progress,
	}

	if !isForm && payload != nil {
		body, err := encodeBody(payload, header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	if c.requestIDs {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}

	return req, nil
}

// buildURL joins the configured base URL, the endpoint and the encoded query
// parameters. The endpoint is appended verbatim, with no slash normalization;
// a malformed result surfaces as a transport failure. The query separator is
// "&" when the joined URL already contains a "?", otherwise "?".
func (c *Client) buildURL(endpoint string, params map[string]any) string {
	full := c.baseURL + endpoint
	if len(params) == 0 {
		return full
	}

	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}

	return full + sep + encodeParams(params)
}

// encodeParams URL-encodes params in sorted key order. String values pass
// through as-is, anything else is stringified with fmt.
func encodeParams(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		if s, ok := v.(string); ok {
			values.Set(k, s)
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}

	return values.Encode()
}

// mergeHeaders assembles the final header set, later sources overriding
// earlier ones: base headers, the JSON Content-Type default, per-call
// headers, and the bearer Authorization header when a token is configured.
// Form payloads drop the Content-Type entirely so the transport can supply
// its own boundary-bearing value.
func (c *Client) mergeHeaders(callHeaders map[string]string, isForm bool) http.Header {
	h := http.Header{}
	for k, v := range c.baseHeaders {
		h.Set(k, v)
	}

	h.Set("Content-Type", contentTypeJSON)

	for k, v := range callHeaders {
		h.Set(k, v)
	}

	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}

	if isForm {
		h.Del("Content-Type")
	}

	return h
}

// encodeBody serializes a non-form payload. Byte slices, strings and readers
// are treated as pre-encoded wire bytes and pass through untouched; any other
// value is marshaled when the effective Content-Type is JSON. Remaining
// combinations are rejected.
func encodeBody(payload any, contentType string) ([]byte, error) {
	switch b := payload.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, fmt.Errorf("reading request payload: %w", err)
		}
		return data, nil
	}

	if Classify(contentType) == KindJSON {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		return b, nil
	}

	return nil, fmt.Errorf("unsupported body type %T for content type %q", payload, contentType)
}
