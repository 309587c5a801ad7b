package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Transport performs a single HTTP exchange for an assembled [Request] and
// normalizes the outcome. Implementations must honor context cancellation
// and classify failures through the package's error kinds: non-2xx statuses
// as [*StatusError], cancellation as [ErrAborted], connection-level errors
// as [ErrNetwork].
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// basicTransport is the default [Transport]. It rides the wrapped
// *http.Client directly, delegating cancellation to net/http's context
// plumbing, and sniffs the response Content-Type to decide how the payload
// is interpreted: JSON is decoded strictly, text and binary are kept raw.
type basicTransport struct {
	c      *http.Client
	logger *slog.Logger
}

func (t *basicTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	applyHeaders(httpReq, req.Header, contentType)

	resp, err := t.c.Do(httpReq)
	if err != nil {
		return nil, classifyErr(req.URL, err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				t.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			t.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !is2xx(resp.StatusCode) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return nil, newStatusError(resp.StatusCode, resp.Status, req.URL, string(b))
	}

	discardBody = false
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyErr(req.URL, fmt.Errorf("reading response body: %w", err))
	}

	res := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        req.URL,
		Header:     resp.Header,
		Kind:       Classify(resp.Header.Get("Content-Type")),
		raw:        payload,
	}

	if res.Kind == KindJSON {
		if err := json.Unmarshal(payload, &res.value); err != nil {
			return nil, fmt.Errorf("parsing json response from %s: %w", req.URL, err)
		}
	}

	return res, nil
}

// applyHeaders copies the assembled header set onto the outgoing request,
// then lets a transport-supplied Content-Type (the multipart boundary)
// take precedence.
func applyHeaders(httpReq *http.Request, header http.Header, contentType string) {
	for k, values := range header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
}

func is2xx(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
