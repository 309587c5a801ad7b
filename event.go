package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// eventTransport is the [Transport] selected by [WithEventTransport]. It
// runs the exchange in its own goroutine so cancellation settles the call
// immediately, even while the exchange is still in flight; mirrors transfer
// progress to the per-call callback; and always interprets the payload as
// JSON, regardless of the response Content-Type. Status failures from this
// transport omit the response body text.
type eventTransport struct {
	c      *http.Client
	logger *slog.Logger
}

func (t *eventTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyErr(req.URL, err)
	}

	type outcome struct {
		res *Response
		err error
	}

	// Buffered so an abandoned exchange can deliver without a receiver.
	done := make(chan outcome, 1)

	go func() {
		res, err := t.exchange(ctx, req)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, classifyErr(req.URL, ctx.Err())
	case out := <-done:
		return out.res, out.err
	}
}

// exchange performs the blocking HTTP round trip on behalf of Send.
func (t *eventTransport) exchange(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}

	// A serialized non-form body means the interesting transfer is the
	// upload; forms and bodyless requests track the download instead.
	trackUpload := req.progress != nil && len(req.Body) > 0 && req.Form == nil

	var bodyReader io.Reader = bytes.NewReader(body)
	if trackUpload {
		bodyReader = &progressReader{r: bodyReader, total: int64(len(body)), report: req.progress}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	if trackUpload {
		httpReq.ContentLength = int64(len(body))
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
		return nil, newStatusError(resp.StatusCode, resp.Status, req.URL, "")
	}

	var responseBody io.Reader = resp.Body
	if req.progress != nil && !trackUpload {
		responseBody = &progressReader{r: responseBody, total: resp.ContentLength, report: req.progress}
	}

	discardBody = false
	payload, err := io.ReadAll(responseBody)
	if err != nil {
		return nil, classifyErr(req.URL, fmt.Errorf("reading response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        req.URL,
		Header:     resp.Header,
		Kind:       KindJSON,
		raw:        payload,
		value:      decodeJSON(payload),
	}, nil
}
