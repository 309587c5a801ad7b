package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sebdrapier/api-client/internal/env"
	"github.com/sebdrapier/api-client/sign"
	"github.com/sebdrapier/api-client/throttle"
)

// Environment variables read by [FromEnv].
const (
	envToken   = "APICLIENT_TOKEN"
	envBaseURL = "APICLIENT_BASE_URL"
)

// Client dispatches requests against a remote API, layering shared
// configuration under every call: the base URL prefix, merged headers, the
// bearer token, and the decorated transport stack. A Client owns its
// *http.Client and is safe for concurrent use.
type Client struct {
	token       string
	baseURL     string
	baseHeaders map[string]string

	basic  Transport
	events Transport

	logger     *slog.Logger
	tracer     trace.Tracer
	requestIDs bool
}

// New builds a Client from the given options.
func New(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		token:       opts.token,
		baseURL:     opts.baseURL,
		baseHeaders: make(map[string]string, len(opts.baseHeaders)),
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("no-op tracer"),
		requestIDs:  opts.requestIDs,
	}

	for k, v := range opts.baseHeaders {
		client.baseHeaders[k] = v
	}

	if opts.fromEnv {
		environ := opts.environ
		if len(environ) == 0 {
			environ = os.Environ()
		}
		if client.token == "" {
			client.token = env.Get(environ, envToken)
		}
		if client.baseURL == "" {
			client.baseURL = env.Get(environ, envBaseURL)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	httpClient := opts.client
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	if opts.timeout != nil {
		httpClient.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.signer != nil {
		transport = sign.NewRoundTripper(opts.signer, transport)
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	httpClient.Transport = transport

	client.basic = &basicTransport{c: httpClient, logger: client.logger}
	client.events = &eventTransport{c: httpClient, logger: client.logger}

	return client, nil
}

// Get dispatches a GET request to endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, opts...)
}

// Delete dispatches a DELETE request to endpoint.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, opts...)
}

// Post dispatches a POST request carrying payload to endpoint. See
// [Client.Put] for how payloads are serialized.
func (c *Client) Post(ctx context.Context, endpoint string, payload any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, payload, opts...)
}

// Put dispatches a PUT request carrying payload to endpoint. A *[Form]
// payload is sent as multipart/form-data; []byte, string and [io.Reader]
// payloads pass through as-is; any other value is serialized as JSON under
// the default Content-Type. A nil payload sends no body.
func (c *Client) Put(ctx context.Context, endpoint string, payload any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, payload, opts...)
}

// do assembles the request, selects a transport, dispatches, and decodes
// the result. Every failure is logged here exactly once before being
// returned to the caller.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, optFns ...CallOption) (*Response, error) {
	var opts callOptions
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			c.logFailure(method, c.baseURL+endpoint, nil, err)
			return nil, err
		}
	}

	if opts.validate && opts.dst == nil {
		err := errors.New("validation requires a destination")
		c.logFailure(method, c.baseURL+endpoint, nil, err)
		return nil, err
	}

	req, err := c.assemble(method, endpoint, payload, &opts)
	if err != nil {
		c.logFailure(method, c.baseURL+endpoint, nil, err)
		return nil, err
	}

	ctx, span := c.startSpan(ctx, method, req.URL)
	defer span.End()

	transport := c.basic
	if opts.events {
		transport = c.events
	}

	res, err := transport.Send(ctx, req)
	if err != nil {
		span.SetAttributes(attribute.String("error", err.Error()))
		c.logFailure(method, req.URL, req, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode))

	if opts.dst != nil {
		if err := res.Decode(opts.dst); err != nil {
			c.logFailure(method, req.URL, req, err)
			return nil, err
		}
		if opts.validate {
			if err := Validate(opts.dst); err != nil {
				err = fmt.Errorf("validating response: %w", err)
				c.logFailure(method, req.URL, req, err)
				return nil, err
			}
		}
	}

	return res, nil
}

// startSpan opens a span covering one dispatch.
func (c *Client) startSpan(ctx context.Context, method, url string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "apiclient.request")
	span.SetAttributes(attribute.String("method", method), attribute.String("url", url))

	return ctx, span
}

// logFailure records one failed call with its correlating fields.
func (c *Client) logFailure(method, url string, req *Request, err error) {
	attrs := []any{"method", method, "url", url}
	if req != nil && c.requestIDs {
		attrs = append(attrs, "request_id", req.Header.Get(requestIDHeader))
	}
	attrs = append(attrs, "error", err.Error())

	c.logger.Error("request failed", attrs...)
}
