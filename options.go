package apiclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/sebdrapier/api-client/sign"
	"github.com/sebdrapier/api-client/throttle"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error

type options struct {
	token       string
	baseURL     string
	baseHeaders map[string]string

	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	signer            *sign.Signer
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	requestIDs        bool
	fromEnv           bool
	environ           []string
}

// WithToken sets the bearer token attached to every request's
// Authorization header. An empty token leaves the header unset.
func WithToken(token string) Option {
	return func(c *options) error {
		c.token = token
		return nil
	}
}

// WithBaseURL sets the prefix every endpoint is appended to. The endpoint is
// concatenated verbatim, so a trailing slash here pairs with slash-less
// endpoints and vice versa.
func WithBaseURL(baseURL string) Option {
	return func(c *options) error {
		c.baseURL = baseURL
		return nil
	}
}

// WithBaseHeaders sets headers attached to every request. Per-call headers
// and the Authorization header override them on conflict.
func WithBaseHeaders(headers map[string]string) Option {
	return func(c *options) error {
		if c.baseHeaders == nil {
			c.baseHeaders = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.baseHeaders[k] = v
		}
		return nil
	}
}

// WithBaseHeader sets a single header attached to every request.
func WithBaseHeader(key, value string) Option {
	return func(c *options) error {
		if key == "" {
			return errors.New("header key must not be empty")
		}
		if c.baseHeaders == nil {
			c.baseHeaders = make(map[string]string)
		}
		c.baseHeaders[key] = value
		return nil
	}
}

// FromEnv fills unset client configuration from "NAME=value" pairs:
// APICLIENT_TOKEN and APICLIENT_BASE_URL. With no arguments the process
// environment is used. Explicit options always win over the environment.
func FromEnv(environ ...string) Option {
	return func(c *options) error {
		c.fromEnv = true
		c.environ = environ
		return nil
	}
}

// WithHTTPClient replaces the default [http.Client] used by the [Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests
// per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithSigner signs every outgoing request with s before it leaves the
// transport stack.
func WithSigner(s *sign.Signer) Option {
	return func(c *options) error {
		if s == nil {
			return errors.New("signer must not be nil")
		}
		c.signer = s
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records a span per dispatched request using the given tracer.
// Without it, spans are no-ops.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithRequestIDs stamps every outgoing request with a generated X-Request-Id
// header, echoed in failure logs for correlation.
func WithRequestIDs() Option {
	return func(c *options) error {
		c.requestIDs = true
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// CallOption is a functional option for a single verb call.
type CallOption func(*callOptions) error

type callOptions struct {
	headers  map[string]string
	params   map[string]any
	events   bool
	progress func(Progress)
	dst      any
	validate bool
}

// WithHeaders adds headers to this call, overriding base headers on
// conflict. The Authorization header still wins when a token is configured.
func WithHeaders(headers map[string]string) CallOption {
	return func(opts *callOptions) error {
		if opts.headers == nil {
			opts.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			opts.headers[k] = v
		}
		return nil
	}
}

// WithHeader adds a single header to this call.
func WithHeader(key, value string) CallOption {
	return func(opts *callOptions) error {
		if key == "" {
			return errors.New("header key must not be empty")
		}
		if opts.headers == nil {
			opts.headers = make(map[string]string)
		}
		opts.headers[key] = value
		return nil
	}
}

// WithParams appends URL-encoded query parameters to the request URL.
// String values are used as-is, anything else is stringified.
func WithParams(params map[string]any) CallOption {
	return func(opts *callOptions) error {
		if opts.params == nil {
			opts.params = make(map[string]any, len(params))
		}
		for k, v := range params {
			opts.params[k] = v
		}
		return nil
	}
}

// WithEventTransport dispatches this call through the event transport: the
// payload is always interpreted as JSON, progress callbacks fire, and
// cancellation settles the call without waiting for the exchange to unwind.
func WithEventTransport() CallOption {
	return func(opts *callOptions) error {
		opts.events = true
		return nil
	}
}

// WithProgress registers a transfer progress callback, honored by the event
// transport. A call with a serialized body reports upload progress; form and
// bodyless calls report download progress instead.
func WithProgress(report func(Progress)) CallOption {
	return func(opts *callOptions) error {
		if report == nil {
			return errors.New("progress callback must not be nil")
		}
		opts.progress = report
		return nil
	}
}

// WithDestination decodes the response payload into dst.
func WithDestination[T any](dst *T) CallOption {
	return func(opts *callOptions) error {
		opts.dst = dst
		return nil
	}
}

// WithValidation runs struct validation against the decoded destination,
// failing the call when constraints are violated. Requires [WithDestination].
func WithValidation() CallOption {
	return func(opts *callOptions) error {
		opts.validate = true
		return nil
	}
}
