// Package apiclient provides a thin, uniform wrapper for dispatching
// JSON-first HTTP requests against a remote API, built on [net/http].
//
// # Building a Client
//
// Use [New] to create a [Client] with functional options:
//
//	c, err := apiclient.New(
//		apiclient.WithBaseURL("https://api.example.com/v1"),
//		apiclient.WithToken(token),
//		apiclient.WithTimeout(10 * time.Second),
//	)
//
// Configuration can also come from the environment via [FromEnv], which
// reads APICLIENT_TOKEN and APICLIENT_BASE_URL for any value not set
// explicitly.
//
// # Making Requests
//
// Each verb method appends its endpoint to the base URL verbatim and
// returns a normalized [Response]:
//
//	res, err := c.Get(ctx, "/users", apiclient.WithParams(map[string]any{"page": 2}))
//	res, err = c.Post(ctx, "/users", User{Name: "ada"})
//
// Non-form payloads are serialized as JSON under the default Content-Type;
// []byte, string and [io.Reader] payloads pass through as pre-encoded wire
// bytes. Responses are interpreted by their Content-Type (see [Classify])
// and decoded into a destination with [WithDestination]:
//
//	var user User
//	res, err := c.Get(ctx, "/users/1", apiclient.WithDestination(&user))
//
// # Failures
//
// Every failed call is logged once and returned as one of three kinds:
// [*StatusError] for non-2xx responses (wrapping [ErrUnexpectedStatus]),
// [ErrAborted] for context cancellation, and [ErrNetwork] for failures
// below the HTTP layer:
//
//	var statusErr *apiclient.StatusError
//	if errors.As(err, &statusErr) {
//		log.Println(statusErr.StatusCode, statusErr.Body)
//	}
//
// # Forms and Progress
//
// A *[Form] payload is sent as multipart/form-data with the transport's own
// boundary Content-Type. The event transport, selected per call with
// [WithEventTransport], reports transfer progress and settles cancelled
// calls immediately:
//
//	form := apiclient.NewForm().AddFile("file", "report.pdf", f)
//	res, err := c.Post(ctx, "/uploads", form,
//		apiclient.WithEventTransport(),
//		apiclient.WithProgress(func(p apiclient.Progress) { fmt.Println(p.Loaded) }),
//	)
//
// # Transport Decoration
//
// The underlying transport stack is composed from options: a persistent
// User-Agent header ([WithUserAgent]), request signing
// ([WithSigner], see [github.com/sebdrapier/api-client/sign]), and
// token-bucket rate limiting ([WithThrottle], see
// [github.com/sebdrapier/api-client/throttle]).
package apiclient
