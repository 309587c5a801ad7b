// Package sign attaches and verifies HTTP message signatures (RFC 9421)
// using ed25519 keys, covering the request method, path, authority,
// content type and a sha-512 content digest.
package sign

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"
	"net/http"

	"github.com/offblocks/httpsig"
)

var digestor = httpsig.NewDigestor(httpsig.WithDigestAlgorithms(httpsig.DigestAlgorithmSha512))

// Signer signs outgoing HTTP requests with a private key. Pass one to a
// client via its signer option, or wrap any transport with [NewRoundTripper].
type Signer struct {
	signer *httpsig.Signer
}

// NewSigner creates a Signer using the given key identifier and signing key.
// Verifiers must be configured with the same identifier.
func NewSigner(keyID string, signingKey ed25519.PrivateKey) *Signer {
	return &Signer{
		signer: httpsig.NewSigner(
			httpsig.WithSignName("apiclient"),
			httpsig.WithSignEd25519(keyID, signingKey),
			httpsig.WithSignFields("@method", "@path", "@authority", "content-type", "content-digest"),
		),
	}
}

// Sign signs req in place, adding the Content-Digest, Signature and
// Signature-Input headers. The body, when present, is fully read and
// replaced with a rewindable copy.
func (s *Signer) Sign(req *http.Request) error {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(b))
		body = b
	}

	digestHeaders, err := digestor.Digest(body)
	if err != nil {
		return fmt.Errorf("generating content digest: %w", err)
	}
	for name, values := range digestHeaders {
		req.Header[name] = append(req.Header[name], values...)
	}

	headers, err := s.signer.Sign(httpsig.MessageFromRequest(req))
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}
	req.Header = headers

	return nil
}

// NewRoundTripper wraps base so every request passing through is signed by s.
func NewRoundTripper(s *Signer, base http.RoundTripper) http.RoundTripper {
	return &roundTripper{signer: s, base: base}
}

// roundTripper is an http.RoundTripper, signing each request before
// handing it to the base transport.
type roundTripper struct {
	signer *Signer
	base   http.RoundTripper
}

func (rt *roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	if err := rt.signer.Sign(cpy); err != nil {
		return nil, err
	}

	return rt.base.RoundTrip(cpy)
}
