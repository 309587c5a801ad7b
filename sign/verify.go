package sign

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/offblocks/httpsig"
)

// Verifier checks that incoming requests carry a valid signature from the
// matching [Signer].
type Verifier struct {
	verifier *httpsig.Verifier
}

// NewVerifier creates a Verifier for the given key identifier and public
// verification key. Signatures older than five minutes are rejected.
func NewVerifier(keyID string, verificationKey ed25519.PublicKey) *Verifier {
	verifier := httpsig.NewVerifier(
		httpsig.WithVerifyEd25519(keyID, verificationKey),
		httpsig.WithVerifyAll(true),
		httpsig.WithVerifyMaxAge(5*time.Minute),
		httpsig.WithVerifyTolerance(5*time.Second),
		httpsig.WithVerifyRequiredParams("created"),
		// The httpsig library checks the strings below against marshaled
		// httpsfv items, hence the double quoting.
		httpsig.WithVerifyRequiredFields(`"@method"`, `"@path"`, `"@authority"`, `"content-type"`, `"content-digest"`),
	)
	return &Verifier{verifier}
}

// Verify checks the signature and content digest of r.
func (v *Verifier) Verify(r *http.Request) error {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	if _, ok := r.Header[httpsig.ContentDigestHeader]; !ok {
		return fmt.Errorf("missing Content-Digest header")
	} else if err := digestor.Verify(body, r.Header); err != nil {
		return fmt.Errorf("invalid Content-Digest header: %w", err)
	}

	if err := v.verifier.Verify(httpsig.MessageFromRequest(r)); err != nil {
		return fmt.Errorf("missing or invalid signature: %w", err)
	}

	return nil
}

// Middleware wraps an HTTP handler, rejecting requests whose signature
// does not verify.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Verify(r); err != nil {
			slog.Warn("request was not signed correctly", "error", err)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
