package apiclient

import "strings"

// Kind describes how a response payload was interpreted.
type Kind int

const (
	// KindJSON marks a payload decoded from JSON.
	KindJSON Kind = iota + 1
	// KindText marks a payload kept as plain text.
	KindText
	// KindBinary marks an opaque payload kept as raw bytes.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Classify maps a Content-Type header value to the [Kind] used to interpret
// the payload. Matching is case-insensitive and first-match-wins: values
// containing "application/json" are JSON, values containing "text/" are plain
// text, and anything else, including an absent header, is binary.
func Classify(contentType string) Kind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return KindJSON
	case strings.Contains(ct, "text/"):
		return KindText
	default:
		return KindBinary
	}
}
