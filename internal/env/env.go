// Package env looks up values in an environment variable slice, as
// produced by os.Environ.
package env

import "strings"

// Get returns the value of the variable named name in env, where each entry
// has the form "NAME=value". The last occurrence wins; absent names yield
// the empty string.
func Get(env []string, name string) string {
	var value string
	for _, kv := range env {
		if n, v, ok := strings.Cut(kv, "="); ok && n == name {
			value = v
		}
	}
	return value
}
