// Package home serves the API root.
package home

import (
	"io"
	"net/http"
)

// Banner is the plain-text body served at "/".
const Banner = "Welcome to the Students API!"

// Handler handles GET / (exact match only; "{$}" in the route pattern).
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, Banner)
	}
}
