// Package security provides request filtering and body size limits.
package security

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Liveness probes skip filtering.
var probePaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/readyz":  true,
}

// scannerPrefixes match probe traffic from vulnerability scanners. None of
// these can ever be a legitimate path on this API.
var scannerPrefixes = []string{
	"/.php",
	"/wp-admin",
	"/wp-includes",
	"/wp-content",
	"/wp-login",
	"/.git/",
	"/.env",
	"/web-inf/",
	"/cgi-bin/",
	"/admin/",
	"/phpmyadmin",
	"/phpinfo",
	"/shell",
	"/config.",
	"/.htaccess",
	"/.htpasswd",
	"/server-status",
	"/xmlrpc.php",
}

// traversalFragments match path traversal and injection attempts anywhere in
// the path, including their URL-encoded spellings.
var traversalFragments = []string{
	"../",
	"..%2f",
	"..%5c",
	"%2e%2e/",
	"%00",
}

func suspicious(path string) bool {
	for _, prefix := range scannerPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, fragment := range traversalFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// FilterMiddleware blocks requests matching known attack patterns before they
// reach routing. The path is checked both as received and after one round of
// URL decoding to catch encoded traversal.
func FilterMiddleware(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			path := strings.ToLower(r.URL.Path)
			if suspicious(path) {
				reject(w)
				return
			}

			raw := r.URL.RawPath
			if raw == "" {
				raw = r.URL.Path
			}
			if decoded, err := url.PathUnescape(raw); err == nil && decoded != path {
				if suspicious(strings.ToLower(decoded)) {
					reject(w)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// reject answers with a generic 400 that does not reveal which rule fired.
func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    "BAD_REQUEST",
			"message": "Invalid request",
		},
	})
}

// MaxBodySizeMiddleware caps request body size at maxSizeMB megabytes.
// Verification submissions carry whole compiler outputs, so the cap is
// generous by default and enforced lazily as the body is read.
func MaxBodySizeMiddleware(maxSizeMB int) func(http.Handler) http.Handler {
	maxBytes := int64(maxSizeMB) << 20

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
