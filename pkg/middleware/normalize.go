package middleware

import (
	"net/http"
	"strings"
)

// Normalize standardizes request paths coming through proxies
// - Trims whitespace around URL.Path
// - Drops a trailing slash so "/api/boards/" routes like "/api/boards"
// - Restores scheme/host from forwarding headers for logs
func Normalize() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := strings.TrimSpace(r.URL.Path)
			if len(p) > 1 && strings.HasSuffix(p, "/") {
				p = strings.TrimRight(p, "/")
				if p == "" {
					p = "/"
				}
			}
			if p != r.URL.Path {
				r.URL.Path = p
				r.URL.RawPath = ""
			}

			if xfproto := r.Header.Get("X-Forwarded-Proto"); xfproto != "" {
				r.URL.Scheme = xfproto
			}
			if xfhost := r.Header.Get("X-Forwarded-Host"); xfhost != "" {
				r.Host = xfhost
			}
			next.ServeHTTP(w, r)
		})
	}
}
