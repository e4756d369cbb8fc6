package middleware

import (
	"mime"
	"net/http"

	"task-tracker-backend/pkg/utils"
)

// ContentTypeJSON 要求带请求体的 POST/PUT 请求使用 application/json
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodPost && r.Method != http.MethodPut) || r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			utils.WriteBadRequestResponse(w, "Content-Type header is required")
			return
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			utils.WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MaxBodySize 限制请求体大小，超出部分在解析时报错
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
