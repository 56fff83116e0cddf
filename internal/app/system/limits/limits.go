// internal/app/system/limits/limits.go
package limits

import (
	"mime"
	"net/http"
)

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize bounds ordinary form posts (login, edit, search, bulk).
	MaxFormSize = 1 << 20 // 1 MB

	// MaxUploadSize bounds a spreadsheet upload.
	MaxUploadSize = 10 << 20 // 10 MB

	// MaxImportRows bounds how many rows one import may hold.
	MaxImportRows = 20000
)

// FormBody caps url-encoded request bodies at MaxFormSize. Multipart
// uploads set their own limit in the handler.
func FormBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/x-www-form-urlencoded" {
				r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
			}
		}
		next.ServeHTTP(w, r)
	})
}
