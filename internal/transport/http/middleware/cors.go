package middleware

import "net/http"

// Values advertised to browsers. Only the relay's POST is cross-origin.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// CORS marks every response as readable from any origin and answers
// preflight requests itself.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AllowOrigin(w)

		if r.Method == http.MethodOptions {
			Preflight(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AllowOrigin sets the permissive Access-Control-Allow-Origin header.
func AllowOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
}

// Preflight answers a CORS preflight: 200, no body.
func Preflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	w.WriteHeader(http.StatusOK)
}
