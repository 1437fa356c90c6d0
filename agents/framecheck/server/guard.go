package server

import (
	"mime"
	"net"
	"net/http"
)

// sameOrigin rejects requests carrying an Origin other than the popup page's own.
// Requests without an Origin header come from non-browser clients such as curl.
func (s *Server) sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && !s.origins[origin] {
			writeError(w, http.StatusForbidden, "cross-origin request rejected")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireJSON answers 415 to POSTs that are not application/json, empty bodies
// included. A page on another site can send text/plain and form posts without a
// preflight, but never a JSON one.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ownOrigins lists the origins the popup page is served from on addr.
func ownOrigins(addr string) map[string]bool {
	origins := map[string]bool{"http://" + addr: true}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return origins
	}
	switch host {
	case "127.0.0.1", "::1", "localhost", "":
		origins["http://localhost:"+port] = true
		origins["http://127.0.0.1:"+port] = true
		origins["http://[::1]:"+port] = true
	}
	return origins
}
