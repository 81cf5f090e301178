package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net"
	"net/http"
)

// isLoopback reports whether the request's peer address is a loopback
// address. Used to let localhost traffic bypass the auth gate.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// secureEqual compares two strings in constant time regardless of length.
func secureEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// basicAuthMiddleware enforces HTTP basic auth when enabled. Loopback
// clients bypass the gate when the config allows it, matching the typical
// single-host deployment where only remote access needs the password.
func basicAuthMiddleware(cfg Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cfg.AuthEnabled {
			next.ServeHTTP(w, r)
			return
		}
		if cfg.AuthAllowLoopback && isLoopback(r.RemoteAddr) {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="docker-webui"`)
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !secureEqual(username, cfg.AuthUsername) || !secureEqual(password, cfg.AuthPassword) {
			w.Header().Set("WWW-Authenticate", `Basic realm="docker-webui"`)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
