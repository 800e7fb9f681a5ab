package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
		ExposedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
			logger.Info("http request",
				"method", sanitize(r.Method),
				"path", sanitize(r.URL.Path),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// securityHeaders sets the response hardening headers on every route.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

var blockedPaths = map[string]bool{
	"/wp-admin":   true,
	"/admin.php":  true,
	"/phpmyadmin": true,
	"/.env":       true,
	"/config.php": true,
}

var blockedAgents = []string{"sqlmap", "nikto", "nmap", "burp"}

// blockScanners rejects requests from well known scanners and probes for
// common admin paths.
func blockScanners(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua := strings.ToLower(r.UserAgent())
			for _, a := range blockedAgents {
				if strings.Contains(ua, a) {
					logger.Warn("blocked scanner", "remote", r.RemoteAddr, "agent", a)
					respondError(w, http.StatusForbidden, "Forbidden", "")
					return
				}
			}
			if blockedPaths[r.URL.Path] {
				logger.Warn("blocked path probe", "remote", r.RemoteAddr, "path", r.URL.Path)
				respondError(w, http.StatusNotFound, "Not Found", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
