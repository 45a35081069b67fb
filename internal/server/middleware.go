package server

import (
	"net/http"
	"time"

	"example/storefront/internal/logger"

	"github.com/gorilla/handlers"
)

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		logger.Log.Infow("Handled request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"duration", time.Since(start),
		)
	})
}

// corsMiddleware allows browser calls from origin, with credentials, and
// answers preflight requests before they reach the router
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		return func(h http.Handler) http.Handler { return h }
	}
	return handlers.CORS(
		handlers.AllowedOrigins([]string{origin}),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
}
