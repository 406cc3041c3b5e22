package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS admits the configured front-end origins. Credentials are allowed so
// the session cookie travels on page reads.
func CORS(origins []string) func(http.Handler) http.Handler {
	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		MaxAge:           600,
		AllowCredentials: true,
	})

	return handler.Handler
}
