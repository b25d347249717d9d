package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS opens the API to the browser widget's origins. An empty list or "*"
// allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept-Language", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition", "Retry-After"},
		MaxAge:         600,
	})
	return c.Handler
}
