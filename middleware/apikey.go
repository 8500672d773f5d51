package middleware

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"reco-api-go/logcolors"
)

// RequireAPIKey gates the analysis and relay endpoints behind an
// X-API-Key check when required is true. Paths in publicPaths (the
// help and health endpoints) stay open so probes and discovery work
// unauthenticated. A required-but-unconfigured key is treated as a
// deployment mistake: the request is admitted with a warning rather
// than locking every caller out.
func RequireAPIKey(apiKey string, required bool, publicPaths []string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, path := range publicPaths {
		public[path] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}
			if apiKey == "" {
				log.Warnf("%s API key required but not configured, allowing request", logcolors.LogAPIKey)
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			switch provided := r.Header.Get("X-API-Key"); {
			case provided == "":
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				deny(w, "API key required", "Provide a valid API key via X-API-Key header")
			case provided != apiKey:
				log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				deny(w, "Invalid API key", "The provided API key is not valid")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func deny(w http.ResponseWriter, message, hint string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": hint,
	})
}
