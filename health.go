package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"reco-api-go/logcolors"
)

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func connectivityStatus(reachable bool) string {
	if reachable {
		return "connected"
	}
	return "unreachable"
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		app.healthReport(w, r)
	case http.MethodHead:
		app.healthProbe(w)
	case http.MethodOptions:
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Health endpoint",
			"methods": map[string]string{
				"GET":  "full health report with connectivity probes",
				"HEAD": "status code only, based on configured credentials",
			},
		})
	default:
		methodNotAllowed(w, r)
	}
}

// healthProbe is the cheap liveness variant: no network probes, just
// whether the required credentials are present.
func (app *App) healthProbe(w http.ResponseWriter) {
	setNoCacheHeaders(w)
	if app.cfg.OpenRouterConfigured() && app.cfg.SpotifyConfigured() {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
}

func (app *App) healthReport(w http.ResponseWriter, r *http.Request) {
	// A panic inside the probe machinery must not take the endpoint
	// down with an empty reply.
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("%s Health report failed: %v", logcolors.LogHealth, rec)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "error",
				"error":  fmt.Sprint(rec),
			})
		}
	}()

	timeout := time.Duration(app.cfg.Configuration.HealthProbeTimeoutInSeconds) * time.Second

	openrouterConfigured := app.cfg.OpenRouterConfigured()
	spotifyConfigured := app.cfg.SpotifyConfigured()

	openrouterReachable := false
	if openrouterConfigured {
		openrouterReachable = app.openrouter.Ping(r.Context(), timeout)
	}
	spotifyReachable := false
	if spotifyConfigured {
		spotifyReachable = app.spotify.Ping(r.Context(), timeout)
	}

	status := "healthy"
	code := http.StatusOK
	if !openrouterConfigured || !spotifyConfigured || !openrouterReachable || !spotifyReachable {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	log.Infof("%s Reporting %s", logcolors.LogHealth, status)
	Respond(w, r).Error(code, map[string]interface{}{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(app.startedAt).String(),
		"environment": app.cfg.Server.Environment,
		"version":     app.cfg.Server.Version,
		"checks": map[string]interface{}{
			"environment": map[string]bool{
				"openrouter_configured": openrouterConfigured,
				"spotify_configured":    spotifyConfigured,
			},
			"api_connectivity": map[string]bool{
				"openrouter": openrouterReachable,
				"spotify":    spotifyReachable,
			},
		},
		"services": map[string]interface{}{
			"openrouter": map[string]interface{}{
				"models": []string{
					app.cfg.OpenRouter.TextModel,
					app.cfg.OpenRouter.VisualModel,
					app.cfg.OpenRouter.PlaylistModel,
				},
				"status": connectivityStatus(openrouterReachable),
			},
			"spotify": map[string]interface{}{
				"endpoints": []string{"auth", "search", "playlists"},
				"status":    connectivityStatus(spotifyReachable),
			},
		},
	})
}
