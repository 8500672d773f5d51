package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router, app *App) {
	// Analysis and playlist endpoints (POST; GET returns docs)
	router.HandleFunc("/openrouter/text", app.handleTextAnalysis)
	router.HandleFunc("/openrouter/visual", app.handleVisualAnalysis)
	router.HandleFunc("/openrouter/playlist", app.handlePlaylist)

	// Spotify OAuth relay and catalog search
	router.HandleFunc("/spotify/auth", app.handleSpotifyAuth)
	router.HandleFunc("/spotify/search", app.handleSearch)

	// Health and stats endpoints
	router.HandleFunc("/health", app.handleHealth)
	router.HandleFunc("/stats", app.handleStats)

	// Cache management endpoints
	router.HandleFunc("/cache", app.handleCacheDump)
	router.HandleFunc("/cache/clear", app.handleCacheClear)

	// Help endpoint
	router.HandleFunc("/", helpHandler)
}
