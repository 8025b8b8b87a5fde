package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes wires the public, authenticated, and admin route groups
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", healthCheck(startupTime))

		r.Get("/auth/google/login", handlers.authHandler.login())
		r.Get("/auth/google/callback", handlers.authHandler.callback())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		r.Get("/auth/me", handlers.authHandler.me())

		// Prompt Handler endpoints
		r.Get("/prompts", handlers.promptHandler.getAllPrompts())
		r.Post("/prompts", handlers.promptHandler.createPrompt())
		r.Get("/prompts/search", handlers.promptHandler.searchPrompts())
		r.Get("/prompts/recent", handlers.promptHandler.getRecentPrompts())
		r.Get("/prompts/by-tags", handlers.promptHandler.getPromptsByTags())
		r.Get("/prompts/statistics", handlers.promptHandler.getStatistics())
		r.Put("/prompts/reorder", handlers.promptHandler.bulkReorder())
		r.Get("/prompts/{promptID}", handlers.promptHandler.getPrompt())
		r.Put("/prompts/{promptID}", handlers.promptHandler.updatePrompt())
		r.Delete("/prompts/{promptID}", handlers.promptHandler.deletePrompt())
		r.Post("/prompts/{promptID}/restore", handlers.promptHandler.restorePrompt())
		r.Post("/prompts/{promptID}/duplicate", handlers.promptHandler.duplicatePrompt())

		// Merge Handler endpoints
		r.Post("/prompts/merge", handlers.mergeHandler.mergePrompts())
		r.Post("/prompts/merge/validate", handlers.mergeHandler.validateMerge())
		r.Get("/prompts/merge/history", handlers.mergeHandler.getMergeHistory())

		// Attachment Handler endpoints
		r.Get("/prompts/{promptID}/attached", handlers.attachmentHandler.getAttached())
		r.Post("/prompts/{promptID}/attach", handlers.attachmentHandler.attach())
		r.Post("/prompts/{promptID}/attach/validate", handlers.attachmentHandler.validateAttachment())
		r.Delete("/prompts/{promptID}/attach/{attachedID}", handlers.attachmentHandler.detach())
		r.Put("/prompts/{promptID}/attached/reorder", handlers.attachmentHandler.reorder())
		r.Post("/prompts/{promptID}/attach/{attachedID}/use", handlers.attachmentHandler.incrementUsage())
		r.Get("/prompts/{promptID}/attached/available", handlers.attachmentHandler.getAvailable())
		r.Get("/prompts/combinations/popular", handlers.attachmentHandler.getPopularCombinations())

		// Tag Handler endpoints
		r.Get("/tags", handlers.tagHandler.getAllTags())
		r.Post("/tags", handlers.tagHandler.createTag())
		r.Get("/tags/search", handlers.tagHandler.searchTags())
		r.Get("/tags/popular", handlers.tagHandler.getPopularTags())
		r.Get("/tags/statistics", handlers.tagHandler.getStatistics())
		r.Post("/tags/merge", handlers.tagHandler.mergeTags())
		r.Post("/tags/cleanup", handlers.tagHandler.cleanupUnusedTags())
		r.Get("/tags/{tagID}", handlers.tagHandler.getTag())
		r.Put("/tags/{tagID}", handlers.tagHandler.updateTag())
		r.Delete("/tags/{tagID}", handlers.tagHandler.deleteTag())

		// Favorite Set Handler endpoints
		r.Get("/favorites", handlers.favoriteSetHandler.getAllFavoriteSets())
		r.Post("/favorites", handlers.favoriteSetHandler.createFavoriteSet())
		r.Get("/favorites/{favoriteID}", handlers.favoriteSetHandler.getFavoriteSet())
		r.Put("/favorites/{favoriteID}", handlers.favoriteSetHandler.updateFavoriteSet())
		r.Delete("/favorites/{favoriteID}", handlers.favoriteSetHandler.deleteFavoriteSet())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)
		r.Use(authMiddleware.requireAdmin)

		r.Get("/admin/users/pending", handlers.adminHandler.listPendingUsers())
		r.Post("/admin/users/{userID}/approve", handlers.adminHandler.approveUser())
		r.Post("/admin/users/{userID}/disable", handlers.adminHandler.disableUser())

		r.Get("/admin/allowlist", handlers.adminHandler.listAllowlist())
		r.Post("/admin/allowlist", handlers.adminHandler.addToAllowlist())
		r.Delete("/admin/allowlist/{entryID}", handlers.adminHandler.removeFromAllowlist())
	})
}

// healthCheck reports process liveness and uptime
func healthCheck(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthCheck").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]any{
			"status": "ok",
			"uptime": time.Since(startupTime).String(),
		})
	}
}
