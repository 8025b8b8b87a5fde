package api

import (
	"github.com/elimS2/prompt-manager/config"
	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, c map[string]string, tokens tokenManager) *routeHandlers {
	promptService := services.NewPromptService(database.PromptRepo(), database.TagRepo())
	mergeService := services.NewMergeService(database.PromptRepo())
	attachedService := services.NewAttachedPromptService(database.AttachedPromptRepo(), database.PromptRepo())
	tagService := services.NewTagService(database.TagRepo())
	favoriteService := services.NewFavoriteSetService(database.FavoriteSetRepo(), database.PromptRepo())

	userService := services.NewUserService(database.UserRepo(), database.AllowlistRepo(), services.AccessConfig{
		Policy:        config.GetString(c, "ACCESS_POLICY", services.PolicyAllowlistThenApproval),
		AdminEmails:   config.GetStringSlice(c, "ADMIN_EMAILS"),
		AllowedDomain: config.GetString(c, "ALLOWED_GOOGLE_DOMAIN", ""),
	})
	oauthService := services.NewOAuthService(
		config.GetString(c, "GOOGLE_CLIENT_ID", ""),
		config.GetString(c, "GOOGLE_CLIENT_SECRET", ""),
		config.GetString(c, "GOOGLE_REDIRECT_URL", ""),
	)

	return &routeHandlers{
		promptHandler:      newPromptHandler(promptService),
		mergeHandler:       newMergeHandler(mergeService),
		attachmentHandler:  newAttachmentHandler(attachedService),
		tagHandler:         newTagHandler(tagService),
		favoriteSetHandler: newFavoriteSetHandler(favoriteService),
		authHandler:        newAuthHandler(oauthService, userService, tokens, config.GetBool(c, "SECURE_COOKIES", false)),
		adminHandler:       newAdminHandler(userService),
	}
}
