package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/services"
)

const stateCookieName = "oauth_state"

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	oauthService  *services.OAuthService
	userService   *services.UserService
	tokens        tokenManager
	secureCookies bool
}

func newAuthHandler(oauthService *services.OAuthService, userService *services.UserService, tokens tokenManager, secureCookies bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		oauthService:  oauthService,
		userService:   userService,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

// login redirects the browser to the Google consent screen, binding the
// round-trip with a state cookie
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := h.oauthService.GenerateState()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookies || r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, h.oauthService.AuthURL(state), http.StatusFound)
	}
}

// callback completes the code exchange, upserts the user, and issues a
// session token
func (h authHandler) callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		cookie, err := r.Cookie(stateCookieName)
		if err != nil || state == "" || cookie.Value != state {
			h.responder.WriteError(w, errs.NewUnauthorizedError("oauth state mismatch"))
			return
		}

		// Expire the state cookie regardless of outcome
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies || r.TLS != nil,
		})

		code := r.URL.Query().Get("code")
		if code == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing authorization code"))
			return
		}

		profile, err := h.oauthService.Exchange(r.Context(), code)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userService.FindOrCreateFromGoogle(*profile)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.userService.RequireActive(user); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, err := h.tokens.Issue(user.ID, user.Role)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"token": token,
			"user":  user,
		})
	}
}

// me returns the authenticated user's profile
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}
