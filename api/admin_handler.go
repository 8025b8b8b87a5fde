package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
	"github.com/elimS2/prompt-manager/services"
)

type adminHandler struct {
	responder   Responder
	logger      zerolog.Logger
	userService *services.UserService
}

func newAdminHandler(userService *services.UserService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		userService: userService,
	}
}

// listPendingUsers returns users awaiting approval, oldest first
func (h adminHandler) listPendingUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.userService.ListPendingUsers()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if users == nil {
			users = []models.User{}
		}

		h.responder.WriteJSON(w, users)
	}
}

// approveUser activates a pending user, optionally setting their role
func (h adminHandler) approveUser() http.HandlerFunc {
	type approveRequest struct {
		Role string `json:"role"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req approveRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				h.responder.WriteError(w, errs.Malformed("approve request"))
				return
			}
		}

		approver, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		approverID := approver.ID

		user, err := h.userService.ApproveUser(userID, &approverID, req.Role)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// disableUser blocks a user account
func (h adminHandler) disableUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userService.DisableUser(userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// listAllowlist returns the email allowlist
func (h adminHandler) listAllowlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.userService.ListAllowlist()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if entries == nil {
			entries = []models.EmailAllowlist{}
		}

		h.responder.WriteJSON(w, entries)
	}
}

// addToAllowlist registers an email for immediate activation on login
func (h adminHandler) addToAllowlist() http.HandlerFunc {
	type allowlistRequest struct {
		Email       string `json:"email"`
		DefaultRole string `json:"default_role"`
		Note        string `json:"note"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req allowlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("allowlist entry"))
			return
		}

		entry, err := h.userService.AddToAllowlist(req.Email, req.DefaultRole, req.Note)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, entry)
	}
}

// removeFromAllowlist deletes an allowlist entry
func (h adminHandler) removeFromAllowlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := pathUUID(r, "entryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.userService.RemoveFromAllowlist(entryID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "deleted"})
	}
}
