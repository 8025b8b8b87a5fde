package api

import (
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/elimS2/prompt-manager/database"
	"github.com/elimS2/prompt-manager/errs"
	"github.com/elimS2/prompt-manager/models"
)

type authMiddleware struct {
	responder Responder
	tokens    tokenManager
	userRepo  *database.UserRepo
}

func newAuthMiddleware(tokens tokenManager, userRepo *database.UserRepo) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		tokens:    tokens,
		userRepo:  userRepo,
	}
}

// authenticate verifies the bearer token, loads the user, and blocks
// non-active accounts. The user lands in the request context.
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		userID, err := m.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		user, err := m.userRepo.FindByID(userID)
		if err != nil {
			m.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		switch user.Status {
		case models.StatusPending:
			m.responder.WriteError(w, errs.NewAccountPendingError())
			return
		case models.StatusDisabled:
			m.responder.WriteError(w, errs.NewAccountDisabledError())
			return
		}

		updatedReq := r.WithContext(ctxWithUser(r.Context(), user))
		next.ServeHTTP(w, updatedReq)
	})
}

// requireAdmin sits behind authenticate and rejects non-admin users.
func (m authMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if !user.IsAdmin() {
			m.responder.WriteError(w, errs.NewForbiddenError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		// Optionally log 500s that weren't panics (e.g. manually set by handlers)
		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	// Set up colored console writer for development
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
