package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nasermirzaei89/labbook/authentication"
	authcontext "github.com/nasermirzaei89/labbook/authentication/context"
)

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionValueNotFoundError *SessionValueNotFoundError

		value, err := h.getSessionValue(r, sessionIDKey)
		if err != nil && !errors.As(err, &sessionValueNotFoundError) {
			slog.ErrorContext(r.Context(), "error on getting session value", "key", sessionIDKey, "error", err)
			http.Error(w, "error on getting session value", http.StatusInternalServerError)

			return
		}

		sessionID, _ := value.(string)
		if sessionID == "" {
			next.ServeHTTP(w, r)

			return
		}

		session, err := h.authSvc.GetSession(r.Context(), sessionID)
		if err != nil {
			var sessionNotFoundError *authentication.SessionNotFoundError

			var sessionExpiredError *authentication.SessionExpiredError

			if errors.As(err, &sessionNotFoundError) || errors.As(err, &sessionExpiredError) {
				h.dropSession(w, r, next)

				return
			}

			slog.ErrorContext(r.Context(), "error on getting session", "sessionId", sessionID, "error", err)
			http.Error(w, "error on getting session", http.StatusInternalServerError)

			return
		}

		r = r.WithContext(authcontext.WithSessionID(r.Context(), session.ID))

		user, err := h.authSvc.GetUser(r.Context(), session.UserID)
		if err != nil {
			var userNotFoundError *authentication.UserNotFoundError
			if errors.As(err, &userNotFoundError) {
				err = h.authSvc.Logout(r.Context(), session.ID)
				if err != nil {
					slog.ErrorContext(r.Context(), "error on logging out session", "sessionId", session.ID, "error", err)
					http.Error(w, "error on logging out session", http.StatusInternalServerError)

					return
				}

				h.dropSession(w, r, next)

				return
			}

			slog.ErrorContext(r.Context(), "error retrieving user", "error", err)
			http.Error(w, "error on retrieving user", http.StatusInternalServerError)

			return
		}

		r = r.WithContext(authcontext.WithUserID(r.Context(), user.ID))

		next.ServeHTTP(w, r)
	})
}

// dropSession forgets a stale session id and continues as a guest.
func (h *Handler) dropSession(w http.ResponseWriter, r *http.Request, next http.Handler) {
	err := h.deleteSessionValue(w, r, sessionIDKey)
	if err != nil {
		slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
		http.Error(w, "error on deleting session value", http.StatusInternalServerError)

		return
	}

	next.ServeHTTP(w, r)
}

func isAuthenticated(r *http.Request) bool {
	return authcontext.GetSubject(r.Context()) != authcontext.Anonymous
}

func (h *Handler) AuthenticatedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			target := "/login"
			if r.Method == http.MethodGet {
				target += "?" + url.Values{"redirect": {r.URL.RequestURI()}}.Encode()
			}

			http.Redirect(w, r, target, http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// sanitizeReturnToPath keeps only local absolute paths, falling back to "/".
func sanitizeReturnToPath(returnTo string) string {
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		return "/"
	}

	if strings.ContainsAny(returnTo, "\\\r\n") {
		return "/"
	}

	parsed, err := url.Parse(returnTo)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return "/"
	}

	return returnTo
}
