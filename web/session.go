package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionIDKey      = "sessionId"
	rememberMeKey     = "rememberMe"
	failedAttemptsKey = "failedAttempts"

	flashOK = "ok"
	flashKO = "ko"
)

type SessionValueNotFoundError struct {
	Key string
}

func (err SessionValueNotFoundError) Error() string {
	return fmt.Sprintf("session value for key '%s' not found", err.Key)
}

func (h *Handler) getSession(r *http.Request) (*sessions.Session, error) {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return nil, fmt.Errorf("error getting session: %w", err)
	}

	return session, nil
}

// saveSession writes the cookie. Sessions started without "remember me" end
// with the browser session.
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	if remember, _ := session.Values[rememberMeKey].(bool); !remember && session.Options.MaxAge > 0 {
		options := *session.Options
		options.MaxAge = 0
		session.Options = &options
	}

	err := session.Save(r, w)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

func (h *Handler) getSessionValue(r *http.Request, key string) (any, error) {
	session, err := h.getSession(r)
	if err != nil {
		return nil, err
	}

	value, ok := session.Values[key]
	if !ok {
		return nil, &SessionValueNotFoundError{Key: key}
	}

	return value, nil
}

func (h *Handler) deleteSessionValue(w http.ResponseWriter, r *http.Request, key string) error {
	session, err := h.getSession(r)
	if err != nil {
		return err
	}

	delete(session.Values, key)

	return h.saveSession(w, r, session)
}

// startSession binds an authenticated session to the cookie and resets the
// failed login counter.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, sessionID string, remember bool) error {
	session, err := h.getSession(r)
	if err != nil {
		return err
	}

	session.Values[sessionIDKey] = sessionID
	session.Values[rememberMeKey] = remember
	delete(session.Values, failedAttemptsKey)

	return h.saveSession(w, r, session)
}

// countFailedAttempt increments and returns the failed login counter.
func (h *Handler) countFailedAttempt(w http.ResponseWriter, r *http.Request) (int, error) {
	session, err := h.getSession(r)
	if err != nil {
		return 0, err
	}

	attempts, _ := session.Values[failedAttemptsKey].(int)
	attempts++
	session.Values[failedAttemptsKey] = attempts

	err = h.saveSession(w, r, session)
	if err != nil {
		return 0, err
	}

	return attempts, nil
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	session, err := h.getSession(r)
	if err != nil {
		return err
	}

	session.AddFlash(message, kind)

	return h.saveSession(w, r, session)
}

// Flashes holds the one-time messages shown on the next rendered page.
type Flashes struct {
	OK []string
	KO []string
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) (*Flashes, error) {
	session, err := h.getSession(r)
	if err != nil {
		return nil, err
	}

	flashes := &Flashes{}

	for _, value := range session.Flashes(flashOK) {
		if message, ok := value.(string); ok {
			flashes.OK = append(flashes.OK, message)
		}
	}

	for _, value := range session.Flashes(flashKO) {
		if message, ok := value.(string); ok {
			flashes.KO = append(flashes.KO, message)
		}
	}

	if len(flashes.OK) == 0 && len(flashes.KO) == 0 {
		return flashes, nil
	}

	err = h.saveSession(w, r, session)
	if err != nil {
		return nil, err
	}

	return flashes, nil
}
