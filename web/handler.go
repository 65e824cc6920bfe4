package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nasermirzaei89/labbook/authentication"
	authcontext "github.com/nasermirzaei89/labbook/authentication/context"
	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/records"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	//go:embed templates/*
	templatesFS embed.FS

	//go:embed static/*
	staticFS embed.FS
)

const (
	defaultSiteTitle     = "labbook"
	defaultLoginRedirect = "/experiments"
	homeRecordsLimit     = 5

	genericErrorMessage  = "Something went wrong. Please try again later."
	missingFieldMessage  = "A mandatory field is missing!"
	loginFailedMessage   = "Login failed. Either you mistyped your password or your account isn't activated yet."
	commentNotFoundMsg   = "This comment does not exist anymore."
	commentForbiddenMsg  = "You can only change your own comments."
	commentUpdatedMsg    = "Comment updated."
	commentDeletedMsg    = "Comment deleted."
	registrationOKMsg    = "Registration successful. You can now log in."
	emailAlreadyTakenMsg = "An account with this email already exists."
)

var recordKinds = []discuss.EntityKind{discuss.EntityKindExperiment, discuss.EntityKindItem}

type Handler struct {
	mux         *http.ServeMux
	routes      http.Handler
	handler     http.Handler
	tpl         *template.Template
	static      fs.FS
	authSvc     *authentication.Service
	recordsSvc  records.Service
	discussSvc  discuss.Service
	cookieStore *sessions.CookieStore
	sessionName string
	markdown    goldmark.Markdown
	bodyPolicy  *bluemonday.Policy
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	authSvc *authentication.Service,
	recordsSvc records.Service,
	discussSvc discuss.Service,
	cookieStore *sessions.CookieStore,
	sessionName string,
	csrfAuthKeys []byte,
	csrfTrustedOrigins []string,
) (*Handler, error) {
	h := &Handler{
		authSvc:     authSvc,
		recordsSvc:  recordsSvc,
		discussSvc:  discussSvc,
		cookieStore: cookieStore,
		sessionName: sessionName,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		bodyPolicy:  bluemonday.UGCPolicy(),
	}

	{
		tpl, err := template.New("").Funcs(h.funcs()).ParseFS(templatesFS, "templates/*.gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}

		h.tpl = tpl
	}

	{
		static, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to sub static fs: %w", err)
		}

		h.static = static
	}

	{
		h.mux = &http.ServeMux{}

		h.registerRoutes()

		h.routes = h.authMiddleware(h.mux)
	}

	{
		csrfMiddleware := csrf.Protect(
			csrfAuthKeys,
			csrf.TrustedOrigins(csrfTrustedOrigins),
			csrf.ErrorHandler(http.HandlerFunc(handleCSRFFailure)),
		)

		h.handler = csrfMiddleware(h.routes)
		h.handler = plaintextMiddleware(h.handler)
		h.handler = requestLoggerMiddleware(h.handler)
		h.handler = recoverMiddleware(h.handler)
	}

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /{$}", h.HandleHomePage)
	h.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(h.static))))

	h.mux.Handle("GET /register", h.HandleRegisterPage())
	h.mux.Handle("POST /register", h.HandleRegister())
	h.mux.Handle("GET /login", h.HandleLoginPage())
	h.mux.Handle("POST /login", h.HandleLogin())
	h.mux.Handle("GET /logout", h.HandleLogoutPage())
	h.mux.Handle("POST /logout", h.HandleLogout())

	for _, kind := range recordKinds {
		base := "/" + string(kind)

		h.mux.Handle("GET "+base, h.HandleListRecordsPage(kind))
		h.mux.Handle("GET "+base+"/new", h.HandleCreateRecordPage(kind))
		h.mux.Handle("POST "+base, h.HandleCreateRecord(kind))
		h.mux.Handle("GET "+base+"/{id}", h.HandleViewRecordPage(kind))
		h.mux.Handle("POST "+base+"/{id}/comments", h.HandlePostComment(kind))
		h.mux.Handle("POST "+base+"/{id}/comments/{commentId}/edit", h.HandleEditComment(kind))
		h.mux.Handle("POST "+base+"/{id}/comments/{commentId}/delete", h.HandleDeleteComment(kind))
	}
}

func handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "csrf validation failed", "reason", csrf.FailureReason(r), "ip", clientIP(r))
	http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
}

func (h *Handler) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":     h.renderMarkdown,
		"commentHTML":  commentHTML,
		"commentText":  commentText,
		"formatTime":   formatTime,
		"kindTitle":    kindTitle,
		"kindSingular": kindSingular,
	}
}

func (h *Handler) renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer

	err := h.markdown.Convert([]byte(source), &buf)
	if err != nil {
		slog.Error("failed to render markdown", "error", err)

		return template.HTML("<pre>" + html.EscapeString(source) + "</pre>") //nolint:gosec
	}

	return template.HTML(h.bodyPolicy.SanitizeBytes(buf.Bytes())) //nolint:gosec
}

// commentHTML marks stored comment content as safe. Content is stripped and
// escaped before it is written.
func commentHTML(content string) template.HTML {
	return template.HTML(content) //nolint:gosec
}

// commentText turns stored comment content back into editable text.
func commentText(content string) string {
	return html.UnescapeString(strings.ReplaceAll(content, "<br />\n", "\n"))
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func kindTitle(kind discuss.EntityKind) string {
	switch kind {
	case discuss.EntityKindExperiment:
		return "Experiments"
	case discuss.EntityKindItem:
		return "Database"
	default:
		return string(kind)
	}
}

func kindSingular(kind discuss.EntityKind) string {
	switch kind {
	case discuss.EntityKindExperiment:
		return "experiment"
	case discuss.EntityKindItem:
		return "item"
	default:
		return string(kind)
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, extraData map[string]any) {
	var currentUser *authentication.User

	if isAuthenticated(r) {
		var err error

		currentUser, err = h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get current user", "error", err)
			http.Error(w, "Failed to get current user", http.StatusInternalServerError)

			return
		}
	}

	flashes, err := h.popFlashes(w, r)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read flash messages", "error", err)

		flashes = &Flashes{}
	}

	data := map[string]any{
		"CurrentPath":     r.URL.Path,
		"Lang":            "en",
		"Dir":             "ltr",
		"IsAuthenticated": isAuthenticated(r),
		"CurrentUser":     currentUser,
		"Kinds":           recordKinds,
		"Flashes":         flashes,
		csrf.TemplateTag:  csrf.TemplateField(r),
	}

	maps.Copy(data, extraData)

	data["SiteTitle"] = defaultSiteTitle

	if extraData["SiteTitle"] != nil {
		data["SiteTitle"] = fmt.Sprintf("%s | %s", extraData["SiteTitle"], data["SiteTitle"])
	}

	err = h.tpl.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}
}

// redirectWithFlash stores a one-time message and redirects to target.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	err := h.addFlash(w, r, kind, message)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to add flash message", "error", err)
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleServiceError answers requests whose service call failed outside the
// expected validation cases.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var (
		accessDeniedErr   *authorization.AccessDeniedError
		invalidKindErr    *discuss.InvalidEntityKindError
		recordNotFoundErr *records.RecordNotFoundError
	)

	switch {
	case errors.As(err, &accessDeniedErr):
		slog.InfoContext(r.Context(), "access denied", "subject", accessDeniedErr.Subject,
			"object", accessDeniedErr.Object, "action", accessDeniedErr.Action)
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.As(err, &invalidKindErr), errors.As(err, &recordNotFoundErr):
		http.NotFound(w, r)
	default:
		slog.ErrorContext(r.Context(), msg, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleHomePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}

	if isAuthenticated(r) {
		latest := make(map[discuss.EntityKind][]*records.Record, len(recordKinds))

		for _, kind := range recordKinds {
			list, err := h.recordsSvc.ListRecords(r.Context(), kind)
			if err != nil {
				h.handleServiceError(w, r, "failed to list records", err)

				return
			}

			latest[kind] = list[:min(len(list), homeRecordsLimit)]
		}

		data["Latest"] = latest
	}

	h.renderTemplate(w, r, "home-page.gohtml", data)
}

func (h *Handler) HandleRegisterPage() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"SiteTitle":         "Register",
			"MinPasswordLength": authentication.MinPasswordLength,
		}

		h.renderTemplate(w, r, "register-page.gohtml", data)
	})

	return h.GuestOnly(hf)
}

func (h *Handler) HandleRegister() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		_, err = h.authSvc.Register(r.Context(), authentication.RegisterRequest{
			Email:     r.FormValue("email"),
			FirstName: r.FormValue("firstname"),
			LastName:  r.FormValue("lastname"),
			Password:  r.FormValue("password"),
		})
		if err != nil {
			var (
				invalidInputErr      *authentication.InvalidInputError
				userAlreadyExistsErr *authentication.UserAlreadyExistsError
			)

			switch {
			case errors.As(err, &invalidInputErr):
				h.redirectWithFlash(w, r, flashKO, invalidInputErr.Error(), "/register")
			case errors.As(err, &userAlreadyExistsErr):
				h.redirectWithFlash(w, r, flashKO, emailAlreadyTakenMsg, "/register")
			default:
				slog.ErrorContext(r.Context(), "failed to register user", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}

			return
		}

		h.redirectWithFlash(w, r, flashOK, registrationOKMsg, "/login")
	})

	return h.GuestOnly(hf)
}

func (h *Handler) HandleLoginPage() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"SiteTitle": "Login",
			"Redirect":  r.URL.Query().Get("redirect"),
		}

		h.renderTemplate(w, r, "login-page.gohtml", data)
	})

	return h.GuestOnly(hf)
}

func (h *Handler) HandleLogin() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		redirect := r.FormValue("redirect")

		loginPage := "/login"
		if redirect != "" {
			loginPage += "?" + url.Values{"redirect": {sanitizeReturnToPath(redirect)}}.Encode()
		}

		if email == "" || password == "" {
			h.redirectWithFlash(w, r, flashKO, missingFieldMessage, loginPage)

			return
		}

		session, err := h.authSvc.Login(r.Context(), email, password)
		if err != nil {
			if !errors.Is(err, authentication.ErrInvalidCredentials) {
				slog.ErrorContext(r.Context(), "failed to login user", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)

				return
			}

			attempts, err := h.countFailedAttempt(w, r)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to count failed login attempt", "error", err)
			}

			slog.WarnContext(r.Context(), "failed login attempt", "ip", clientIP(r), "attempts", attempts)

			h.redirectWithFlash(w, r, flashKO, loginFailedMessage, loginPage)

			return
		}

		err = h.startSession(w, r, session.ID, r.FormValue("rememberme") == "on")
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to set session ID", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		target := defaultLoginRedirect
		if redirect != "" {
			target = sanitizeReturnToPath(redirect)
		}

		http.Redirect(w, r, target, http.StatusSeeOther)
	})

	return h.GuestOnly(hf)
}

func (h *Handler) HandleLogoutPage() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"SiteTitle": "Logout",
		}

		h.renderTemplate(w, r, "logout-page.gohtml", data)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleLogout() http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := authcontext.SessionIDFromContext(r.Context())
		if ok {
			err := h.authSvc.Logout(r.Context(), sessionID)
			if err != nil {
				slog.ErrorContext(r.Context(), "error on logout", "sessionId", sessionID, "error", err)
				http.Error(w, "error on logout", http.StatusInternalServerError)

				return
			}
		}

		err := h.deleteSessionValue(w, r, sessionIDKey)
		if err != nil {
			slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
			http.Error(w, "error on deleting session value", http.StatusInternalServerError)

			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleListRecordsPage(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := h.recordsSvc.ListRecords(r.Context(), kind)
		if err != nil {
			h.handleServiceError(w, r, "failed to list records", err)

			return
		}

		data := map[string]any{
			"SiteTitle": kindTitle(kind),
			"Kind":      kind,
			"Records":   list,
		}

		h.renderTemplate(w, r, "records-page.gohtml", data)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleCreateRecordPage(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"SiteTitle": "New " + kindSingular(kind),
			"Kind":      kind,
		}

		h.renderTemplate(w, r, "create-record-page.gohtml", data)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleCreateRecord(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		currentUser, err := h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get current user", "error", err)
			http.Error(w, "Failed to get current user", http.StatusInternalServerError)

			return
		}

		record, err := h.recordsSvc.CreateRecord(r.Context(), records.CreateRecordRequest{
			Kind:    kind,
			OwnerID: currentUser.ID,
			Title:   r.FormValue("title"),
			Body:    r.FormValue("body"),
		})
		if err != nil {
			var emptyTitleErr *records.EmptyTitleError
			if errors.As(err, &emptyTitleErr) {
				h.redirectWithFlash(w, r, flashKO, emptyTitleErr.Error(), "/"+string(kind)+"/new")

				return
			}

			h.handleServiceError(w, r, "failed to create record", err)

			return
		}

		http.Redirect(w, r, record.Entity().ViewPath(), http.StatusSeeOther)
	})

	return h.AuthenticatedOnly(hf)
}

// CommentView is a comment with what the current user may do with it.
type CommentView struct {
	discuss.Comment

	IsMine bool
}

func (h *Handler) HandleViewRecordPage(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.recordFromPath(w, r, kind)
		if !ok {
			return
		}

		owner, err := h.authSvc.GetUser(r.Context(), record.OwnerID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get record owner", "ownerId", record.OwnerID, "error", err)
			http.Error(w, "Failed to get record owner", http.StatusInternalServerError)

			return
		}

		comments, err := h.discussSvc.ListComments(r.Context(), record.Entity())
		if err != nil {
			h.handleServiceError(w, r, "failed to list comments", err)

			return
		}

		currentUserID, _ := authcontext.GetUserID(r.Context())

		views := make([]*CommentView, 0, len(comments))
		for _, comment := range comments {
			views = append(views, &CommentView{Comment: *comment, IsMine: comment.AuthorID == currentUserID})
		}

		data := map[string]any{
			"SiteTitle": record.Title,
			"Kind":      kind,
			"Record":    record,
			"Owner":     owner,
			"Comments":  views,
			"MinLength": discuss.MinContentLength,
		}

		h.renderTemplate(w, r, "view-record-page.gohtml", data)
	})

	return h.AuthenticatedOnly(hf)
}

// recordFromPath loads the record named by the {id} path value. It writes the
// error response itself and reports false when there is none.
func (h *Handler) recordFromPath(w http.ResponseWriter, r *http.Request, kind discuss.EntityKind) (*records.Record, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)

		return nil, false
	}

	record, err := h.recordsSvc.GetRecord(r.Context(), kind, id)
	if err != nil {
		h.handleServiceError(w, r, "failed to get record", err)

		return nil, false
	}

	return record, true
}

func commentIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("commentId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// handleCommentError turns validation and storage failures into a flash
// message on the record page.
func (h *Handler) handleCommentError(w http.ResponseWriter, r *http.Request, returnTo string, err error) {
	var (
		tooShortErr *discuss.InputTooShortError
		storageErr  *discuss.StorageError
	)

	switch {
	case errors.As(err, &tooShortErr):
		h.redirectWithFlash(w, r, flashKO, tooShortErr.Error(), returnTo)
	case errors.As(err, &storageErr):
		slog.ErrorContext(r.Context(), "comment storage failed", "op", storageErr.Op, "error", err)
		h.redirectWithFlash(w, r, flashKO, genericErrorMessage, returnTo)
	default:
		h.handleServiceError(w, r, "failed to change comment", err)
	}
}

// handleOutcome reports an ownership-guarded mutation back to the user.
func (h *Handler) handleOutcome(
	w http.ResponseWriter,
	r *http.Request,
	outcome discuss.Outcome,
	commentID int64,
	appliedMsg string,
	returnTo string,
) {
	switch outcome {
	case discuss.OutcomeApplied:
		h.redirectWithFlash(w, r, flashOK, appliedMsg, returnTo)
	case discuss.OutcomeForbidden:
		slog.InfoContext(r.Context(), "comment change refused", "commentId", commentID, "outcome", outcome)
		h.redirectWithFlash(w, r, flashKO, commentForbiddenMsg, returnTo)
	default:
		slog.InfoContext(r.Context(), "comment change refused", "commentId", commentID, "outcome", outcome)
		h.redirectWithFlash(w, r, flashKO, commentNotFoundMsg, returnTo)
	}
}

func (h *Handler) HandlePostComment(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		record, ok := h.recordFromPath(w, r, kind)
		if !ok {
			return
		}

		currentUser, err := h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get current user", "error", err)
			http.Error(w, "Failed to get current user", http.StatusInternalServerError)

			return
		}

		entity := record.Entity()
		returnTo := entity.ViewPath()

		commentID, err := h.discussSvc.CreateComment(r.Context(), discuss.CreateCommentRequest{
			Entity:   entity,
			AuthorID: currentUser.ID,
			Content:  r.FormValue("comment"),
			BaseURL:  requestBaseURL(r),
		})
		if err != nil {
			h.handleCommentError(w, r, returnTo, err)

			return
		}

		http.Redirect(w, r, returnTo+"#comment-"+strconv.FormatInt(commentID, 10), http.StatusSeeOther)
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleEditComment(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)

			return
		}

		record, ok := h.recordFromPath(w, r, kind)
		if !ok {
			return
		}

		commentID, ok := commentIDFromPath(r)
		if !ok {
			http.NotFound(w, r)

			return
		}

		currentUser, err := h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get current user", "error", err)
			http.Error(w, "Failed to get current user", http.StatusInternalServerError)

			return
		}

		entity := record.Entity()
		returnTo := entity.ViewPath()

		res, err := h.discussSvc.UpdateComment(r.Context(), discuss.UpdateCommentRequest{
			Entity:    entity,
			CommentID: commentID,
			UserID:    currentUser.ID,
			Content:   r.FormValue("comment"),
		})
		if err != nil {
			h.handleCommentError(w, r, returnTo, err)

			return
		}

		h.handleOutcome(w, r, res.Outcome, commentID, commentUpdatedMsg,
			returnTo+"#comment-"+strconv.FormatInt(commentID, 10))
	})

	return h.AuthenticatedOnly(hf)
}

func (h *Handler) HandleDeleteComment(kind discuss.EntityKind) http.Handler {
	hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.recordFromPath(w, r, kind)
		if !ok {
			return
		}

		commentID, ok := commentIDFromPath(r)
		if !ok {
			http.NotFound(w, r)

			return
		}

		currentUser, err := h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get current user", "error", err)
			http.Error(w, "Failed to get current user", http.StatusInternalServerError)

			return
		}

		entity := record.Entity()

		outcome, err := h.discussSvc.DeleteComment(r.Context(), discuss.DeleteCommentRequest{
			Entity:    entity,
			CommentID: commentID,
			UserID:    currentUser.ID,
		})
		if err != nil {
			h.handleCommentError(w, r, entity.ViewPath(), err)

			return
		}

		h.handleOutcome(w, r, outcome, commentID, commentDeletedMsg, entity.ViewPath())
	})

	return h.AuthenticatedOnly(hf)
}
