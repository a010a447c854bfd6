package handlers

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	applog "qcs/internal/log"
	"qcs/internal/views/pages"
	"qcs/models"
)

const defaultLoginFailure = "We were unable to sign you in. Please try again."

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

// Login renders the sign-in form and processes submissions. API clients that
// post JSON get a JSON answer and the session cookie instead of a redirect.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", isHTMX(r), "json", wantsJSON(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			redirectToApp(w, r)
			return
		}
		message := ""
		if sessionManager != nil {
			message = sessionManager.PopString(r.Context(), sessionLoginMessageKey)
		}
		renderLogin(w, r, message, "")
	case http.MethodPost:
		if sessionManager == nil || database == nil {
			applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
			if wantsJSON(r) {
				writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
				return
			}
			http.Error(w, "authentication not available", http.StatusServiceUnavailable)
			return
		}
		if wantsJSON(r) {
			loginJSON(w, r)
			return
		}
		loginForm(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse login form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if email == "" || password == "" {
		renderLogin(w, r, "Email and password are required.", email)
		return
	}

	if !authenticate(w, r, email, password) {
		applog.Info(r.Context(), "login rejected", "email", models.NormalizeEmail(email))
		message := sessionManager.PopString(r.Context(), sessionLoginMessageKey)
		if message == "" {
			message = defaultLoginFailure
		}
		renderLogin(w, r, message, email)
		return
	}

	applog.Info(r.Context(), "login succeeded", "email", models.NormalizeEmail(email))
	redirectToApp(w, r)
}

func loginJSON(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if !authenticate(w, r, payload.Email, payload.Password) {
		applog.Info(r.Context(), "login rejected", "email", models.NormalizeEmail(payload.Email))
		message := sessionManager.PopString(r.Context(), sessionLoginMessageKey)
		if message == "" {
			message = defaultLoginFailure
		}
		writeJSONError(w, http.StatusUnauthorized, message)
		return
	}

	id, _ := currentUserID(r)
	applog.Info(r.Context(), "login succeeded", "email", models.NormalizeEmail(payload.Email), "user_id", id)
	writeJSON(w, http.StatusOK, sessionResponse{UserID: id, Name: currentUserName(r)})
}

// wantsJSON reports whether the client submitted or asked for JSON.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func renderLogin(w http.ResponseWriter, r *http.Request, message, email string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var component templ.Component
	if isHTMX(r) {
		component = pages.LoginPartial(message, email)
	} else {
		component = pages.Login(message, email)
	}

	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render login component", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
