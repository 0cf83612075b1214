package handler

import (
	"errors"
	"log/slog"
	"net/http"

	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

type loginForm struct {
	Email string
}

type registerForm struct {
	Email    string
	Username string
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", http.StatusOK, page{Title: "Login", Data: loginForm{}})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login", http.StatusBadRequest, page{Title: "Login", Error: "invalid form", Data: loginForm{}})
		return
	}
	email := r.PostFormValue("email")
	_, err := h.sessions.Login(r.Context(), h.store(r), email, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, pkgerrors.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.render(w, r, "login", status, page{Title: "Login", Error: remoteMessage(err, "login failed"), Data: loginForm{Email: email}})
		return
	}
	seeOther(w, r, "/home")
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", http.StatusOK, page{Title: "Register", Data: registerForm{}})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register", http.StatusBadRequest, page{Title: "Register", Error: "invalid form", Data: registerForm{}})
		return
	}
	form := registerForm{Email: r.PostFormValue("email"), Username: r.PostFormValue("username")}
	err := h.sessions.Register(r.Context(), h.store(r), form.Email, form.Username, r.PostFormValue("password"))
	if err != nil {
		h.render(w, r, "register", http.StatusBadRequest, page{Title: "Register", Error: remoteMessage(err, "registration failed"), Data: form})
		return
	}
	seeOther(w, r, "/verify")
}

func (h *Handler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "verify", http.StatusOK, page{Title: "Verify"})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "verify", http.StatusBadRequest, page{Title: "Verify", Error: "invalid form"})
		return
	}
	_, err := h.sessions.Verify(r.Context(), h.store(r), r.PostFormValue("code"))
	switch {
	case err == nil:
		seeOther(w, r, "/home")
	case errors.Is(err, pkgerrors.ErrInvalidCode):
		h.render(w, r, "verify", http.StatusBadRequest, page{Title: "Verify", Error: "the code must be 4 digits"})
	case errors.Is(err, pkgerrors.ErrNoPendingEmail):
		h.render(w, r, "verify", http.StatusBadRequest, page{Title: "Verify", Error: "register first to receive a code"})
	default:
		h.render(w, r, "verify", http.StatusBadRequest, page{Title: "Verify", Error: remoteMessage(err, "verification failed")})
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), h.store(r)); err != nil {
		slog.Error("logout failed", "error", err)
	}
	seeOther(w, r, "/login")
}

// Home greets the user with the API's view of them. Any failure, not only
// a 401, sends the user back to log in.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	me, err := h.api.Me(r.Context(), h.credential(r).Token)
	if err != nil {
		toLogin(w, r)
		return
	}
	h.render(w, r, "home", http.StatusOK, page{Title: "Home", Data: me})
}
