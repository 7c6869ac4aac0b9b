package http

import (
	"errors"
	"log/slog"
	"net/http"

	"weeklyspend/internal/auth"
	"weeklyspend/internal/core"
)

type formData struct {
	Error string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	s.render(w, r, "index.html", nil)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "signup.html", formData{})
	case http.MethodPost:
		s.handleSignupPost(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "signup.html", formData{Error: "Invalid form submission."})
		return
	}
	email := sanitizeInput(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	if err := core.ValidateEmail(email); err != nil {
		s.render(w, r, "signup.html", formData{Error: "Enter a valid email address."})
		return
	}
	if password == "" {
		s.render(w, r, "signup.html", formData{Error: "Password cannot be empty."})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.internalError(w, r, "Password hashing failed", err)
		return
	}

	store, err := s.openStore(r.Context())
	if err != nil {
		s.internalError(w, r, "Storage unavailable", err)
		return
	}
	defer store.Close()

	if _, err := store.CreateUser(r.Context(), email, hash); err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			s.render(w, r, "signup.html", formData{Error: "Email already exists."})
			return
		}
		s.internalError(w, r, "User creation failed", err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", formData{})
	case http.MethodPost:
		s.handleLoginPost(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", formData{Error: "Invalid form submission."})
		return
	}
	email := sanitizeInput(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	store, err := s.openStore(r.Context())
	if err != nil {
		s.internalError(w, r, "Storage unavailable", err)
		return
	}
	defer store.Close()

	// An unknown email and a wrong password produce the same response so
	// the form never reveals which one failed.
	user, err := store.UserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.render(w, r, "login.html", formData{Error: "Invalid credentials."})
			return
		}
		s.internalError(w, r, "User lookup failed", err)
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.render(w, r, "login.html", formData{Error: "Invalid credentials."})
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		s.internalError(w, r, "Session issue failed", err)
		return
	}
	s.sessions.SetCookie(w, token)
	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
