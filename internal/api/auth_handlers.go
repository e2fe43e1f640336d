package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kevinpasricha/team-to-doers/internal/auth"
	"github.com/kevinpasricha/team-to-doers/internal/database"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	if !auth.ValidateUsername(req.Username) {
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}
	if !auth.ValidateEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if !auth.ValidatePassword(req.Password) {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	_, err := api.Auth.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, database.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "Username already taken")
		return
	case errors.Is(err, database.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	user, err := api.Auth.Login(req.Username, req.Password)
	if err != nil {
		// Unknown username and wrong password report identically
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid Credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	session, err := api.Auth.CreateSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   api.Config.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if err := api.Auth.DestroySession(cookie.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "Database Error")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully!"})
}

func (api *Api) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Not authenticated")
		return
	}

	user, err := api.Store.GetUserByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database Error")
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Welcome, %s!", user.Username)
}
