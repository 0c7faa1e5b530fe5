package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/NuvaGit/CaitlinPortfolio/internal/auth"
	"github.com/NuvaGit/CaitlinPortfolio/internal/db"
	"github.com/NuvaGit/CaitlinPortfolio/internal/middleware"
	"github.com/NuvaGit/CaitlinPortfolio/internal/models"
)

// UserStore is the user persistence surface the auth handler depends on.
// *db.Store implements it.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

// AuthHandler validates the single operator identity against configured
// credentials and issues session tokens.
type AuthHandler struct {
	store         UserStore
	adminEmail    string
	adminPassword string
	adminName     string
	secret        []byte
}

func NewAuthHandler(store UserStore, adminEmail, adminPassword, adminName string, secret []byte) *AuthHandler {
	return &AuthHandler{
		store:         store,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		adminName:     adminName,
		secret:        secret,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login checks the submitted credentials against the configured admin
// pair, ensures the admin user row exists, and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if !secureEqual(req.Email, h.adminEmail) || !secureEqual(req.Password, h.adminPassword) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, err := h.ensureAdminUser(r.Context())
	if err != nil {
		log.Printf("login: %v", err)
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}

	token, err := auth.GenerateToken(h.secret, user.ID, user.Name, auth.RoleAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout clears the session cookie. The token itself simply expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// ensureAdminUser creates the admin user row on first login.
func (h *AuthHandler) ensureAdminUser(ctx context.Context) (*models.User, error) {
	user, err := h.store.GetUserByEmail(ctx, h.adminEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}
	return h.store.CreateUser(ctx, models.User{
		Name:  h.adminName,
		Email: h.adminEmail,
		Role:  auth.RoleAdmin,
	})
}

func secureEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
