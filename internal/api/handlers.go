package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukepan/linkpulse/internal/auth"
	"github.com/dukepan/linkpulse/internal/models"
	"github.com/dukepan/linkpulse/internal/utils"
)

const tokenTTL = 24 * time.Hour

// SignupRequest represents signup request payload
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents auth response
type AuthResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresIn int          `json:"expires_in"`
}

// SignupHandler handles user registration
func (r *Router) SignupHandler(w http.ResponseWriter, req *http.Request) {
	var signupReq SignupRequest
	if err := json.NewDecoder(req.Body).Decode(&signupReq); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(signupReq.Username) < 3 || len(signupReq.Password) < 8 {
		utils.RespondError(w, http.StatusBadRequest, "username must be at least 3 characters and password at least 8")
		return
	}

	hashedPassword, err := auth.HashPassword(signupReq.Password)
	if err != nil {
		r.logger.Error(req.Context(), "failed to hash password: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := r.db.CreateUser(req.Context(), signupReq.Username, hashedPassword)
	if err != nil {
		r.logger.Error(req.Context(), "failed to create user %q: %v", signupReq.Username, err)
		utils.RespondError(w, http.StatusConflict, "username already taken")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, user)
}

// LoginHandler authenticates a user and issues a token
func (r *Router) LoginHandler(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := r.db.GetUserByUsername(req.Context(), loginReq.Username)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, loginReq.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := r.jwtMgr.GenerateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		r.logger.Error(req.Context(), "failed to generate token for %q: %v", user.Username, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	utils.RespondJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		User:      user,
		ExpiresIn: int(tokenTTL.Seconds()),
	})
}

// HealthzHandler reports service and dependency health
func (r *Router) HealthzHandler(w http.ResponseWriter, req *http.Request) {
	if err := r.db.Health(req.Context()); err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
