package middleware

import (
	"context"
	"net/http"

	"github.com/dukepan/linkpulse/internal/auth"
	"github.com/dukepan/linkpulse/internal/contextkey"
	"github.com/dukepan/linkpulse/internal/utils"
)

// Auth validates the bearer token on protected endpoints and stores the
// authenticated user's ID in the request context for the handlers, the
// rate limiter, and the logger.
type Auth struct {
	jwtMgr *auth.JWTManager
}

// NewAuth creates the auth middleware around a JWT manager.
func NewAuth(jwtMgr *auth.JWTManager) *Auth {
	return &Auth{jwtMgr: jwtMgr}
}

// Middleware wraps next with bearer token validation.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, err := auth.ExtractTokenFromHeader(req.Header.Get("Authorization"))
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := a.jwtMgr.ValidateToken(token)
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(req.Context(), contextkey.ContextKeyUserID, claims.UserID)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
