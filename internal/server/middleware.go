package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal placed on the
// context by the authentication middleware.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(models.Principal)
	return p, ok
}

// authenticate verifies the bearer token, loads the account it names and
// attaches the resulting principal to the request context. The principal's
// role and organization come from the store, not the token, so a role change
// takes effect on the next request rather than at token expiry.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeErrorStatus(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeErrorStatus(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		userID, err := VerifyToken(tokenString, s.cfg.JWTSecret)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			writeErrorStatus(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := s.store.Users.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				writeErrorStatus(w, http.StatusUnauthorized, "invalid token")
				return
			}
			writeErrorStatus(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !user.IsActive() {
			writeErrorStatus(w, http.StatusForbidden, "account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, user.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifyToken parses and validates a bearer token, returning the user ID from
// its subject claim. Only HMAC-signed tokens are accepted.
func VerifyToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	return userID, nil
}

// IssueToken mints a bearer token for the given user. Used by the seed
// command to produce ready-to-use credentials for local development.
func IssueToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
