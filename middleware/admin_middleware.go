package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/utils"
)

// AdminMiddleware guards the review/statistics admin surface with
// HMAC-signed bearer tokens.
type AdminMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAdminMiddleware creates a new AdminMiddleware
func NewAdminMiddleware(secret string, logger *zap.Logger) *AdminMiddleware {
	return &AdminMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireAdmin is a middleware that requires a valid admin JWT
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.secret) == 0 {
			m.logger.Warn("admin surface requested but no admin secret configured")
			_ = utils.WriteUnauthorized(w, "Admin API disabled")
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing admin token", zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validateToken(token)
		if err != nil {
			m.logger.Warn("admin token validation failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := WithAdminClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken parses and verifies an HMAC-signed admin token
func (m *AdminMiddleware) validateToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
