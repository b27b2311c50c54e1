package middleware

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Context key type to avoid collisions
type contextKey string

const (
	// AdminClaimsKey is the context key for admin token claims
	AdminClaimsKey contextKey = "admin_claims"
)

// AdminClaims represents the claims carried by an admin review-API token.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// WithAdminClaims adds admin claims to the context
func WithAdminClaims(ctx context.Context, claims *AdminClaims) context.Context {
	return context.WithValue(ctx, AdminClaimsKey, claims)
}

// GetAdminClaimsFromContext retrieves admin claims from context
func GetAdminClaimsFromContext(ctx context.Context) *AdminClaims {
	if val := ctx.Value(AdminClaimsKey); val != nil {
		if claims, ok := val.(*AdminClaims); ok {
			return claims
		}
	}
	return nil
}
