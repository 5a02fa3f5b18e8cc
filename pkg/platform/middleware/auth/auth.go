// Package auth guards the admin surface with bearer tokens issued to trusted
// issuer addresses.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"certledger/pkg/requestcontext"
)

// AdminValidator defines the interface for validating admin bearer tokens.
type AdminValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// TrustPolicy answers whether an address may act as an admin.
type TrustPolicy interface {
	IsTrustedIssuer(address string) bool
}

// AdminClaims represents the claims we expect from the validator.
type AdminClaims struct {
	Address string
	JTI     string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAdmin accepts requests whose bearer token names a trusted issuer and
// stores that address in the request context.
func RequireAdmin(validator AdminValidator, policy TrustPolicy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if !policy.IsTrustedIssuer(claims.Address) {
				logger.WarnContext(ctx, "forbidden - admin is not a trusted issuer",
					"admin", claims.Address,
					"jti", claims.JTI,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusForbidden, "policy_denied", "Caller is not a trusted issuer")
				return
			}

			ctx = requestcontext.WithAdminAddress(ctx, claims.Address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
