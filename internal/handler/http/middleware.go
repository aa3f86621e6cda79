package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/user-directory/internal/auth"
)

// Authenticate verifies the bearer token and stores the caller identity in
// the request context. A missing header yields 401, any other failure 403.
func Authenticate(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				respondError(w, http.StatusForbidden, msgInvalidToken)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrMissingToken) {
					hlog.FromRequest(r).Error().Err(err).Msg("unexpected token verification error")
				}
				respondError(w, http.StatusForbidden, msgInvalidToken)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(r *http.Request) (auth.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}
