package jwt

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/logx"
	"eduplatform/internal/pkg/resp"
)

// Define Context Key for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload (user identity) in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, *errs.CustomError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errs.NewError(errs.ErrMissingToken)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errs.NewError(errs.ErrMissingToken)
	}

	return strings.TrimSpace(parts[1]), nil
}

// Authenticate requires a valid bearer token and injects its Payload into the context.
func Authenticate(v Validator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, customErr := BearerToken(r)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}

			payload, err := v.Validate(tokenString)
			if err != nil {
				logx.Ctx(r.Context()).Warn().Err(err).Msg("Rejected bearer token")
				resp.RespondErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// Identify is the optional variant of Authenticate: a request without an
// Authorization header passes through anonymously, but a header carrying a
// bad or expired token is still rejected.
func Identify(v Validator) func(next http.Handler) http.Handler {
	required := Authenticate(v)

	return func(next http.Handler) http.Handler {
		withToken := required(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withToken.ServeHTTP(w, r)
		})
	}
}

// RequireRole is the role gate. It must run after Authenticate.
func RequireRole(allowed ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := GetPayloadFromContext(r)
			if payload == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
				return
			}

			if err := CheckRole(payload, allowed...); err != nil {
				logx.Ctx(r.Context()).Warn().
					Int64("user_id", payload.UserID).
					Str("role", payload.Role).
					Strs("allowed", allowed).
					Msg("Role gate denied request")
				resp.RespondErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CheckRole fails with ErrMissingRole when the claims carry no role and with
// ErrForbidden when the role is not one of allowed.
func CheckRole(payload *Payload, allowed ...string) error {
	if payload == nil || payload.Role == "" {
		return errs.NewError(errs.ErrMissingRole)
	}

	if !slices.Contains(allowed, payload.Role) {
		return errs.NewError(errs.ErrForbidden)
	}

	return nil
}

// WithPayload stores payload in ctx.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// A nil return means the caller is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
