/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"
	"time"

	"eduplatform/internal/app/auth"
	"eduplatform/internal/app/user"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/req"
	"eduplatform/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	ID        int64      `json:"id"`
	User      *user.User `json:"user,omitempty"`
}

func newSessionResponse(s *auth.Session, withUser bool) sessionResponse {
	out := sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, ID: s.User.ID}
	if withUser {
		u := s.User
		out.User = &u
	}
	return out
}

// HandleRegister creates a user account. The role is always the default one;
// admins only come from the startup bootstrap.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Auth.Register(r.Context(), auth.RegisterInput{
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, newSessionResponse(session, true))
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Auth.Login(r.Context(), input.Username, input.Password)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, newSessionResponse(session, true))
	}
}

// HandleRefreshToken trades a still-valid token for a fresh one.
func HandleRefreshToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := deps.Auth.Refresh(r.Context(), jwt.GetPayloadFromContext(r))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, newSessionResponse(session, false))
	}
}

// identity returns the caller's claims. Routes using it sit behind Authenticate.
func identity(w http.ResponseWriter, r *http.Request) (*jwt.Payload, bool) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
		return nil, false
	}
	return payload, true
}
