package jwt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduplatform/internal/pkg/errs"
)

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func serve(t *testing.T, h http.Handler, authHeader string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var body envelope
	if w.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	issuer := NewIssuer(testSecret)
	token, _, err := issuer.Issue(3, "user", "bob", "b@x.com")
	require.NoError(t, err)

	var seen *Payload
	h := Authenticate(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	w, _ := serve(t, h, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(3), seen.UserID)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"no header", "", errs.ErrMissingToken},
		{"not bearer", "Basic Ym9iOnB3", errs.ErrMissingToken},
		{"bearer without token", "Bearer ", errs.ErrMissingToken},
		{"garbage token", "Bearer abc.def.ghi", errs.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, h, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAuthenticateExpired(t *testing.T) {
	past := time.Now().Add(-SessionLifetime - time.Hour)
	token, _, err := NewIssuer(testSecret).WithClock(fixedClock(past)).Issue(3, "user", "bob", "b@x.com")
	require.NoError(t, err)

	w, body := serve(t, Authenticate(NewIssuer(testSecret))(okHandler()), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrExpiredToken, body.Code)
}

func TestIdentify(t *testing.T) {
	issuer := NewIssuer(testSecret)
	var seen *Payload
	h := Identify(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	w, _ := serve(t, h, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, seen)

	w, body := serve(t, h, "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrInvalidToken, body.Code)
}

func TestRequireRole(t *testing.T) {
	issuer := NewIssuer(testSecret)
	userToken, _, err := issuer.Issue(2, "user", "alice", "a@x.com")
	require.NoError(t, err)
	adminToken, _, err := issuer.Issue(1, "admin", "root", "root@x.com")
	require.NoError(t, err)
	rolelessToken, _, err := issuer.Issue(4, "", "ghost", "g@x.com")
	require.NoError(t, err)

	h := Authenticate(issuer)(RequireRole("admin")(okHandler()))

	w, _ := serve(t, h, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := serve(t, h, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errs.ErrForbidden, body.Code)

	w, body = serve(t, h, "Bearer "+rolelessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errs.ErrMissingRole, body.Code)

	w, body = serve(t, RequireRole("admin")(okHandler()), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrMissingToken, body.Code)
}

func TestCheckRole(t *testing.T) {
	assert.True(t, errs.Is(CheckRole(nil, "admin"), errs.ErrMissingRole))
	assert.True(t, errs.Is(CheckRole(&Payload{}, "admin"), errs.ErrMissingRole))
	assert.True(t, errs.Is(CheckRole(&Payload{Role: "user"}, "admin"), errs.ErrForbidden))
	assert.NoError(t, CheckRole(&Payload{Role: "user"}, "admin", "user"))
}
