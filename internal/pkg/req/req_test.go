package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduplatform/internal/pkg/errs"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func newJSONRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantCode    int
	}{
		{"ok", `{"username":"alice","password":"pw123"}`, "application/json", 0},
		{"charset suffix", `{"username":"alice"}`, "application/json; charset=utf-8", 0},
		{"wrong content type", `{"username":"alice"}`, "text/plain", errs.ErrUnsupportedMediaType},
		{"syntax error", `{"username":`, "application/json", errs.ErrInvalidJSONFormat},
		{"unknown field", `{"username":"alice","isAdmin":true}`, "application/json", errs.ErrInvalidJSONFormat},
		{"trailing data", `{"username":"alice"} {"x":1}`, "application/json", errs.ErrExtraContentInBody},
		{"too large", `{"username":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`, "application/json", errs.ErrRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst loginBody
			err := BindJSON(httptest.NewRecorder(), newJSONRequest(tt.body, tt.contentType), &dst)
			if tt.wantCode == 0 {
				require.Nil(t, err)
				assert.Equal(t, "alice", dst.Username)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr *errs.CustomError
	r.Get("/courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathID(r, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/42", nil))
	assert.Nil(t, gotErr)
	assert.Equal(t, int64(42), got)

	for _, bad := range []string{"0", "-3", "abc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/"+bad, nil))
		require.NotNil(t, gotErr, bad)
		assert.Equal(t, errs.ErrInvalidParams, gotErr.Code)
	}
}

func TestQueryInt(t *testing.T) {
	v, err := QueryInt(httptest.NewRequest(http.MethodGet, "/?limit=10", nil), "limit", 50)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), v)

	v, err = QueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 50)
	assert.Nil(t, err)
	assert.Equal(t, int64(50), v)

	_, err = QueryInt(httptest.NewRequest(http.MethodGet, "/?limit=-1", nil), "limit", 50)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)
}
