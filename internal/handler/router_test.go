package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"eduplatform/internal/app/auth"
	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/db/memdb"
	"eduplatform/internal/app/news"
	"eduplatform/internal/configs"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/limiter"
)

type testEnv struct {
	handler http.Handler
	deps    *AppDeps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memdb.New()
	hub := chat.NewHub(nil)
	authSvc := auth.NewService(store, jwt.NewIssuer("test-secret"), auth.WithHashCost(bcrypt.MinCost))
	require.NoError(t, authSvc.BootstrapAdmin(ctx, "root", "root@x.com", "rootpw"))

	deps := &AppDeps{
		Config:      &configs.AppConfig{Environment: "development"},
		Auth:        authSvc,
		Chat:        chat.NewService(store, hub),
		Hub:         hub,
		Courses:     course.NewService(store),
		News:        news.NewService(store),
		ChatLimiter: limiter.NewIPRateLimiter(ctx, rate.Inf, 1),
		JoinLimiter: limiter.NewIPRateLimiter(ctx, rate.Inf, 1),
	}
	return &testEnv{handler: Router(deps), deps: deps}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/login", "", LoginInput{Username: username, Password: password})
	require.Equal(t, http.StatusOK, code)
	var out sessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.Token
}

func TestRegisterLoginScenario(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/register", "", RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.Equal(t, http.StatusCreated, code)
	var registered sessionResponse
	require.NoError(t, json.Unmarshal(body.Data, &registered))
	assert.NotEmpty(t, registered.Token)
	assert.NotZero(t, registered.ID)

	code, body = env.do(t, http.MethodPost, "/api/login", "", LoginInput{Username: "alice", Password: "pw123"})
	require.Equal(t, http.StatusOK, code)
	var loggedIn sessionResponse
	require.NoError(t, json.Unmarshal(body.Data, &loggedIn))
	require.NotNil(t, loggedIn.User)
	assert.Equal(t, "alice", loggedIn.User.Username)

	claims, err := env.deps.Auth.ValidateToken(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)

	code, body = env.do(t, http.MethodGet, "/api/users", loggedIn.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, errs.ErrForbidden, body.Code)

	code, body = env.do(t, http.MethodPost, "/api/register", "", RegisterInput{Username: "alice", Email: "a2@x.com", Password: "pw456"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, errs.ErrUserAlreadyExists, body.Code)
}

func TestAuthErrorsMapToStatus(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/register", "", RegisterInput{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/login", "", LoginInput{Username: "nobody", Password: "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body := env.do(t, http.MethodPost, "/api/login", "", LoginInput{Username: "root", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, errs.ErrInvalidCredentials, body.Code)

	code, body = env.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, errs.ErrMissingToken, body.Code)

	code, body = env.do(t, http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, errs.ErrInvalidToken, body.Code)
}

func TestAdminCatalogFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "root", "rootpw")

	code, body := env.do(t, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"username":"root"`)

	input := CreateCourseInput{
		Title:       "Go Basics",
		Category:    course.CategoryIT,
		Description: "Learn Go.",
		VideoURL:    "https://videos.example.com/go",
		Syllabus:    []string{"Types", "Concurrency"},
		Instructors: []string{"Rob"},
	}
	code, body = env.do(t, http.MethodPost, "/api/courses", admin, input)
	require.Equal(t, http.StatusCreated, code)
	var created course.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	code, _ = env.do(t, http.MethodGet, "/api/courses?category=IT%20%26%20Software", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodPut, "/api/courses/"+itoa(created.ID), admin, map[string]any{"title": "Go Fundamentals"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), "Go Fundamentals")

	code, _ = env.do(t, http.MethodPost, "/api/news", admin, CreateNewsInput{Title: "Hello", Content: "World"})
	assert.Equal(t, http.StatusCreated, code)

	code, _ = env.do(t, http.MethodDelete, "/api/courses/"+itoa(created.ID), admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = env.do(t, http.MethodDelete, "/api/courses/"+itoa(created.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, errs.ErrCourseNotFound, body.Code)
}

func TestStudentCourseActions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "root", "rootpw")

	code, body := env.do(t, http.MethodPost, "/api/courses", admin, CreateCourseInput{
		Title: "Film", Category: course.CategoryMedia, Description: "d", VideoURL: "https://v.example.com/f",
	})
	require.Equal(t, http.StatusCreated, code)
	var c course.Course
	require.NoError(t, json.Unmarshal(body.Data, &c))
	path := "/api/courses/" + itoa(c.ID)

	code, _ = env.do(t, http.MethodPost, "/api/register", "", RegisterInput{Username: "bob", Email: "b@x.com", Password: "pw"})
	require.Equal(t, http.StatusCreated, code)
	bob := env.login(t, "bob", "pw")

	code, _ = env.do(t, http.MethodPost, "/api/courses", bob, CreateCourseInput{Title: "x"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = env.do(t, http.MethodPost, path+"/enroll", bob, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodPost, path+"/save", bob, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = env.do(t, http.MethodPost, path+"/rating", bob, RateCourseInput{Rating: 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errs.ErrRatingOutOfRange, body.Code)

	code, body = env.do(t, http.MethodGet, "/api/me/courses", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var mine course.MyCourses
	require.NoError(t, json.Unmarshal(body.Data, &mine))
	assert.Len(t, mine.Saved, 1)
	assert.Len(t, mine.Enrolled, 1)
}

func TestChatPostAndList(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "root", "rootpw")

	code, body := env.do(t, http.MethodPost, "/api/chat_messages", "", PostMessageInput{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errs.ErrEmptyMessage, body.Code)

	code, _ = env.do(t, http.MethodPost, "/api/chat_messages", "", PostMessageInput{Message: "from a guest"})
	assert.Equal(t, http.StatusCreated, code)

	code, body = env.do(t, http.MethodPost, "/api/chat_messages", admin, PostMessageInput{Message: "from root"})
	require.Equal(t, http.StatusCreated, code)
	var msg chat.Message
	require.NoError(t, json.Unmarshal(body.Data, &msg))
	require.NotNil(t, msg.Username)
	assert.Equal(t, "root", *msg.Username)

	code, _ = env.do(t, http.MethodPost, "/api/chat_messages", "bad-token", PostMessageInput{Message: "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = env.do(t, http.MethodGet, "/api/chat_messages?limit=1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var msgs []chat.Message
	require.NoError(t, json.Unmarshal(body.Data, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "from root", msgs[0].Message)
}

func TestWebSocketReceivesPostedMessage(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.deps.Hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	code, _ := env.do(t, http.MethodPost, "/api/chat_messages", "", PostMessageInput{Message: "hello"})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Event string       `json:"event"`
		Data  chat.Message `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, chat.EventMessage, ev.Event)
	assert.Equal(t, "hello", ev.Data.Message)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestChatLimiterIgnoresForwardedHeaders(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	env.deps.ChatLimiter = limiter.NewIPRateLimiter(ctx, rate.Every(time.Hour), 1)
	h := Router(env.deps)

	post := func(forwardedFor string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/chat_messages", strings.NewReader(`{"message":"hi"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.2"))
}
