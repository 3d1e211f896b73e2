/*
Package client is a typed Go client for the education platform API together
with the client-side state it keeps: a session that re-authenticates with
remembered credentials, an explicit State cache, and Follow, which reconciles
chat history with the live websocket stream.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/news"
	"eduplatform/internal/app/user"
)

// ErrStreamClosed is returned by Follow when the server closes the stream.
var ErrStreamClosed = errors.New("chat stream closed")

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Session is the result of register, login and refresh.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	ID        int64      `json:"id"`
	User      *user.User `json:"user,omitempty"`
}

type credentials struct {
	username, password string
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.Mutex
	token string
	creds *credentials
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL (e.g. http://localhost:5000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Logout forgets the token and the remembered credentials.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.creds = nil
}

func (c *Client) setSession(token string, creds *credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	if creds != nil {
		c.creds = creds
	}
}

// request performs one call. With authed set, the bearer token is attached
// and a 401 triggers a single re-login with remembered credentials followed
// by one retry. Without credentials the 401 is returned as is.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	err := c.send(ctx, method, path, query, body, out, authed)
	if !authed || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	c.mu.Lock()
	creds := c.creds
	c.mu.Unlock()
	if creds == nil {
		return err
	}

	if _, loginErr := c.Login(ctx, creds.username, creds.password); loginErr != nil {
		return loginErr
	}
	return c.send(ctx, method, path, query, body, out, authed)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	r, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", res.StatusCode, err)
	}

	if res.StatusCode >= 300 {
		return &APIError{Status: res.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Auth

// Register creates an account and keeps the returned session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.request(ctx, http.MethodPost, "/api/register", nil, body, &s, false); err != nil {
		return nil, err
	}
	c.setSession(s.Token, &credentials{username, password})
	return &s, nil
}

// Login authenticates and remembers the credentials for re-login on 401.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/login", nil, body, &s, false); err != nil {
		return nil, err
	}
	c.setSession(s.Token, &credentials{username, password})
	return &s, nil
}

// Refresh trades the current token for a new one.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.request(ctx, http.MethodPost, "/api/token/refresh", nil, nil, &s, true); err != nil {
		return nil, err
	}
	c.setSession(s.Token, nil)
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	err := c.request(ctx, http.MethodGet, "/api/me", nil, nil, &out, true)
	return out.User, err
}

func (c *Client) UpdateAvatar(ctx context.Context, avatar string) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	err := c.request(ctx, http.MethodPut, "/api/me/avatar", nil, map[string]string{"avatar": avatar}, &out, true)
	return out.User, err
}

// Users (admin)

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	var out []user.User
	err := c.request(ctx, http.MethodGet, "/api/users", nil, nil, &out, true)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/api/users/"+itoa(id), nil, nil, nil, true)
}

// Courses

func (c *Client) ListCourses(ctx context.Context, category course.Category) ([]course.Course, error) {
	var q url.Values
	if category != "" {
		q = url.Values{"category": {string(category)}}
	}
	var out []course.Course
	err := c.request(ctx, http.MethodGet, "/api/courses", q, nil, &out, false)
	return out, err
}

func (c *Client) GetCourse(ctx context.Context, id int64) (course.Course, error) {
	var out course.Course
	err := c.request(ctx, http.MethodGet, "/api/courses/"+itoa(id), nil, nil, &out, false)
	return out, err
}

// CourseInput is the body of course create and update calls. For updates,
// nil fields are left unchanged and an empty list clears it.
type CourseInput struct {
	Title       *string          `json:"title,omitempty"`
	Category    *course.Category `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	VideoURL    *string          `json:"video_url,omitempty"`
	Syllabus    []string         `json:"syllabus"`
	Instructors []string         `json:"instructors"`
}

func (c *Client) CreateCourse(ctx context.Context, in CourseInput) (course.Course, error) {
	var out course.Course
	err := c.request(ctx, http.MethodPost, "/api/courses", nil, in, &out, true)
	return out, err
}

func (c *Client) UpdateCourse(ctx context.Context, id int64, in CourseInput) (course.Course, error) {
	var out course.Course
	err := c.request(ctx, http.MethodPut, "/api/courses/"+itoa(id), nil, in, &out, true)
	return out, err
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/api/courses/"+itoa(id), nil, nil, nil, true)
}

func (c *Client) SaveCourse(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodPost, "/api/courses/"+itoa(id)+"/save", nil, nil, nil, true)
}

func (c *Client) UnsaveCourse(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/api/courses/"+itoa(id)+"/save", nil, nil, nil, true)
}

func (c *Client) EnrollCourse(ctx context.Context, id int64) (course.Course, error) {
	var out course.Course
	err := c.request(ctx, http.MethodPost, "/api/courses/"+itoa(id)+"/enroll", nil, nil, &out, true)
	return out, err
}

func (c *Client) RateCourse(ctx context.Context, id int64, rating int) (course.Course, error) {
	var out course.Course
	err := c.request(ctx, http.MethodPost, "/api/courses/"+itoa(id)+"/rating", nil, map[string]int{"rating": rating}, &out, true)
	return out, err
}

func (c *Client) MyCourses(ctx context.Context) (course.MyCourses, error) {
	var out course.MyCourses
	err := c.request(ctx, http.MethodGet, "/api/me/courses", nil, nil, &out, true)
	return out, err
}

// News

func (c *Client) ListNews(ctx context.Context) ([]news.Item, error) {
	var out []news.Item
	err := c.request(ctx, http.MethodGet, "/api/news", nil, nil, &out, false)
	return out, err
}

func (c *Client) CreateNews(ctx context.Context, title, content string) (news.Item, error) {
	var out news.Item
	err := c.request(ctx, http.MethodPost, "/api/news", nil, map[string]string{"title": title, "content": content}, &out, true)
	return out, err
}

func (c *Client) DeleteNews(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, "/api/news/"+itoa(id), nil, nil, nil, true)
}

// Chat

// ListMessages returns history newest first. limit 0 uses the server default;
// before 0 starts from the newest message.
func (c *Client) ListMessages(ctx context.Context, limit int, before int64) ([]chat.Message, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if before > 0 {
		q.Set("before", itoa(before))
	}
	var out []chat.Message
	err := c.request(ctx, http.MethodGet, "/api/chat_messages", q, nil, &out, false)
	return out, err
}

// PostMessage posts as the logged-in user, or as a guest when logged out.
func (c *Client) PostMessage(ctx context.Context, body string) (chat.Message, error) {
	var out chat.Message
	authed := c.Token() != ""
	err := c.request(ctx, http.MethodPost, "/api/chat_messages", nil, map[string]string{"message": body}, &out, authed)
	return out, err
}

// Subscribe opens the websocket stream. Messages arrive on the returned
// channel until ctx is cancelled or the connection drops; the channel is then
// closed and the connection released. Callers must cancel ctx to stop early. Only messages published after the handshake are delivered.
func (c *Client) Subscribe(ctx context.Context) (<-chan chat.Message, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/ws"
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if res != nil {
			return nil, &APIError{Status: res.StatusCode, Message: err.Error()}
		}
		return nil, err
	}

	out := make(chan chat.Message, 64)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	go func() {
		defer close(out)
		defer close(done)
		for {
			var ev chat.InboundEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			if ev.Event != chat.EventMessage {
				continue
			}
			var msg chat.Message
			if err := json.Unmarshal(ev.Data, &msg); err != nil {
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
