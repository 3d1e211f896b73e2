/*
Package memdb is an in-memory implementation of every store interface. It mirrors
the Postgres schema's constraints (unique keys, cascades, foreign keys) closely
enough to back local development (DATABASE_URL=memory://) and package tests.
*/
package memdb

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/db"
	"eduplatform/internal/app/news"
	"eduplatform/internal/app/user"
)

type pair struct {
	userID, courseID int64
}

// Store holds all tables behind one mutex.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	nextID   map[string]int64
	users    map[int64]user.Account
	messages []chat.Message
	courses  map[int64]course.Course
	news     map[int64]news.Item

	saved    map[pair]time.Time
	enrolled map[pair]time.Time
	ratings  map[pair]int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:      time.Now,
		nextID:   make(map[string]int64),
		users:    make(map[int64]user.Account),
		courses:  make(map[int64]course.Course),
		news:     make(map[int64]news.Item),
		saved:    make(map[pair]time.Time),
		enrolled: make(map[pair]time.Time),
		ratings:  make(map[pair]int),
	}
}

// WithClock replaces the timestamp source. Call before use.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Users

func (s *Store) CreateUser(_ context.Context, arg user.CreateParams) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if a.Username == arg.Username {
			return user.User{}, db.UniqueViolation("users_username_key")
		}
		if a.Email == arg.Email {
			return user.User{}, db.UniqueViolation("users_email_key")
		}
	}

	role := arg.Role
	if role == "" {
		role = user.RoleUser
	}

	u := user.User{
		ID:        s.id("users"),
		Username:  arg.Username,
		Email:     arg.Email,
		Role:      role,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = user.Account{User: u, PasswordHash: arg.PasswordHash}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.users {
		if a.Username == username {
			return a, nil
		}
	}
	return user.Account{}, db.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id int64) (user.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.users[id]
	if !ok {
		return user.Account{}, db.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.User)
	}
	slices.SortFunc(out, func(a, b user.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) UpdateUserAvatar(_ context.Context, id int64, avatar string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.users[id]
	if !ok {
		return user.User{}, db.ErrNotFound
	}
	a.Avatar = avatar
	s.users[id] = a
	return a.User, nil
}

// DeleteUser cascades to the user's messages and join rows.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.users, id)

	s.messages = slices.DeleteFunc(s.messages, func(m chat.Message) bool {
		return m.UserID != nil && *m.UserID == id
	})
	for _, rel := range []map[pair]time.Time{s.saved, s.enrolled} {
		for k := range rel {
			if k.userID == id {
				delete(rel, k)
			}
		}
	}
	for k := range s.ratings {
		if k.userID == id {
			delete(s.ratings, k)
		}
	}
	s.recountLocked()
	return nil
}

// Chat

func (s *Store) InsertMessage(_ context.Context, authorID *int64, body string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := chat.Message{
		ID:        s.id("chat_messages"),
		Message:   body,
		CreatedAt: s.now(),
	}

	if authorID != nil {
		author, ok := s.users[*authorID]
		if !ok {
			return chat.Message{}, db.ErrNotFound
		}
		uid := *authorID
		m.UserID = &uid
		m.Username = &author.Username
		if author.Avatar != "" {
			avatar := author.Avatar
			m.Avatar = &avatar
		}
	}

	s.messages = append(s.messages, m)
	return m, nil
}

// ListMessages returns newest first; before = 0 disables the cursor.
func (s *Store) ListMessages(_ context.Context, limit int, before int64) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Message, 0, limit)
	for _, m := range s.messages {
		if before == 0 || m.ID < before {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b chat.Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// News

func (s *Store) ListNews(_ context.Context) ([]news.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]news.Item, 0, len(s.news))
	for _, n := range s.news {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b news.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) CreateNews(_ context.Context, title, content string) (news.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := news.Item{ID: s.id("news"), Title: title, Content: content, CreatedAt: s.now()}
	s.news[n.ID] = n
	return n, nil
}

func (s *Store) DeleteNews(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.news, id)
	return nil
}
