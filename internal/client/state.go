package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/news"
	"eduplatform/internal/app/user"
)

// State is the client-side cache of what the user has seen. Messages are kept
// oldest first, unique by id. The zero value is ready to use.
type State struct {
	mu sync.RWMutex

	token    string
	me       *user.User
	users    []user.User
	courses  []course.Course
	news     []news.Item
	messages []chat.Message
}

type stateFile struct {
	Token    string          `json:"token,omitempty"`
	Me       *user.User      `json:"me,omitempty"`
	Users    []user.User     `json:"users,omitempty"`
	Courses  []course.Course `json:"courses,omitempty"`
	News     []news.Item     `json:"news,omitempty"`
	Messages []chat.Message  `json:"messages,omitempty"`
}

func (s *State) SetSession(token string, me *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.me = me
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) Me() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.me == nil {
		return nil
	}
	me := *s.me
	return &me
}

func (s *State) SetUsers(users []user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = slices.Clone(users)
}

func (s *State) Users() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

func (s *State) SetCourses(courses []course.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = slices.Clone(courses)
}

func (s *State) Courses() []course.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.courses)
}

func (s *State) SetNews(items []news.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = slices.Clone(items)
}

func (s *State) News() []news.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.news)
}

// Messages returns the cached chat log, oldest first.
func (s *State) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// MergeMessages adds msgs in any order and returns the ones not seen before,
// oldest first. A message already cached by id is ignored.
func (s *State) MergeMessages(msgs ...chat.Message) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(s.messages))
	for _, m := range s.messages {
		seen[m.ID] = struct{}{}
	}

	var added []chat.Message
	for _, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		added = append(added, m)
	}
	if len(added) == 0 {
		return nil
	}

	slices.SortFunc(added, oldestFirst)
	s.messages = append(s.messages, added...)
	slices.SortStableFunc(s.messages, oldestFirst)
	return added
}

func oldestFirst(a, b chat.Message) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// Save writes the state as JSON, replacing path atomically.
func (s *State) Save(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(stateFile{
		Token:    s.token,
		Me:       s.me,
		Users:    s.users,
		Courses:  s.courses,
		News:     s.news,
		Messages: s.messages,
	}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadState reads a file written by Save. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var f stateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load state %s: %w", path, err)
	}

	s := &State{
		token:   f.Token,
		me:      f.Me,
		users:   f.Users,
		courses: f.Courses,
		news:    f.News,
	}
	s.MergeMessages(f.Messages...)
	return s, nil
}
