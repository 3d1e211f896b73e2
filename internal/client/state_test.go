package client

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/user"
)

func msgAt(id int64, at time.Time, body string) chat.Message {
	return chat.Message{ID: id, Message: body, CreatedAt: at}
}

func ids(msgs []chat.Message) []int64 {
	out := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestMergeMessagesOrdersAndDedupes(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var s State

	// history arrives newest first
	added := s.MergeMessages(msgAt(3, base.Add(2*time.Second), "c"), msgAt(2, base, "b"), msgAt(1, base, "a"))
	assert.Equal(t, []int64{1, 2, 3}, ids(added))

	added = s.MergeMessages(msgAt(3, base.Add(2*time.Second), "c"), msgAt(4, base.Add(time.Second), "d"))
	assert.Equal(t, []int64{4}, ids(added))
	assert.Equal(t, []int64{1, 2, 4, 3}, ids(s.Messages()))

	assert.Nil(t, s.MergeMessages(msgAt(1, base, "a")))
}

func TestStateSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	empty, err := LoadState(path)
	require.NoError(t, err)
	assert.Empty(t, empty.Messages())

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var s State
	s.SetSession("tok", &user.User{ID: 7, Username: "alice", Role: user.RoleUser})
	s.MergeMessages(msgAt(2, base.Add(time.Second), "b"), msgAt(1, base, "a"))
	require.NoError(t, s.Save(path))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token())
	require.NotNil(t, loaded.Me())
	assert.Equal(t, "alice", loaded.Me().Username)
	assert.Equal(t, []int64{1, 2}, ids(loaded.Messages()))
}

func TestFollowMergesHistoryAndLive(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poster := newClient(t, srv)
	_, err := poster.PostMessage(ctx, "before")
	require.NoError(t, err)

	follower := newClient(t, srv)
	var state State
	seen := make(chan chat.Message, 8)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, follower, &state, func(m chat.Message) { seen <- m })
	}()

	first := <-seen
	assert.Equal(t, "before", first.Message)

	require.Eventually(t, func() bool { return srv.hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	_, err = poster.PostMessage(ctx, "after")
	require.NoError(t, err)

	select {
	case m := <-seen:
		assert.Equal(t, "after", m.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("live message not delivered")
	}
	assert.Len(t, state.Messages(), 2)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("history unavailable")
}

func TestFollowReleasesStreamWhenHistoryFails(t *testing.T) {
	srv := newTestServer(t)

	c, err := New(srv.URL, WithHTTPClient(&http.Client{Transport: failingTransport{}}))
	require.NoError(t, err)

	var state State
	err = Follow(context.Background(), c, &state, nil)
	require.ErrorContains(t, err, "history unavailable")

	assert.Eventually(t, func() bool { return srv.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, state.Messages())
}

func TestFollowEndsWhenServerCloses(t *testing.T) {
	srv := newTestServer(t)
	follower := newClient(t, srv)

	var state State
	done := make(chan error, 1)
	go func() {
		done <- Follow(context.Background(), follower, &state, nil)
	}()

	require.Eventually(t, func() bool { return srv.hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	srv.hub.Shutdown()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after the server closed the stream")
	}
}
