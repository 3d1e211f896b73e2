package client

import (
	"context"

	"eduplatform/internal/app/chat"
)

// Follow keeps state in sync with the chat room until ctx is done or the
// stream drops. It subscribes before reading history so nothing posted in
// between is missed; the overlap is removed by id. onMessage, if set, is
// called once per newly seen message in display order.
func Follow(ctx context.Context, c *Client, state *State, onMessage func(chat.Message)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	live, err := c.Subscribe(ctx)
	if err != nil {
		return err
	}

	history, err := c.ListMessages(ctx, 0, 0)
	if err != nil {
		return err
	}
	emit(state.MergeMessages(history...), onMessage)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-live:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrStreamClosed
			}
			emit(state.MergeMessages(msg), onMessage)
		}
	}
}

func emit(msgs []chat.Message, fn func(chat.Message)) {
	if fn == nil {
		return
	}
	for _, m := range msgs {
		fn(m)
	}
}
