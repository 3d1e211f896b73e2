package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"eduplatform/internal/app/db"
	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/logx"
)

// Store persists chat messages.
type Store interface {
	// InsertMessage stores body and returns the row hydrated with the author's
	// display fields. authorID nil means a guest message.
	InsertMessage(ctx context.Context, authorID *int64, body string) (Message, error)

	// ListMessages returns up to limit messages newest first, all with an id
	// below before when before > 0.
	ListMessages(ctx context.Context, limit int, before int64) ([]Message, error)
}

// Publisher pushes a persisted message to live viewers.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Service is the persistence-then-broadcast path for chat messages.
type Service struct {
	store     Store
	publisher Publisher
	logger    zerolog.Logger
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logx.Component("chat"),
	}
}

// PostMessage trims and stores body, publishes the stored message, and returns
// it. Nothing is published when the insert fails; a publish failure is logged
// and does not fail the call.
func (s *Service) PostMessage(ctx context.Context, authorID *int64, body string) (Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, errs.NewError(errs.ErrEmptyMessage)
	}
	if len(body) > MaxContentBytes {
		return Message{}, errs.NewError(errs.ErrMessageContentTooLong)
	}

	msg, err := s.store.InsertMessage(ctx, authorID, body)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || db.IsForeignKeyViolation(err) {
			return Message{}, errs.NewError(errs.ErrUserNotFound)
		}
		return Message{}, err
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("Failed to publish chat message")
	}

	return msg, nil
}

// ListMessages clamps limit to 1..MaxHistoryLimit (0 means the default).
func (s *Service) ListMessages(ctx context.Context, limit int, before int64) ([]Message, error) {
	switch {
	case limit == 0:
		limit = DefaultHistoryLimit
	case limit < 0:
		return nil, errs.NewError(errs.ErrInvalidParams)
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	if before < 0 {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	return s.store.ListMessages(ctx, limit, before)
}
