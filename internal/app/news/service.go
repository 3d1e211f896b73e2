package news

import (
	"context"
	"errors"
	"strings"

	"eduplatform/internal/app/db"
	"eduplatform/internal/pkg/errs"
)

type Store interface {
	ListNews(ctx context.Context) ([]Item, error)
	CreateNews(ctx context.Context, title, content string) (Item, error)
	DeleteNews(ctx context.Context, id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.ListNews(ctx)
}

func (s *Service) Create(ctx context.Context, title, content string) (Item, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return Item{}, errs.NewError(errs.ErrInvalidParams)
	}
	return s.store.CreateNews(ctx, title, content)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteNews(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewError(errs.ErrNewsNotFound)
	}
	return err
}
