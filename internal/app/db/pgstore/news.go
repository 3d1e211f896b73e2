package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"eduplatform/internal/app/db"
	"eduplatform/internal/app/news"
)

func (s *Store) ListNews(ctx context.Context) ([]news.Item, error) {
	rows, err := s.db.Query(ctx, `SELECT id, title, content, created_at FROM news ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[news.Item])
}

func (s *Store) CreateNews(ctx context.Context, title, content string) (news.Item, error) {
	rows, err := s.db.Query(ctx, `
INSERT INTO news (title, content) VALUES ($1, $2)
RETURNING id, title, content, created_at`, title, content)
	if err != nil {
		return news.Item{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[news.Item])
}

func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
