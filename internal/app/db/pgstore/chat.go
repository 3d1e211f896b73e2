package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"eduplatform/internal/app/chat"
)

// insertMessage inserts and hydrates in one statement, so the returned row
// always reflects what was committed.
const insertMessage = `
WITH inserted AS (
    INSERT INTO chat_messages (user_id, message)
    VALUES ($1, $2)
    RETURNING id, user_id, message, created_at
)
SELECT i.id, i.user_id, i.message, i.created_at, u.username, u.avatar
FROM inserted i
LEFT JOIN users u ON u.id = i.user_id`

func (s *Store) InsertMessage(ctx context.Context, authorID *int64, body string) (chat.Message, error) {
	rows, err := s.db.Query(ctx, insertMessage, authorID, body)
	if err != nil {
		return chat.Message{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[chat.Message])
}

// listMessages returns newest first; $2 = 0 disables the cursor.
const listMessages = `
SELECT m.id, m.user_id, m.message, m.created_at, u.username, u.avatar
FROM chat_messages m
LEFT JOIN users u ON u.id = m.user_id
WHERE $2::bigint = 0 OR m.id < $2
ORDER BY m.created_at DESC, m.id DESC
LIMIT $1`

func (s *Store) ListMessages(ctx context.Context, limit int, before int64) ([]chat.Message, error) {
	rows, err := s.db.Query(ctx, listMessages, limit, before)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[chat.Message])
}
