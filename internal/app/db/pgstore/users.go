package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"eduplatform/internal/app/db"
	"eduplatform/internal/app/user"
)

const userColumns = `id, username, email, role, COALESCE(avatar, '') AS avatar, created_at`

const createUser = `
INSERT INTO users (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

// CreateUser inserts an account. Duplicate usernames or emails surface as a unique violation.
func (s *Store) CreateUser(ctx context.Context, arg user.CreateParams) (user.User, error) {
	rows, err := s.db.Query(ctx, createUser, arg.Username, arg.Email, arg.PasswordHash, string(arg.Role))
	if err != nil {
		return user.User{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[user.User])
}

const getAccountByUsername = `
SELECT ` + userColumns + `, password_hash
FROM users
WHERE username = $1`

// GetUserByUsername returns the account with its password hash, or db.ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.Account, error) {
	rows, err := s.db.Query(ctx, getAccountByUsername, username)
	if err != nil {
		return user.Account{}, err
	}
	account, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[user.Account])
	return account, db.NotFound(err)
}

const getAccountByID = `
SELECT ` + userColumns + `, password_hash
FROM users
WHERE id = $1`

// GetUserByID returns the account with its password hash, or db.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (user.Account, error) {
	rows, err := s.db.Query(ctx, getAccountByID, id)
	if err != nil {
		return user.Account{}, err
	}
	account, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[user.Account])
	return account, db.NotFound(err)
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id`

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[user.User])
}

const updateUserAvatar = `
UPDATE users SET avatar = NULLIF($2, '')
WHERE id = $1
RETURNING ` + userColumns

func (s *Store) UpdateUserAvatar(ctx context.Context, id int64, avatar string) (user.User, error) {
	rows, err := s.db.Query(ctx, updateUserAvatar, id, avatar)
	if err != nil {
		return user.User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[user.User])
	return u, db.NotFound(err)
}

// DeleteUser removes the account; messages and join rows go with it through ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
