/*
Package user contains the account data structures shared by the auth service,
the resource handlers and the persistence layer.
*/
package user

import "time"

// Role is the authorization role stored on an account and embedded in tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the public profile of an account. It never carries the password hash.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	Avatar    string    `json:"avatar,omitempty" db:"avatar"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account is a stored credential record: the profile plus its password hash.
type Account struct {
	User
	PasswordHash string `db:"password_hash"`
}

// CreateParams holds the fields needed to insert a new account.
type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}
