/*
Package auth implements credential verification and the session token lifecycle.

The Service owns registration, login, token issuance and validation, the role
check used by the HTTP gate, and the small set of account operations that sit
next to them (profile, avatar, admin bootstrap).
*/
package auth

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"eduplatform/internal/app/db"
	"eduplatform/internal/app/user"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/logx"
)

const (
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72

	maxAvatarURLLength = 2048
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// Store is the credential store the service reads and writes.
type Store interface {
	CreateUser(ctx context.Context, arg user.CreateParams) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.Account, error)
	GetUserByID(ctx context.Context, id int64) (user.Account, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUserAvatar(ctx context.Context, id int64, avatar string) (user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"-"`
}

// Session is a freshly issued token together with the account it belongs to.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      user.User `json:"user"`
}

// Service is the Auth Service. It is safe for concurrent use.
type Service struct {
	store    Store
	issuer   *jwt.Issuer
	hashCost int
	logger   zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService builds a Service on top of store, signing tokens with issuer.
func NewService(store Store, issuer *jwt.Issuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		issuer:   issuer,
		hashCost: bcrypt.DefaultCost,
		logger:   logx.Component("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator exposes the token validator for the HTTP middleware.
func (s *Service) Validator() jwt.Validator {
	return s.issuer
}

func validateRegistration(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if !usernameRegex.MatchString(in.Username) {
		return errs.NewError(errs.ErrInvalidUsername)
	}

	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return errs.NewError(errs.ErrInvalidEmail)
	}

	if in.Password == "" || len(in.Password) > MaxPasswordBytes {
		return errs.NewError(errs.ErrInvalidPassword)
	}

	if in.Role == "" {
		in.Role = user.RoleUser
	}
	if !in.Role.Valid() {
		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}

// Register creates an account and signs its first session token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	u, err := s.store.CreateUser(ctx, user.CreateParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			s.logger.Warn().Str("username", in.Username).Msg("Registration conflict")
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("User registered")

	return s.IssueToken(u)
}

// Login checks username and password and returns a new session.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	account, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("username", username).Msg("Password mismatch")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	return s.IssueToken(account.User)
}

// IssueToken signs a session token for u.
func (s *Service) IssueToken(u user.User) (*Session, error) {
	token, payload, err := s.issuer.Issue(u.ID, string(u.Role), u.Username, u.Email)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: time.Unix(payload.ExpiresAt, 0).UTC(),
		User:      u,
	}, nil
}

// ValidateToken verifies tokenString and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Payload, error) {
	return s.issuer.Validate(tokenString)
}

// RequireRole fails unless claims carry one of allowed.
func (s *Service) RequireRole(claims *jwt.Payload, allowed ...user.Role) error {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return jwt.CheckRole(claims, names...)
}

// Refresh issues a new token for the holder of a currently valid one. The
// account is re-read so a deleted user cannot keep extending a session.
func (s *Service) Refresh(ctx context.Context, claims *jwt.Payload) (*Session, error) {
	if claims == nil {
		return nil, errs.NewError(errs.ErrMissingToken)
	}

	account, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errs.NewError(errs.ErrInvalidToken)
		}
		return nil, err
	}

	return s.IssueToken(account.User)
}

// Profile returns the public profile of userID.
func (s *Service) Profile(ctx context.Context, userID int64) (user.User, error) {
	account, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return user.User{}, userNotFound(err)
	}
	return account.User, nil
}

// UpdateAvatar sets or clears (empty string) the avatar URL of userID.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, avatar string) (user.User, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar != "" {
		if len(avatar) > maxAvatarURLLength {
			return user.User{}, errs.NewError(errs.ErrInvalidParams)
		}
		u, err := url.ParseRequestURI(avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return user.User{}, errs.NewError(errs.ErrInvalidParams)
		}
	}

	u, err := s.store.UpdateUserAvatar(ctx, userID, avatar)
	if err != nil {
		return user.User{}, userNotFound(err)
	}
	return u, nil
}

// ListUsers returns every account ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// DeleteUser removes an account; its messages and course links go with it.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return userNotFound(err)
	}
	s.logger.Info().Int64("user_id", userID).Msg("User deleted")
	return nil
}

// BootstrapAdmin creates the configured admin account unless a user with that
// username already exists. An empty username disables it.
func (s *Service) BootstrapAdmin(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		s.logger.Debug().Str("username", username).Msg("Admin account already present")
		return nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	session, err := s.Register(ctx, RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", session.User.ID).Msg("Admin account created")
	return nil
}

func userNotFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewError(errs.ErrUserNotFound)
	}
	return err
}
