package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/globaltime"
)

const MinPasswordLength = 6

// UserStore is the persistence the auth service needs.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*db.UserRecord, error)
	CreateUser(ctx context.Context, record db.UserRecord) error
}

// Principal is the identity carried by a verified token.
type Principal struct {
	UserID string
	Email  string
}

// Session is returned by Register and Login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      db.PublicUser
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type Service struct {
	store  UserStore
	tokens *TokenIssuer
	hasher string
	logger zerolog.Logger
}

func NewService(store UserStore, tokens *TokenIssuer, hasher string, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		hasher: normalizeScheme(hasher),
		logger: logger,
	}
}

func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation("Passwords do not match")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	hash, err := HashPassword(in.Password, s.hasher)
	if err != nil {
		return nil, apperr.Internal("could not create user", err)
	}

	record := db.UserRecord{
		ID:           UserID(in.Email),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    globaltime.Local().Format("2006-01-02T15:04:05.000000"),
	}
	if err := s.store.CreateUser(ctx, record); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, apperr.Internal("could not create user", err)
	}

	s.logger.Info().Str("user_id", record.ID).Msg("user registered")
	return s.newSession(record)
}

// Login returns the same error for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password required")
	}

	record, err := s.store.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Internal("could not load user", err)
	}
	if record == nil || !VerifyPassword(password, record.PasswordHash) {
		return nil, apperr.Auth("Invalid credentials")
	}

	return s.newSession(*record)
}

// Verify checks a raw token and returns its principal.
func (s *Service) Verify(token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.Auth("Token is missing")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperr.Auth("Token has expired")
		}
		return nil, apperr.Auth("Token is invalid")
	}
	return &Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

// CurrentUser loads the public profile for a verified principal.
func (s *Service) CurrentUser(ctx context.Context, principal *Principal) (*db.PublicUser, error) {
	if principal == nil {
		return nil, apperr.Auth("Token is missing")
	}
	record, err := s.store.FindUserByEmail(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("could not load user", err)
	}
	user := record.Public()
	return &user, nil
}

func (s *Service) newSession(record db.UserRecord) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(record.ID, record.Email)
	if err != nil {
		return nil, apperr.Internal("could not issue token", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      record.Public(),
	}, nil
}
