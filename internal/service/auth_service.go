package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sso-backend/internal/domain"
	"sso-backend/internal/repository"
)

const (
	// TokenTypeBearer is the token_type reported to clients.
	TokenTypeBearer = "bearer"

	DefaultListLimit = 10
	MaxListLimit     = 100
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService mints and validates access tokens keyed on a subject.
type TokenService interface {
	Issue(subject string, now time.Time) (string, error)
	Verify(token string, now time.Time) (string, error)
	TTL() time.Duration
}

// AccessToken is the result of a successful sign-in.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// AuthService describes the account and sign-in operations.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*AccessToken, error)
	LoginExternal(ctx context.Context, identity *domain.ExternalUser) (*AccessToken, error)
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)
}

// Config carries the collaborators of the auth service.
type Config struct {
	Users  repository.UserRepository
	Hasher PasswordHasher
	Tokens TokenService
	Logger *logrus.Logger
	Now    func() time.Time
}

type authService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenService
	logger *logrus.Logger
	now    func() time.Time

	// compared against when no usable hash exists so failed logins cost the same
	decoyHash string
}

func NewAuthService(cfg Config) (AuthService, error) {
	if cfg.Users == nil || cfg.Hasher == nil || cfg.Tokens == nil {
		return nil, errors.New("auth service requires users, hasher and tokens")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	decoy, err := cfg.Hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}

	return &authService{
		users:     cfg.Users,
		hasher:    cfg.Hasher,
		tokens:    cfg.Tokens,
		logger:    cfg.Logger,
		now:       cfg.Now,
		decoyHash: decoy,
	}, nil
}

func (s *authService) Register(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" {
		return nil, invalid("email", "is required")
	}
	if password == "" {
		return nil, invalid("password", "is required")
	}
	if fullName == "" {
		return nil, invalid("full_name", "is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateLocal(ctx, email, hash, fullName)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "provider": user.Provider}).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		s.hasher.Verify(password, s.decoyHash)
		return nil, ErrInvalidCredentials
	}

	if !user.HasPassword() {
		s.hasher.Verify(password, s.decoyHash)
		s.logger.WithFields(logrus.Fields{"user_id": user.ID, "provider": user.Provider}).Debug("password login against external account")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) LoginExternal(ctx context.Context, identity *domain.ExternalUser) (*AccessToken, error) {
	if identity == nil || strings.TrimSpace(identity.Email) == "" {
		return nil, invalid("email", "is required")
	}
	if identity.Provider == "" || identity.Provider == domain.ProviderLocal {
		return nil, invalid("provider", "must be an external provider")
	}
	email := strings.TrimSpace(identity.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.CreateExternal(ctx, email, strings.TrimSpace(identity.FullName), identity.Provider)
		if errors.Is(err, repository.ErrAlreadyExists) {
			// lost a race with a concurrent first sign-in
			user, err = s.users.FindByEmail(ctx, email)
		} else if err == nil {
			s.logger.WithFields(logrus.Fields{"user_id": user.ID, "provider": user.Provider}).Info("external user provisioned")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve external user: %w", err)
	}

	return s.issue(user)
}

// ResolveToken validates a bearer token and loads the account it names.
func (s *authService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Verify(token, s.now())
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("token subject has no account")
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	return sanitizeUser(user), nil
}

func (s *authService) ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if skip < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxListLimit))
	}

	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *authService) issue(user *domain.User) (*AccessToken, error) {
	now := s.now()
	token, err := s.tokens.Issue(user.Email, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AccessToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
