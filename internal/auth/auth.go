package auth

import (
	"context"
	"errors"

	"benchshare/internal/models"
	"benchshare/internal/session"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists is returned when registering a taken username.
var ErrUserExists = errors.New("user already exists")

// Service provides authentication-related services.
type Service struct {
	Repo     *Repository
	Sessions session.Store
}

// NewService creates a new authentication service.
func NewService(repo *Repository, sessions session.Store) *Service {
	return &Service{Repo: repo, Sessions: sessions}
}

// RegisterUser creates a new local user.
func (s *Service) RegisterUser(ctx context.Context, username, displayName, password string, admin bool) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	if _, err := s.Repo.FindUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}
	if displayName == "" {
		displayName = username
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordHash := string(hashedPassword)

	user := &models.User{
		Username:    username,
		DisplayName: displayName,
		Admin:       admin,
	}
	identity := &models.Identity{
		Provider:       "local",
		ProviderUserID: username,
		PasswordHash:   &passwordHash,
	}

	if err := s.Repo.CreateUser(ctx, user, identity); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the password of a local user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	identity, err := s.Repo.FindIdentityByProvider(ctx, "local", username)
	if err != nil || identity.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login binds an authenticated user to the session. The id must be freshly
// issued by session.Manager.Renew.
func (s *Service) Login(ctx context.Context, sessionID string, user *models.User) error {
	if err := s.Sessions.Set(ctx, sessionID, session.ValueUser, user.ID); err != nil {
		return err
	}
	return s.Sessions.Set(ctx, sessionID, session.ValueAdmin, user.Admin)
}

// Logout removes the user from the session. Ownership marks stay.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.Sessions.Set(ctx, sessionID, session.ValueUser, int64(0)); err != nil {
		return err
	}
	return s.Sessions.Set(ctx, sessionID, session.ValueAdmin, false)
}
