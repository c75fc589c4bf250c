package auth

import (
	"context"
	"database/sql"

	"benchshare/internal/models"
)

// Repository provides access to the authentication storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new authentication repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// FindUserByUsername finds a user by their username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, "SELECT id, username, display_name, admin FROM users WHERE username = ?", username).Scan(&user.ID, &user.Username, &user.DisplayName, &user.Admin)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindIdentityByProvider finds an identity by provider and provider user ID.
func (r *Repository) FindIdentityByProvider(ctx context.Context, provider, providerUserID string) (*models.Identity, error) {
	var identity models.Identity
	err := r.DB.QueryRowContext(ctx, "SELECT id, user_id, provider, provider_user_id, password_hash FROM identities WHERE provider = ? AND provider_user_id = ?", provider, providerUserID).Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID, &identity.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateUser creates a new user and a corresponding identity.
func (r *Repository) CreateUser(ctx context.Context, user *models.User, identity *models.Identity) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO users (username, display_name, admin) VALUES (?, ?, ?)", user.Username, user.DisplayName, user.Admin)
	if err != nil {
		return err
	}

	userID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = userID
	identity.UserID = userID

	_, err = tx.ExecContext(ctx, "INSERT INTO identities (user_id, provider, provider_user_id, password_hash) VALUES (?, ?, ?, ?)", identity.UserID, identity.Provider, identity.ProviderUserID, identity.PasswordHash)
	if err != nil {
		return err
	}

	return tx.Commit()
}
