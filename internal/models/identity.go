package models

// Identity represents a user's authentication method.
type Identity struct {
	ID             int64
	UserID         int64
	Provider       string
	ProviderUserID string
	PasswordHash   *string
}

// User is an account that can author pages and comments.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	Admin       bool
}
