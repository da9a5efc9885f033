// Package users persists accounts in the users table.
package users

import (
	"context"

	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
)

// Column names usable in conditions and changes.
const (
	ColID                           = "id"
	ColName                         = "name"
	ColEmail                        = "email"
	ColPassword                     = "password"
	ColRefreshToken                 = "refresh_token"
	ColResetPasswordToken           = "reset_password_token"
	ColResetPasswordTokenExpiration = "reset_password_token_expiration"
	ColCreatedAt                    = "created_at"
	ColUpdatedAt                    = "updated_at"
)

type Repository interface {
	table.Store[models.User]

	// FindCredentials returns the user with the given email including the
	// password hash, which generic reads never select.
	FindCredentials(ctx context.Context, email string) (*models.User, error)
}
