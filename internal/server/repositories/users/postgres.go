package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
	"github.com/google/uuid"
)

var schema = &table.Schema[models.User]{
	Name: "users",
	Columns: []string{
		ColID, ColName, ColEmail, ColRefreshToken,
		ColResetPasswordToken, ColResetPasswordTokenExpiration,
		ColCreatedAt, ColUpdatedAt,
	},
	Writable: []string{
		ColName, ColEmail, ColPassword, ColRefreshToken,
		ColResetPasswordToken, ColResetPasswordTokenExpiration,
	},
	Touch:  ColUpdatedAt,
	Scan:   scanUser,
	Insert: insertUser,
}

func scanUser(s table.Scanner) (*models.User, error) {
	var (
		u            models.User
		refreshToken sql.NullString
		resetToken   sql.NullString
		resetExp     sql.NullTime
	)

	if err := s.Scan(&u.ID, &u.Name, &u.Email, &refreshToken, &resetToken, &resetExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	u.RefreshToken = refreshToken.String
	if resetToken.Valid {
		u.ResetPasswordToken = &resetToken.String
	}
	if resetExp.Valid {
		u.ResetPasswordTokenExpiration = &resetExp.Time
	}
	return &u, nil
}

func insertUser(u *models.User) ([]string, []any) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return []string{ColID, ColName, ColEmail, ColPassword},
		[]any{u.ID, u.Name, u.Email, u.Password}
}

type PostgresRepository struct {
	*table.Table[models.User]
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{Table: table.New(db, schema), db: db}
}

func (r *PostgresRepository) FindCredentials(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password, refresh_token FROM users
		 WHERE email = $1
		 `

	var (
		u            models.User
		refreshToken sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &refreshToken)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.RefreshToken = refreshToken.String
	return &u, nil
}
