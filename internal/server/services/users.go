package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/cryptox"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/logging"
	"github.com/dmitrijs2005/storekeeper/internal/server/config"
	"github.com/dmitrijs2005/storekeeper/internal/server/mail"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/query"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/users"
)

const (
	MsgEmailNotRegistered  = "email not registered"
	MsgTokenSent           = "token sent to the given email"
	MsgPasswordsDoNotMatch = "passwords do not match"
	MsgInvalidResetToken   = "invalid token"
	MsgExpiredResetToken   = "expired token"
	MsgPasswordUpdated     = "password updated successfully"

	resetTokenLength   = 6
	resetTokenValidity = 3 * time.Hour
)

// seams for tests; argon2 at default cost is slow
var (
	hashSecret    = cryptox.Hash
	verifySecret  = cryptox.Verify
	makeResetCode = cryptox.MakeRandCode
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput changes only the non-nil fields.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

type ListUsersInput struct {
	Name string
	Take int
	Page int
}

type ResetPasswordInput struct {
	Token              string
	NewPassword        string
	ConfirmNewPassword string
}

type UserService struct {
	*RecordService[models.User]

	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	mailer               mail.Sender
	forgotPasswordSender string
	logger               logging.Logger
	now                  func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mailer mail.Sender, logger logging.Logger) *UserService {
	return &UserService{
		RecordService: NewRecordService[models.User](db, func(db dbx.DBTX) table.Store[models.User] {
			return m.Users(db)
		}),
		db:                   db,
		repomanager:          m,
		mailer:               mailer,
		forgotPasswordSender: cfg.ForgotPasswordSender,
		logger:               logger,
		now:                  time.Now,
	}
}

func byID(id string) query.Where {
	return query.Where{query.Eq(idColumn, id)}
}

func uniqueEmail(email string) UniquePair {
	return UniquePair{Where: query.Where{query.Eq(users.ColEmail, email)}, Column: users.ColEmail}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*common.Response[*models.User], error) {
	hash, err := hashSecret(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.Store(ctx, &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
	}, StoreOptions{
		ValidateUnique: true,
		Unique:         []UniquePair{uniqueEmail(in.Email)},
	})
	if err != nil {
		return nil, err
	}

	res.Data = res.Data.WithoutPassword()
	return res, nil
}

func (s *UserService) List(ctx context.Context, in ListUsersInput) (*common.Response[common.Page[models.User]], error) {
	var where query.Where
	if in.Name != "" {
		where = where.And(query.Contains(users.ColName, in.Name))
	}
	return s.GetAll(ctx, ListParams{
		Where: where,
		Order: []query.Order{query.Asc(users.ColName)},
		Take:  in.Take,
		Page:  in.Page,
	})
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*common.Response[*models.User], error) {
	changes := query.Changes{}
	var opts StoreOptions

	if in.Name != nil {
		changes[users.ColName] = *in.Name
	}
	if in.Email != nil {
		changes[users.ColEmail] = *in.Email
		opts.ValidateUnique = true
		opts.Unique = []UniquePair{uniqueEmail(*in.Email)}
	}
	if in.Password != nil {
		hash, err := hashSecret(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes[users.ColPassword] = hash
	}

	return s.RecordService.Update(ctx, UpdateParams{
		Condition:    byID(id),
		Changes:      changes,
		StoreOptions: opts,
	})
}

// FindByEmail returns the user including the password hash.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).FindCredentials(ctx, email)
}

// UpdateRefreshToken stores hash as the user's refresh token. An empty hash
// logs the user out.
func (s *UserService) UpdateRefreshToken(ctx context.Context, hash, id string) error {
	var value any
	if hash != "" {
		value = hash
	}

	n, err := s.repomanager.Users(s.db).Update(ctx, byID(id), query.Changes{users.ColRefreshToken: value})
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NotFound(common.MsgDataNotFound)
	}
	return nil
}

func (s *UserService) SendForgotPasswordEmail(ctx context.Context, email string) (*common.Response[any], error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.BadRequest(MsgEmailNotRegistered)
		}
		return nil, err
	}

	code, err := makeResetCode(resetTokenLength)
	if err != nil {
		return nil, fmt.Errorf("reset code: %w", err)
	}

	_, err = s.RecordService.Update(ctx, UpdateParams{
		Condition: byID(user.ID),
		Changes: query.Changes{
			users.ColResetPasswordToken:           code,
			users.ColResetPasswordTokenExpiration: s.now().Add(resetTokenValidity),
		},
	})
	if err != nil {
		return nil, err
	}

	html, err := mail.RenderForgotPassword(code, user.Name)
	if err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      email,
		From:    s.forgotPasswordSender,
		Subject: mail.ForgotPasswordSubject,
		HTML:    html,
	})
	if err != nil {
		s.logger.Error(ctx, "forgot password mail not sent", "user_id", user.ID, "error", err)
		return nil, err
	}

	return common.OK[any](nil, MsgTokenSent), nil
}

func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) (*common.Response[any], error) {
	if in.NewPassword != in.ConfirmNewPassword {
		return nil, common.BadRequest(MsgPasswordsDoNotMatch)
	}

	repo := s.repomanager.Users(s.db)

	// codes are short, so a collision resolves to the latest issued one
	user, err := repo.FindOne(ctx, query.Query{
		Where: query.Where{query.Eq(users.ColResetPasswordToken, in.Token)},
		Order: []query.Order{{Column: users.ColResetPasswordTokenExpiration, Desc: true, NullsLast: true}},
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.BadRequest(MsgInvalidResetToken)
		}
		return nil, err
	}

	if user.ResetPasswordTokenExpiration == nil || minutesUntil(s.now(), *user.ResetPasswordTokenExpiration) <= 0 {
		return nil, common.BadRequest(MsgExpiredResetToken)
	}

	hash, err := hashSecret(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if _, err := repo.Update(ctx, byID(user.ID), query.Changes{users.ColPassword: hash}); err != nil {
		return nil, err
	}

	return common.OK[any](nil, MsgPasswordUpdated), nil
}

// minutesUntil counts whole minutes from now to t, truncated toward zero.
func minutesUntil(now, t time.Time) int {
	return int(t.Sub(now) / time.Minute)
}
