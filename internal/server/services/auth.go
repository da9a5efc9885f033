package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/auth"
	"github.com/dmitrijs2005/storekeeper/internal/server/config"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
)

const (
	MsgUserNotFound        = "user not found"
	MsgInvalidRefreshToken = "invalid refresh token"
)

type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ID           string `json:"id"`
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
}

// AuthService issues token pairs. Only the argon2id hash of the latest
// refresh token is stored, so a new login invalidates the previous one.
type AuthService struct {
	users  *UserService
	signer auth.Signer

	accessSecret  string
	accessTTL     time.Duration
	refreshSecret string
	refreshTTL    time.Duration
}

func NewAuthService(users *UserService, signer auth.Signer, cfg *config.Config) *AuthService {
	return &AuthService{
		users:         users,
		signer:        signer,
		accessSecret:  cfg.JWTSecret,
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshSecret: cfg.JWTRefreshSecret,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
	}
}

func (s *AuthService) Login(ctx context.Context, user *models.User) (*common.Response[*LoginResult], error) {
	payload := user.Payload()

	refreshToken, err := s.signer.Sign(payload, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	hash, err := hashSecret(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, hash, user.ID); err != nil {
		return nil, err
	}

	accessToken, err := s.signer.Sign(payload, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return common.OK(newLoginResult(user, accessToken, refreshToken)), nil
}

// Refresh mints a new access token. The refresh token is not rotated and is
// echoed back unchanged.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (*common.Response[*LoginResult], error) {
	res, err := s.users.Show(ctx, ShowParams{Where: byID(in.UserID)})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Forbidden(MsgUserNotFound)
		}
		return nil, err
	}
	user := res.Data

	if user.RefreshToken == "" {
		return nil, common.Forbidden(MsgInvalidRefreshToken)
	}
	ok, err := verifySecret(in.RefreshToken, user.RefreshToken)
	if err != nil || !ok {
		return nil, common.Forbidden(MsgInvalidRefreshToken)
	}

	if _, err := s.signer.Verify(in.RefreshToken, s.refreshSecret); err != nil {
		return nil, common.Forbidden(MsgInvalidRefreshToken)
	}

	accessToken, err := s.signer.Sign(user.Payload(), s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return common.OK(newLoginResult(user, accessToken, in.RefreshToken)), nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) (*common.Response[any], error) {
	if err := s.users.UpdateRefreshToken(ctx, "", userID); err != nil {
		return nil, err
	}
	return common.OK[any](nil, common.MsgLogoutSuccessful), nil
}

// ValidateUser returns the user without its password hash, or nil when the
// email is unknown or the password does not match.
func (s *AuthService) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ok, err := verifySecret(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil
	}

	return user.WithoutPassword(), nil
}

func newLoginResult(user *models.User, accessToken, refreshToken string) *LoginResult {
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Name:         user.Name,
		Email:        user.Email,
		ID:           user.ID,
	}
}
