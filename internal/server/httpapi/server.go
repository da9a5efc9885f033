// Package httpapi exposes the storekeeper services over a JSON REST API
// routed with chi.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/logging"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Create(ctx context.Context, in services.CreateUserInput) (*common.Response[*models.User], error)
	List(ctx context.Context, in services.ListUsersInput) (*common.Response[common.Page[models.User]], error)
	ShowByID(ctx context.Context, id string) (*common.Response[*models.User], error)
	Update(ctx context.Context, id string, in services.UpdateUserInput) (*common.Response[*models.User], error)
	DestroyByID(ctx context.Context, id string) (*common.Response[any], error)
	SendForgotPasswordEmail(ctx context.Context, email string) (*common.Response[any], error)
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) (*common.Response[any], error)
}

type ProductService interface {
	Create(ctx context.Context, in services.CreateProductInput) (*common.Response[*models.Product], error)
	List(ctx context.Context, in services.ListProductsInput) (*common.Response[common.Page[models.Product]], error)
	LowStock(ctx context.Context, p services.LowStockParams) (*common.Response[common.Page[models.Product]], error)
	ShowByID(ctx context.Context, id string) (*common.Response[*models.Product], error)
	Update(ctx context.Context, id string, in services.UpdateProductInput) (*common.Response[*models.Product], error)
	DestroyByID(ctx context.Context, id string) (*common.Response[any], error)
	GenerateOrderSheet(ctx context.Context, lines []services.OrderLine) (*services.OrderSheet, error)
	DeleteFile(path string) error
}

type AuthService interface {
	ValidateUser(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, user *models.User) (*common.Response[*services.LoginResult], error)
	Refresh(ctx context.Context, in services.RefreshInput) (*common.Response[*services.LoginResult], error)
	Logout(ctx context.Context, userID string) (*common.Response[any], error)
}

var (
	_ UserService    = (*services.UserService)(nil)
	_ ProductService = (*services.ProductService)(nil)
	_ AuthService    = (*services.AuthService)(nil)
)

type Server struct {
	address   string
	users     UserService
	products  ProductService
	auth      AuthService
	limiter   ratelimit.Limiter
	tokenAuth *jwtauth.JWTAuth
	validate  *validator.Validate
	logger    logging.Logger
}

// NewServer wires the handlers. jwtSecret must be the access-token secret;
// a nil limiter leaves the anonymous endpoints unthrottled.
func NewServer(address string, l logging.Logger, us UserService, ps ProductService, as AuthService, limiter ratelimit.Limiter, jwtSecret string) *Server {
	return &Server{
		address:   address,
		users:     us,
		products:  ps,
		auth:      as,
		limiter:   limiter,
		tokenAuth: jwtauth.New("HS256", []byte(jwtSecret), nil),
		validate:  newValidator(),
		logger:    l.With("module", "http_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
