package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/logging"
	"github.com/dmitrijs2005/storekeeper/internal/server/auth"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testSecret = "access-secret"

// ---- fakes ----

type fakeUsers struct {
	UserService

	createIn  services.CreateUserInput
	createRes *common.Response[*models.User]
	createErr error

	listIn  services.ListUsersInput
	listRes *common.Response[common.Page[models.User]]
	listErr error

	showID  string
	showRes *common.Response[*models.User]
	showErr error

	updateID  string
	updateIn  services.UpdateUserInput
	updateRes *common.Response[*models.User]
	updateErr error

	deleteID  string
	deleteErr error

	forgotEmail string
	forgotErr   error

	resetIn  services.ResetPasswordInput
	resetErr error
}

func (f *fakeUsers) Create(ctx context.Context, in services.CreateUserInput) (*common.Response[*models.User], error) {
	f.createIn = in
	return f.createRes, f.createErr
}

func (f *fakeUsers) List(ctx context.Context, in services.ListUsersInput) (*common.Response[common.Page[models.User]], error) {
	f.listIn = in
	return f.listRes, f.listErr
}

func (f *fakeUsers) ShowByID(ctx context.Context, id string) (*common.Response[*models.User], error) {
	f.showID = id
	return f.showRes, f.showErr
}

func (f *fakeUsers) Update(ctx context.Context, id string, in services.UpdateUserInput) (*common.Response[*models.User], error) {
	f.updateID, f.updateIn = id, in
	return f.updateRes, f.updateErr
}

func (f *fakeUsers) DestroyByID(ctx context.Context, id string) (*common.Response[any], error) {
	f.deleteID = id
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return common.OK[any](nil, common.MsgDeleted), nil
}

func (f *fakeUsers) SendForgotPasswordEmail(ctx context.Context, email string) (*common.Response[any], error) {
	f.forgotEmail = email
	if f.forgotErr != nil {
		return nil, f.forgotErr
	}
	return common.OK[any](nil, services.MsgTokenSent), nil
}

func (f *fakeUsers) ResetPassword(ctx context.Context, in services.ResetPasswordInput) (*common.Response[any], error) {
	f.resetIn = in
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return common.OK[any](nil, services.MsgPasswordUpdated), nil
}

type fakeProducts struct {
	ProductService

	createIn  services.CreateProductInput
	createRes *common.Response[*models.Product]
	createErr error

	listIn  services.ListProductsInput
	listRes *common.Response[common.Page[models.Product]]

	lowIn  services.LowStockParams
	lowRes *common.Response[common.Page[models.Product]]

	updateID  string
	updateIn  services.UpdateProductInput
	updateRes *common.Response[*models.Product]

	lines    []services.OrderLine
	sheet    *services.OrderSheet
	sheetErr error
	deleted  []string
}

func (f *fakeProducts) Create(ctx context.Context, in services.CreateProductInput) (*common.Response[*models.Product], error) {
	f.createIn = in
	return f.createRes, f.createErr
}

func (f *fakeProducts) List(ctx context.Context, in services.ListProductsInput) (*common.Response[common.Page[models.Product]], error) {
	f.listIn = in
	return f.listRes, nil
}

func (f *fakeProducts) LowStock(ctx context.Context, p services.LowStockParams) (*common.Response[common.Page[models.Product]], error) {
	f.lowIn = p
	return f.lowRes, nil
}

func (f *fakeProducts) Update(ctx context.Context, id string, in services.UpdateProductInput) (*common.Response[*models.Product], error) {
	f.updateID, f.updateIn = id, in
	return f.updateRes, nil
}

func (f *fakeProducts) GenerateOrderSheet(ctx context.Context, lines []services.OrderLine) (*services.OrderSheet, error) {
	f.lines = lines
	return f.sheet, f.sheetErr
}

func (f *fakeProducts) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeAuth struct {
	AuthService

	user        *models.User
	validateErr error

	loginRes *common.Response[*services.LoginResult]

	refreshIn  services.RefreshInput
	refreshRes *common.Response[*services.LoginResult]
	refreshErr error

	logoutID string
}

func (f *fakeAuth) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	return f.user, f.validateErr
}

func (f *fakeAuth) Login(ctx context.Context, user *models.User) (*common.Response[*services.LoginResult], error) {
	return f.loginRes, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, in services.RefreshInput) (*common.Response[*services.LoginResult], error) {
	f.refreshIn = in
	return f.refreshRes, f.refreshErr
}

func (f *fakeAuth) Logout(ctx context.Context, userID string) (*common.Response[any], error) {
	f.logoutID = userID
	return common.OK[any](nil, common.MsgLogoutSuccessful), nil
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

func (f *fakeLimiter) Close() error { return nil }

// ---- helpers ----

type deps struct {
	users    *fakeUsers
	products *fakeProducts
	auth     *fakeAuth
	limiter  *fakeLimiter
}

func newTestServer(t *testing.T) (*Server, *deps) {
	t.Helper()
	d := &deps{
		users:    &fakeUsers{},
		products: &fakeProducts{},
		auth:     &fakeAuth{},
		limiter:  &fakeLimiter{allow: true},
	}
	s := NewServer("127.0.0.1:0", logging.NewDiscardLogger(), d.users, d.products, d.auth, d.limiter, testSecret)
	return s, d
}

func bearer(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.NewHS256Signer().Sign(models.Payload{ID: "u-1", Email: "ana@example.com", Name: "Ana"}, secret, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, s *Server, method, target, body, authz string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}
