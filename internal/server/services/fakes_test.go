package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/query"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/users"
	"github.com/shopspring/decimal"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fastHashing swaps argon2 for a reversible stand-in.
func fastHashing(t *testing.T) {
	t.Helper()
	origHash, origVerify := hashSecret, verifySecret
	hashSecret = func(s string) (string, error) { return "hashed:" + s, nil }
	verifySecret = func(secret, encoded string) (bool, error) { return encoded == "hashed:"+secret, nil }
	t.Cleanup(func() {
		hashSecret = origHash
		verifySecret = origVerify
	})
}

// memStore is an in-memory table.Store. It understands the operators the
// services use and records every call.
type memStore[T table.Entity] struct {
	rows  []*T
	get   func(row *T, col string) any
	set   func(row *T, col string, v any)
	calls []string
	binds []dbx.DBTX
	last  query.Query
	err   error
}

func (m *memStore[T]) bind(db dbx.DBTX) *memStore[T] {
	m.binds = append(m.binds, db)
	return m
}

func (m *memStore[T]) match(row *T, where query.Where) bool {
	for _, c := range where {
		v := m.get(row, c.Column)
		switch c.Op {
		case query.OpEq:
			if v == nil || fmt.Sprint(v) != fmt.Sprint(c.Value) {
				return false
			}
		case query.OpILike:
			needle := strings.ToLower(strings.Trim(c.Value.(string), "%"))
			if !strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				return false
			}
		case query.OpLte:
			if v.(decimal.Decimal).GreaterThan(c.Value.(decimal.Decimal)) {
				return false
			}
		default:
			panic("memStore: unsupported op " + string(c.Op))
		}
	}
	return true
}

func (m *memStore[T]) filter(where query.Where) []*T {
	var out []*T
	for _, r := range m.rows {
		if m.match(r, where) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

func (m *memStore[T]) FindOne(ctx context.Context, q query.Query) (*T, error) {
	m.calls = append(m.calls, "FindOne")
	m.last = q
	if m.err != nil {
		return nil, m.err
	}
	found := m.filter(q.Where)
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

func (m *memStore[T]) FindAndCount(ctx context.Context, q query.Query) ([]*T, int, error) {
	m.calls = append(m.calls, "FindAndCount")
	m.last = q
	if m.err != nil {
		return nil, 0, m.err
	}
	found := m.filter(q.Where)
	page := found
	if q.Skip > 0 {
		page = page[min(q.Skip, len(page)):]
	}
	if q.Take > 0 {
		page = page[:min(q.Take, len(page))]
	}
	if page == nil {
		page = []*T{}
	}
	return page, len(found), nil
}

func (m *memStore[T]) Count(ctx context.Context, where query.Where) (int, error) {
	m.calls = append(m.calls, "Count")
	if m.err != nil {
		return 0, m.err
	}
	return len(m.filter(where)), nil
}

func (m *memStore[T]) Create(ctx context.Context, entity *T) (*T, error) {
	m.calls = append(m.calls, "Create")
	if m.err != nil {
		return nil, m.err
	}
	c := *entity
	if c.RecordID() == "" {
		m.set(&c, "id", fmt.Sprintf("id-%d", len(m.rows)+1))
	}
	m.rows = append(m.rows, &c)
	out := c
	return &out, nil
}

func (m *memStore[T]) Update(ctx context.Context, where query.Where, changes query.Changes) (int64, error) {
	m.calls = append(m.calls, "Update")
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, r := range m.rows {
		if !m.match(r, where) {
			continue
		}
		for col, v := range changes {
			m.set(r, col, v)
		}
		n++
	}
	return n, nil
}

func (m *memStore[T]) Delete(ctx context.Context, where query.Where) (int64, error) {
	m.calls = append(m.calls, "Delete")
	if m.err != nil {
		return 0, m.err
	}
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if m.match(r, where) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

// --- users ---

func getUserField(u *models.User, col string) any {
	switch col {
	case users.ColID:
		return u.ID
	case users.ColName:
		return u.Name
	case users.ColEmail:
		return u.Email
	case users.ColRefreshToken:
		return u.RefreshToken
	case users.ColResetPasswordToken:
		if u.ResetPasswordToken == nil {
			return nil
		}
		return *u.ResetPasswordToken
	}
	panic("unknown user column " + col)
}

func setUserField(u *models.User, col string, v any) {
	switch col {
	case users.ColID:
		u.ID = v.(string)
	case users.ColName:
		u.Name = v.(string)
	case users.ColEmail:
		u.Email = v.(string)
	case users.ColPassword:
		u.Password = v.(string)
	case users.ColRefreshToken:
		if v == nil {
			u.RefreshToken = ""
			return
		}
		u.RefreshToken = v.(string)
	case users.ColResetPasswordToken:
		s := v.(string)
		u.ResetPasswordToken = &s
	case users.ColResetPasswordTokenExpiration:
		tm := v.(time.Time)
		u.ResetPasswordTokenExpiration = &tm
	default:
		panic("unknown user column " + col)
	}
}

type fakeUsersRepo struct {
	*memStore[models.User]
	credentialCalls int
}

func newFakeUsersRepo(rows ...*models.User) *fakeUsersRepo {
	return &fakeUsersRepo{memStore: &memStore[models.User]{rows: rows, get: getUserField, set: setUserField}}
}

func (f *fakeUsersRepo) FindCredentials(ctx context.Context, email string) (*models.User, error) {
	f.credentialCalls++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.rows {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- products ---

func getProductField(p *models.Product, col string) any {
	switch col {
	case products.ColID:
		return p.ID
	case products.ColName:
		return p.Name
	case products.ColCategory:
		return string(p.Category)
	case products.ColStockQuantity:
		return p.StockQuantity
	}
	panic("unknown product column " + col)
}

func setProductField(p *models.Product, col string, v any) {
	switch col {
	case products.ColID:
		p.ID = v.(string)
	case products.ColName:
		p.Name = v.(string)
	case products.ColCategory:
		p.Category = models.Category(v.(string))
	case products.ColCostPrice:
		p.CostPrice = v.(decimal.Decimal)
	case products.ColSalePrice:
		p.SalePrice = v.(decimal.Decimal)
	case products.ColProfitMargin:
		p.ProfitMargin = v.(decimal.Decimal)
	case products.ColStockQuantity:
		p.StockQuantity = v.(decimal.Decimal)
	default:
		panic("unknown product column " + col)
	}
}

type fakeProductsRepo struct {
	*memStore[models.Product]
}

func newFakeProductsRepo(rows ...*models.Product) *fakeProductsRepo {
	return &fakeProductsRepo{memStore: &memStore[models.Product]{rows: rows, get: getProductField, set: setProductField}}
}

// --- repository manager ---

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	p *fakeProductsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	m.u.bind(db)
	return m.u
}

func (m *fakeRepoManager) Products(db dbx.DBTX) products.Repository {
	m.p.bind(db)
	return m.p
}
