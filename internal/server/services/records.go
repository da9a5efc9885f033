package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/query"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
)

const (
	MsgRelationshipNotFound = "relationship target not found"
	idColumn                = "id"
)

// StoreFactory binds a store to a handle, either the pool or a transaction.
type StoreFactory[T any] func(db dbx.DBTX) table.Store[T]

// Exister is implemented by every RecordService and is what relationship
// validation asks.
type Exister interface {
	Exists(ctx context.Context, where query.Where) (bool, error)
}

// UniquePair is a candidate filter that must not match an existing row.
// Column names the field in the conflict message.
type UniquePair struct {
	Where  query.Where
	Column string
}

// Relationship is a referenced row that must exist in Target.
type Relationship struct {
	Where  query.Where
	Target Exister
}

type ListParams struct {
	Where   query.Where
	Order   []query.Order
	Include []string
	Take    int
	// Page is 1-based; zero disables pagination.
	Page int
}

type StoreOptions struct {
	ValidateUnique       bool
	Unique               []UniquePair
	ValidateRelationship bool
	Relationships        []Relationship
}

type ShowParams struct {
	Where   query.Where
	Include []string
}

type UpdateParams struct {
	Condition query.Where
	Changes   query.Changes
	StoreOptions
}

// Skip returns the offset of page. The first page starts at zero.
func Skip(take, page int) int {
	if page <= 1 {
		return 0
	}
	return take * (page - 1)
}

// RecordService is the CRUD base shared by the entity services. Every write
// validates relationships, then uniqueness, then persists, all inside one
// transaction.
type RecordService[T table.Entity] struct {
	db    *sql.DB
	store StoreFactory[T]
}

func NewRecordService[T table.Entity](db *sql.DB, store StoreFactory[T]) *RecordService[T] {
	return &RecordService[T]{db: db, store: store}
}

func (s *RecordService[T]) GetAll(ctx context.Context, p ListParams) (*common.Response[common.Page[T]], error) {
	q := query.Query{Where: p.Where, Order: p.Order, Include: p.Include}
	if p.Page > 0 {
		q.Take = p.Take
		q.Skip = Skip(p.Take, p.Page)
	}

	rows, count, err := s.store(s.db).FindAndCount(ctx, q)
	if err != nil {
		return nil, err
	}

	return common.OK(common.Page[T]{Rows: rows, Count: count}), nil
}

func (s *RecordService[T]) Count(ctx context.Context, where query.Where) (*common.Response[int], error) {
	n, err := s.store(s.db).Count(ctx, where)
	if err != nil {
		return nil, err
	}
	return common.OK(n), nil
}

func (s *RecordService[T]) Store(ctx context.Context, body *T, opts StoreOptions) (*common.Response[*T], error) {
	created, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*T, error) {
		store := s.store(tx)
		if err := s.validate(ctx, store, opts, nil); err != nil {
			return nil, err
		}
		return store.Create(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	return common.OK(created, common.MsgCreated), nil
}

func (s *RecordService[T]) Show(ctx context.Context, p ShowParams) (*common.Response[*T], error) {
	row, err := s.store(s.db).FindOne(ctx, query.Query{Where: p.Where, Include: p.Include})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgDataNotFound)
		}
		return nil, err
	}
	return common.OK(row), nil
}

func (s *RecordService[T]) Destroy(ctx context.Context, where query.Where) (*common.Response[any], error) {
	n, err := s.store(s.db).Delete(ctx, where)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, common.NotFound(common.MsgDataNotFound)
	}
	return common.OK[any](nil, common.MsgDeleted), nil
}

// ShowByID is Show for the row with the given id.
func (s *RecordService[T]) ShowByID(ctx context.Context, id string) (*common.Response[*T], error) {
	return s.Show(ctx, ShowParams{Where: byID(id)})
}

func (s *RecordService[T]) DestroyByID(ctx context.Context, id string) (*common.Response[any], error) {
	return s.Destroy(ctx, byID(id))
}

// Update applies p.Changes to the rows matching p.Condition and returns the
// first of them re-read. Uniqueness is checked in updating mode: a row that
// itself matches the condition does not conflict.
//
// The first match is taken before the write and re-read by id, so changes to
// the columns the condition filters on still find the row.
func (s *RecordService[T]) Update(ctx context.Context, p UpdateParams) (*common.Response[*T], error) {
	updated, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*T, error) {
		store := s.store(tx)
		if err := s.validate(ctx, store, p.StoreOptions, p.Condition); err != nil {
			return nil, err
		}

		target, err := store.FindOne(ctx, query.Query{Where: p.Condition})
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NotFound(common.MsgDataNotFound)
			}
			return nil, err
		}

		n, err := store.Update(ctx, p.Condition, p.Changes)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, common.NotFound(common.MsgDataNotFound)
		}

		return store.FindOne(ctx, query.Query{Where: byID((*target).RecordID())})
	})
	if err != nil {
		return nil, err
	}

	return common.OK(updated, common.MsgUpdated), nil
}

func (s *RecordService[T]) Exists(ctx context.Context, where query.Where) (bool, error) {
	n, err := s.store(s.db).Count(ctx, where)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// validate runs the relationship checks and then the uniqueness checks.
// A non-nil updating condition switches uniqueness to updating mode.
func (s *RecordService[T]) validate(ctx context.Context, store table.Store[T], opts StoreOptions, updating query.Where) error {
	if opts.ValidateRelationship {
		for _, rel := range opts.Relationships {
			ok, err := rel.Target.Exists(ctx, rel.Where)
			if err != nil {
				return fmt.Errorf("relationship check: %w", err)
			}
			if !ok {
				return common.BadRequest(MsgRelationshipNotFound)
			}
		}
	}

	if opts.ValidateUnique {
		for _, pair := range opts.Unique {
			if err := s.validateUnique(ctx, store, pair, updating); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RecordService[T]) validateUnique(ctx context.Context, store table.Store[T], pair UniquePair, updating query.Where) error {
	existing, err := store.FindOne(ctx, query.Query{Where: pair.Where})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("unique check: %w", err)
	}

	if updating != nil {
		same, err := store.Count(ctx, updating.And(query.Eq(idColumn, (*existing).RecordID())))
		if err != nil {
			return fmt.Errorf("unique check: %w", err)
		}
		if same > 0 {
			return nil
		}
	}

	return common.Conflict(fmt.Sprintf("%s is already in use", pair.Column))
}
