package services

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/filex"
	"github.com/dmitrijs2005/storekeeper/internal/logging"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/query"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
	"github.com/dmitrijs2005/storekeeper/internal/server/spreadsheet"
	"github.com/dmitrijs2005/storekeeper/internal/server/storage"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name          string
	Category      models.Category
	CostPrice     decimal.Decimal
	SalePrice     decimal.Decimal
	ProfitMargin  decimal.Decimal
	StockQuantity decimal.Decimal
}

// UpdateProductInput changes only the non-nil fields.
type UpdateProductInput struct {
	Name          *string
	Category      *models.Category
	CostPrice     *decimal.Decimal
	SalePrice     *decimal.Decimal
	ProfitMargin  *decimal.Decimal
	StockQuantity *decimal.Decimal
}

type ListProductsInput struct {
	Name     string
	Category models.Category
	Take     int
	Page     int
}

type LowStockParams struct {
	StockQuantity decimal.Decimal
	Category      models.Category
}

type OrderLine struct {
	Name     string
	Quantity decimal.Decimal
}

// OrderSheet is a generated workbook. URL is set when the sheet was archived.
type OrderSheet struct {
	Path string
	URL  string
}

type ProductService struct {
	*RecordService[models.Product]

	sheets  spreadsheet.Writer
	archive storage.Archive
	logger  logging.Logger
}

// NewProductService builds the service. A nil archive disables archiving.
func NewProductService(db *sql.DB, m repomanager.RepositoryManager, sheets spreadsheet.Writer, archive storage.Archive, logger logging.Logger) *ProductService {
	return &ProductService{
		RecordService: NewRecordService[models.Product](db, func(db dbx.DBTX) table.Store[models.Product] {
			return m.Products(db)
		}),
		sheets:  sheets,
		archive: archive,
		logger:  logger,
	}
}

func uniqueName(name string) UniquePair {
	return UniquePair{Where: query.Where{query.Eq(products.ColName, name)}, Column: products.ColName}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*common.Response[*models.Product], error) {
	return s.Store(ctx, &models.Product{
		Name:          in.Name,
		Category:      in.Category,
		CostPrice:     in.CostPrice,
		SalePrice:     in.SalePrice,
		ProfitMargin:  in.ProfitMargin,
		StockQuantity: in.StockQuantity,
	}, StoreOptions{
		ValidateUnique: true,
		Unique:         []UniquePair{uniqueName(in.Name)},
	})
}

func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (*common.Response[*models.Product], error) {
	changes := query.Changes{}
	var opts StoreOptions

	if in.Name != nil {
		changes[products.ColName] = *in.Name
		opts.ValidateUnique = true
		opts.Unique = []UniquePair{uniqueName(*in.Name)}
	}
	if in.Category != nil {
		changes[products.ColCategory] = string(*in.Category)
	}
	if in.CostPrice != nil {
		changes[products.ColCostPrice] = *in.CostPrice
	}
	if in.SalePrice != nil {
		changes[products.ColSalePrice] = *in.SalePrice
	}
	if in.ProfitMargin != nil {
		changes[products.ColProfitMargin] = *in.ProfitMargin
	}
	if in.StockQuantity != nil {
		changes[products.ColStockQuantity] = *in.StockQuantity
	}

	return s.RecordService.Update(ctx, UpdateParams{
		Condition:    byID(id),
		Changes:      changes,
		StoreOptions: opts,
	})
}

func (s *ProductService) List(ctx context.Context, in ListProductsInput) (*common.Response[common.Page[models.Product]], error) {
	var where query.Where
	if in.Name != "" {
		where = where.And(query.Contains(products.ColName, in.Name))
	}
	if in.Category != "" {
		where = where.And(query.Eq(products.ColCategory, string(in.Category)))
	}
	return s.GetAll(ctx, ListParams{
		Where: where,
		Order: []query.Order{query.Asc(products.ColName)},
		Take:  in.Take,
		Page:  in.Page,
	})
}

// LowStock lists every product at or below the threshold, emptiest first.
func (s *ProductService) LowStock(ctx context.Context, p LowStockParams) (*common.Response[common.Page[models.Product]], error) {
	where := query.Where{query.Lte(products.ColStockQuantity, p.StockQuantity)}
	if p.Category != "" {
		where = where.And(query.Eq(products.ColCategory, string(p.Category)))
	}
	return s.GetAll(ctx, ListParams{
		Where: where,
		Order: []query.Order{{Column: products.ColStockQuantity, NullsLast: true}},
	})
}

// GenerateOrderSheet writes the order to a workbook. When an archive is
// configured the file is uploaded too; archive failures are logged and the
// local file is still returned.
func (s *ProductService) GenerateOrderSheet(ctx context.Context, lines []OrderLine) (*OrderSheet, error) {
	rows := make([]spreadsheet.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, spreadsheet.Row{Name: l.Name, Quantity: l.Quantity})
	}

	path, err := s.sheets.Write(ctx, rows)
	if err != nil {
		return nil, err
	}

	sheet := &OrderSheet{Path: path}
	if s.archive == nil {
		return sheet, nil
	}

	key := filepath.Base(path)
	if err := s.archive.Put(ctx, key, path); err != nil {
		s.logger.Warn(ctx, "order sheet not archived", "key", key, "error", err)
		return sheet, nil
	}

	url, err := s.archive.PresignGet(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "order sheet link not presigned", "key", key, "error", err)
		return sheet, nil
	}
	sheet.URL = url

	return sheet, nil
}

// DeleteFile removes a generated sheet once it has been served.
func (s *ProductService) DeleteFile(path string) error {
	return filex.Remove(path)
}
