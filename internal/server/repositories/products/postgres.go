package products

import (
	"github.com/dmitrijs2005/storekeeper/internal/dbx"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
	"github.com/google/uuid"
)

var schema = &table.Schema[models.Product]{
	Name: "products",
	Columns: []string{
		ColID, ColName, ColCategory, ColCostPrice, ColSalePrice,
		ColProfitMargin, ColStockQuantity, ColCreatedAt, ColUpdatedAt,
	},
	Writable: []string{
		ColName, ColCategory, ColCostPrice, ColSalePrice,
		ColProfitMargin, ColStockQuantity,
	},
	Touch:  ColUpdatedAt,
	Scan:   scanProduct,
	Insert: insertProduct,
}

func scanProduct(s table.Scanner) (*models.Product, error) {
	var p models.Product
	err := s.Scan(&p.ID, &p.Name, &p.Category, &p.CostPrice, &p.SalePrice,
		&p.ProfitMargin, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func insertProduct(p *models.Product) ([]string, []any) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return []string{ColID, ColName, ColCategory, ColCostPrice, ColSalePrice, ColProfitMargin, ColStockQuantity},
		[]any{p.ID, p.Name, string(p.Category), p.CostPrice, p.SalePrice, p.ProfitMargin, p.StockQuantity}
}

type PostgresRepository struct {
	*table.Table[models.Product]
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{Table: table.New(db, schema)}
}
