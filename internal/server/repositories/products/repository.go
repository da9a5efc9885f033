// Package products persists inventory items in the products table.
package products

import (
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/repositories/table"
)

const (
	ColID            = "id"
	ColName          = "name"
	ColCategory      = "category"
	ColCostPrice     = "cost_price"
	ColSalePrice     = "sale_price"
	ColProfitMargin  = "profit_margin"
	ColStockQuantity = "stock_quantity"
	ColCreatedAt     = "created_at"
	ColUpdatedAt     = "updated_at"
)

type Repository interface {
	table.Store[models.Product]
}
