package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategorySpices      Category = "spices"
	CategoryTeas        Category = "teas"
	CategoryNuts        Category = "nuts"
	CategoryFlours      Category = "flours"
	CategorySeeds       Category = "seeds"
	CategoryDriedFruits Category = "dried_fruits"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategorySpices, CategoryTeas, CategoryNuts, CategoryFlours,
	CategorySeeds, CategoryDriedFruits, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product is an inventory item. Money and quantity columns are numeric(10,2).
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      Category        `json:"category"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	ProfitMargin  decimal.Decimal `json:"profitMargin"`
	StockQuantity decimal.Decimal `json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (p Product) RecordID() string { return p.ID }
