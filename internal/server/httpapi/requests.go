package httpapi

import (
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	UserID       string `json:"userId" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=32"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=32"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8,max=32"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

type createProductRequest struct {
	Name          string           `json:"name" validate:"required"`
	Category      models.Category  `json:"category" validate:"required,category"`
	CostPrice     *decimal.Decimal `json:"costPrice" validate:"required,gte=0"`
	SalePrice     *decimal.Decimal `json:"salePrice" validate:"required,gte=0"`
	ProfitMargin  *decimal.Decimal `json:"profitMargin" validate:"required,gte=0"`
	StockQuantity *decimal.Decimal `json:"stockQuantity" validate:"required,gte=0"`
}

type updateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1"`
	Category      *models.Category `json:"category" validate:"omitempty,category"`
	CostPrice     *decimal.Decimal `json:"costPrice" validate:"omitempty,gte=0"`
	SalePrice     *decimal.Decimal `json:"salePrice" validate:"omitempty,gte=0"`
	ProfitMargin  *decimal.Decimal `json:"profitMargin" validate:"omitempty,gte=0"`
	StockQuantity *decimal.Decimal `json:"stockQuantity" validate:"omitempty,gte=0"`
}

type orderLineRequest struct {
	Name     string           `json:"name" validate:"required"`
	Quantity *decimal.Decimal `json:"quantity" validate:"required,gte=0"`
}

type generateOrderRequest struct {
	Order []orderLineRequest `json:"order" validate:"required,min=1,dive"`
}

type pageQuery struct {
	Take *int `query:"take" validate:"omitempty,gte=1"`
	Page *int `query:"page" validate:"omitempty,gte=1"`
}

type listUsersQuery struct {
	Name string `query:"name"`
	pageQuery
}

type listProductsQuery struct {
	Name     string          `query:"name"`
	Category models.Category `query:"category" validate:"omitempty,category"`
	pageQuery
}

type lowStockQuery struct {
	StockQuantity *decimal.Decimal `query:"stockQuantity" validate:"required,gte=0"`
	Category      models.Category  `query:"category" validate:"omitempty,category"`
}

func intParam(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, common.BadRequest(key + " must be an integer")
	}
	return &n, nil
}

func decimalParam(q url.Values, key string) (*decimal.Decimal, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.BadRequest(key + " must be a number")
	}
	return &d, nil
}

func parsePageQuery(q url.Values) (pageQuery, error) {
	take, err := intParam(q, "take")
	if err != nil {
		return pageQuery{}, err
	}
	page, err := intParam(q, "page")
	if err != nil {
		return pageQuery{}, err
	}
	return pageQuery{Take: take, Page: page}, nil
}

func (p pageQuery) values() (take, page int) {
	if p.Take != nil {
		take = *p.Take
	}
	if p.Page != nil {
		page = *p.Page
	}
	return take, page
}

func (r createProductRequest) input() services.CreateProductInput {
	return services.CreateProductInput{
		Name:          r.Name,
		Category:      r.Category,
		CostPrice:     *r.CostPrice,
		SalePrice:     *r.SalePrice,
		ProfitMargin:  *r.ProfitMargin,
		StockQuantity: *r.StockQuantity,
	}
}

func (r updateProductRequest) input() services.UpdateProductInput {
	return services.UpdateProductInput{
		Name:          r.Name,
		Category:      r.Category,
		CostPrice:     r.CostPrice,
		SalePrice:     r.SalePrice,
		ProfitMargin:  r.ProfitMargin,
		StockQuantity: r.StockQuantity,
	}
}

func (r generateOrderRequest) lines() []services.OrderLine {
	lines := make([]services.OrderLine, 0, len(r.Order))
	for _, l := range r.Order {
		lines = append(lines, services.OrderLine{Name: l.Name, Quantity: *l.Quantity})
	}
	return lines
}
