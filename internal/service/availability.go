package service

import (
	"math"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusOutOfStock = "Out of Stock"
	StatusLowStock   = "Low Stock"
	StatusInStock    = "In Stock"
)

// AvailableUnits returns how many whole units of a product the given stock can
// produce: the minimum over the recipe of floor(stock / required).
// An empty recipe yields 0, and so does a recipe whose every quantity is non-positive.
func AvailableUnits(recipe []model.RecipeEntry, stockOf func(ingredientID uuid.UUID) decimal.Decimal) int64 {
	var (
		min   int64
		found bool
	)
	for _, entry := range recipe {
		if !entry.QuantityRequired.IsPositive() {
			continue
		}
		units := wholeUnits(stockOf(entry.IngredientID), entry.QuantityRequired)
		if !found || units < min {
			min = units
			found = true
		}
	}
	if !found {
		return 0
	}
	return min
}

var maxUnits = decimal.NewFromInt(math.MaxInt64)

// wholeUnits truncates stock/required exactly, without going through floats.
// Quotients past int64 saturate at math.MaxInt64.
func wholeUnits(stock, required decimal.Decimal) int64 {
	if !stock.IsPositive() {
		return 0
	}
	q, _ := stock.QuoRem(required, 0)
	if q.GreaterThan(maxUnits) {
		return math.MaxInt64
	}
	return q.IntPart()
}

// StockStatus labels an availability figure for listings
func StockStatus(units, lowThreshold int64) string {
	switch {
	case units <= 0:
		return StatusOutOfStock
	case units <= lowThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// preloadedStock reads the stock of ingredients preloaded on recipe entries.
// An ingredient that is gone (soft-deleted) contributes no stock.
func preloadedStock(recipe []model.RecipeEntry) func(uuid.UUID) decimal.Decimal {
	stock := make(map[uuid.UUID]decimal.Decimal, len(recipe))
	for _, entry := range recipe {
		if entry.Ingredient != nil {
			stock[entry.IngredientID] = entry.Ingredient.Stock
		}
	}
	return func(id uuid.UUID) decimal.Decimal {
		return stock[id]
	}
}

// AvailabilityService answers "how many units of P can be sold right now?".
// Nothing is cached: each call reads the recipe and current ingredient stock.
type AvailabilityService interface {
	ComputeAvailableStock(productID uuid.UUID) (int64, error)
	Decorate(products []model.Product) []model.ProductResponse
	LowStockThreshold() int64
}

type availabilityService struct {
	productRepo  repository.ProductRepository
	lowThreshold int64
}

func NewAvailabilityService(pRepo repository.ProductRepository, lowThreshold int64) AvailabilityService {
	return &availabilityService{productRepo: pRepo, lowThreshold: lowThreshold}
}

func (s *availabilityService) ComputeAvailableStock(productID uuid.UUID) (int64, error) {
	product, err := s.productRepo.FindByID(nil, productID)
	if err != nil {
		return 0, translateNotFound(err, "product", productID)
	}
	return AvailableUnits(product.Recipe, preloadedStock(product.Recipe)), nil
}

// Decorate computes availability for products loaded with Recipe.Ingredient
func (s *availabilityService) Decorate(products []model.Product) []model.ProductResponse {
	responses := make([]model.ProductResponse, len(products))
	for i, p := range products {
		units := AvailableUnits(p.Recipe, preloadedStock(p.Recipe))
		responses[i] = model.ProductResponse{
			Product:        p,
			AvailableStock: units,
			StockStatus:    StockStatus(units, s.lowThreshold),
		}
	}
	return responses
}

func (s *availabilityService) LowStockThreshold() int64 {
	return s.lowThreshold
}
