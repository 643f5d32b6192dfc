package service

import (
	"sync"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier keeps every published payload
type recordingNotifier struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (n *recordingNotifier) Publish(payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, payload)
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		if a, ok := e["action"].(string); ok {
			out = append(out, a)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	notifier *recordingNotifier

	ingredientRepo repository.IngredientRepository
	ledgerRepo     repository.LedgerRepository
	recipeRepo     repository.RecipeRepository
	categoryRepo   repository.CategoryRepository
	productRepo    repository.ProductRepository
	saleRepo       repository.SaleRepository

	ledger       StockLedger
	recipes      RecipeRegistry
	availability AvailabilityService
	inventory    InventoryService
	products     ProductService
	categories   CategoryService
	sales        SaleService
	reports      ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:             db,
		notifier:       &recordingNotifier{},
		ingredientRepo: repository.NewIngredientRepo(db),
		ledgerRepo:     repository.NewLedgerRepo(db),
		recipeRepo:     repository.NewRecipeRepo(db),
		categoryRepo:   repository.NewCategoryRepo(db),
		productRepo:    repository.NewProductRepo(db),
		saleRepo:       repository.NewSaleRepo(db),
	}
	f.ledger = NewStockLedger(f.ingredientRepo, f.ledgerRepo, db, f.notifier, nil)
	f.recipes = NewRecipeRegistry(f.recipeRepo, f.productRepo, f.ingredientRepo, db)
	f.availability = NewAvailabilityService(f.productRepo, 5)
	f.inventory = NewInventoryService(f.ingredientRepo, f.ledger, db, f.notifier, nil)
	f.products = NewProductService(f.productRepo, f.categoryRepo, f.recipes, f.availability, db, f.notifier, nil)
	f.categories = NewCategoryService(f.categoryRepo)
	f.sales = NewSaleService(f.saleRepo, f.productRepo, f.ingredientRepo, f.ledger, db, f.notifier, nil)
	f.reports = NewReportService(repository.NewReportRepo(db), f.productRepo, f.ingredientRepo, f.availability)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func (f *fixture) ingredient(t *testing.T, name, unit, stock string) *model.Ingredient {
	t.Helper()
	ing, err := f.inventory.CreateIngredient(&CreateIngredientRequest{Name: name, Unit: unit, Stock: dec(stock)}, "tester")
	require.NoError(t, err)
	return ing
}

func (f *fixture) category(t *testing.T, name string) *model.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(&CategoryRequest{Name: name}, "tester")
	require.NoError(t, err)
	return c
}

// product creates a product priced cost/selling with the given recipe (ingredient -> quantity)
func (f *fixture) product(t *testing.T, name, cost, selling string, recipe map[*model.Ingredient]string) *model.ProductResponse {
	t.Helper()
	cat := f.category(t, name+" category")
	entries := make([]RecipeEntryInput, 0, len(recipe))
	for ing, qty := range recipe {
		entries = append(entries, RecipeEntryInput{IngredientID: ing.ID, QuantityRequired: dec(qty)})
	}
	p, err := f.products.CreateProduct(&ProductRequest{
		Name:         name,
		CostPrice:    dec(cost),
		SellingPrice: dec(selling),
		CategoryID:   cat.ID,
		Recipe:       entries,
	}, "tester")
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	s, err := f.ledger.CurrentStock(id)
	require.NoError(t, err)
	return s
}

// counter reads the materialized Ingredient.Stock column
func (f *fixture) counter(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	ing, err := f.ingredientRepo.FindByID(id)
	require.NoError(t, err)
	return ing.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func cart(lines ...SaleItemRequest) *ProcessSaleRequest {
	return &ProcessSaleRequest{Items: lines, PaidAmount: dec("1000")}
}

func line(p *model.ProductResponse, qty int) SaleItemRequest {
	return SaleItemRequest{ProductID: p.ID, Quantity: qty}
}
