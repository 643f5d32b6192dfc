package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/testutil"
	"go-pos-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth trusts the X-User and X-Privileges headers in place of a JWT
func stubAuth(c *fiber.Ctx) error {
	c.Locals("user_id", c.Get("X-User"))
	c.Locals("user_privileges", strings.Split(c.Get("X-Privileges"), ","))
	return c.Next()
}

type testClient struct {
	t          *testing.T
	app        *fiber.App
	user       string
	privileges []string
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.NewDB(t)

	ingredientRepo := repository.NewIngredientRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	ledger := service.NewStockLedger(ingredientRepo, repository.NewLedgerRepo(db), db, nil, nil)
	recipes := service.NewRecipeRegistry(repository.NewRecipeRepo(db), productRepo, ingredientRepo, db)
	availability := service.NewAvailabilityService(productRepo, 5)

	router := &Router{
		Auth:        NewAuthHandler(service.NewAuthService(userRepo, jwt.NewManager("test", "pos"), nil, nil), nil),
		Ingredients: NewIngredientHandler(service.NewInventoryService(ingredientRepo, ledger, db, nil, nil), nil),
		Products: NewProductHandler(
			service.NewProductService(productRepo, repository.NewCategoryRepo(db), recipes, availability, db, nil, nil),
			recipes, availability, nil),
		Categories: NewCategoryHandler(service.NewCategoryService(repository.NewCategoryRepo(db)), nil),
		Sales:      NewSaleHandler(service.NewSaleService(repository.NewSaleRepo(db), productRepo, ingredientRepo, ledger, db, nil, nil), nil),
		Reports: NewReportHandler(service.NewReportService(repository.NewReportRepo(db), productRepo, ingredientRepo, availability), nil),
		Users:   NewUserHandler(service.NewUserService(userRepo, privilegeRepo, roleRepo), nil),
		Roles:   NewRoleHandler(roleRepo, privilegeRepo),

		RequireAuth: stubAuth,
	}

	app := fiber.New()
	router.Register(app)
	return app
}

func (tc *testClient) do(method, path string, body interface{}) (int, []byte) {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", tc.user)
	req.Header.Set("X-Privileges", strings.Join(tc.privileges, ","))

	resp, err := tc.app.Test(req, -1)
	require.NoError(tc.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)
	return resp.StatusCode, out
}

// created posts body and returns the id of the created record
func (tc *testClient) created(path string, body interface{}) uuid.UUID {
	tc.t.Helper()
	status, out := tc.do("POST", path, body)
	require.Equal(tc.t, 201, status, string(out))
	var resp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(tc.t, json.Unmarshal(out, &resp))
	return resp.Data.ID
}

func allPrivileges() []string {
	codes := make([]string, len(model.DefaultPrivileges))
	for i, p := range model.DefaultPrivileges {
		codes[i] = p.Code
	}
	return codes
}

func TestSaleFlow(t *testing.T) {
	app := newTestApp(t)
	admin := &testClient{t: t, app: app, user: uuid.NewString(), privileges: allPrivileges()}

	flour := admin.created("/api/v1/ingredients", fiber.Map{"name": "Flour", "unit": "kg", "stock": 10})
	category := admin.created("/api/v1/categories", fiber.Map{"name": "Bakery"})
	bread := admin.created("/api/v1/products", fiber.Map{
		"name": "Bread", "cost_price": 1.5, "selling_price": 4, "category_id": category,
		"recipe": []fiber.Map{{"ingredient_id": flour, "quantity_required": 2}},
	})

	status, out := admin.do("GET", "/api/v1/products/"+bread.String()+"/availability", nil)
	require.Equal(t, 200, status, string(out))
	var availability struct {
		AvailableStock int64  `json:"available_stock"`
		StockStatus    string `json:"stock_status"`
	}
	require.NoError(t, json.Unmarshal(out, &availability))
	assert.Equal(t, int64(5), availability.AvailableStock)
	assert.Equal(t, service.StatusLowStock, availability.StockStatus)

	saleID := admin.created("/api/v1/sales", fiber.Map{
		"items":       []fiber.Map{{"product_id": bread, "quantity": 3}},
		"paid_amount": 20,
	})

	status, out = admin.do("GET", "/api/v1/ingredients/"+flour.String()+"/stock", nil)
	require.Equal(t, 200, status)
	var stock struct {
		Stock decimal.Decimal `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(out, &stock))
	assert.True(t, stock.Stock.Equal(decimal.NewFromInt(4)), stock.Stock.String())

	t.Run("insufficient stock is a conflict", func(t *testing.T) {
		status, out := admin.do("POST", "/api/v1/sales", fiber.Map{
			"items": []fiber.Map{{"product_id": bread, "quantity": 3}},
		})
		require.Equal(t, 409, status, string(out))
		var body struct {
			Ingredient string          `json:"ingredient"`
			Needed     decimal.Decimal `json:"needed"`
			Available  decimal.Decimal `json:"available"`
		}
		require.NoError(t, json.Unmarshal(out, &body))
		assert.Equal(t, "Flour", body.Ingredient)
		assert.True(t, body.Needed.Equal(decimal.NewFromInt(6)))
		assert.True(t, body.Available.Equal(decimal.NewFromInt(4)))
	})

	t.Run("validation and lookup errors", func(t *testing.T) {
		status, out := admin.do("POST", "/api/v1/sales", fiber.Map{"items": []fiber.Map{}})
		assert.Equal(t, 422, status, string(out))

		status, _ = admin.do("POST", "/api/v1/sales", fiber.Map{
			"items": []fiber.Map{{"product_id": uuid.New(), "quantity": 1}},
		})
		assert.Equal(t, 404, status)

		status, _ = admin.do("GET", "/api/v1/sales/not-a-uuid", nil)
		assert.Equal(t, 400, status)

		status, _ = admin.do("POST", "/api/v1/sales", nil)
		assert.Equal(t, 400, status)
	})

	t.Run("completed sales are final", func(t *testing.T) {
		status, out := admin.do("PUT", "/api/v1/sales/"+saleID.String()+"/status", fiber.Map{"status": "pending"})
		assert.Equal(t, 409, status, string(out))
	})

	t.Run("cashiers only see their own sales", func(t *testing.T) {
		cashier := &testClient{t: t, app: app, user: uuid.NewString(), privileges: model.CashierPrivileges}

		status, _ := cashier.do("GET", "/api/v1/sales/"+saleID.String(), nil)
		assert.Equal(t, 403, status)

		status, out := cashier.do("GET", "/api/v1/sales", nil)
		require.Equal(t, 200, status)
		var page repository.SalePage
		require.NoError(t, json.Unmarshal(out, &page))
		assert.Equal(t, int64(0), page.Total)

		status, out = admin.do("GET", "/api/v1/sales", nil)
		require.Equal(t, 200, status)
		require.NoError(t, json.Unmarshal(out, &page))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("privileges guard routes", func(t *testing.T) {
		cashier := &testClient{t: t, app: app, user: uuid.NewString(), privileges: model.CashierPrivileges}

		status, _ := cashier.do("POST", "/api/v1/ingredients", fiber.Map{"name": "Salt", "unit": "g"})
		assert.Equal(t, 403, status)
		status, _ = cashier.do("GET", "/api/v1/reports/dashboard", nil)
		assert.Equal(t, 403, status)

		status, out := cashier.do("GET", "/api/v1/pos/catalog", nil)
		require.Equal(t, 200, status)
		var catalog []model.ProductResponse
		require.NoError(t, json.Unmarshal(out, &catalog))
		require.Len(t, catalog, 1)
		assert.Equal(t, int64(2), catalog[0].AvailableStock)
	})

	t.Run("reports", func(t *testing.T) {
		status, out := admin.do("GET", "/api/v1/reports/dashboard?days=7", nil)
		require.Equal(t, 200, status, string(out))
		var stats service.DashboardStats
		require.NoError(t, json.Unmarshal(out, &stats))
		assert.Equal(t, 7, stats.Days)
		assert.Equal(t, int64(1), stats.Sales.TotalOrders)
	})
}

func TestIngredientRoutes(t *testing.T) {
	app := newTestApp(t)
	admin := &testClient{t: t, app: app, user: uuid.NewString(), privileges: allPrivileges()}

	milk := admin.created("/api/v1/ingredients", fiber.Map{"name": "Milk", "unit": "L", "stock": 2})

	status, out := admin.do("POST", "/api/v1/ingredients/"+milk.String()+"/adjust", fiber.Map{"change_qty": 3, "reason": "delivery"})
	require.Equal(t, 201, status, string(out))

	status, out = admin.do("POST", "/api/v1/ingredients/"+milk.String()+"/adjust", fiber.Map{"change_qty": -9})
	assert.Equal(t, 409, status, string(out))

	status, out = admin.do("GET", "/api/v1/ingredients/"+milk.String()+"/ledger", nil)
	require.Equal(t, 200, status)
	var entries []model.StockLedgerEntry
	require.NoError(t, json.Unmarshal(out, &entries))
	assert.Len(t, entries, 2)

	status, _ = admin.do("POST", "/api/v1/ingredients", fiber.Map{"name": "Salt"})
	assert.Equal(t, 422, status)

	status, _ = admin.do("GET", "/api/v1/ingredients/"+uuid.NewString(), nil)
	assert.Equal(t, 404, status)

	status, _ = admin.do("DELETE", "/api/v1/ingredients/"+milk.String(), nil)
	assert.Equal(t, 200, status)
}
