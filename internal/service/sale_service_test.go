package service

import (
	"strings"
	"sync"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSale_DeductsAndRecords(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "2"})
	cashier := uuid.New()

	req := cart(line(bread, 3))
	req.PaidAmount = dec("20")
	sale, err := f.sales.ProcessSale(req, cashier.String())
	require.NoError(t, err)

	requireDecimal(t, "4", f.stock(t, flour.ID))
	requireDecimal(t, "4", f.counter(t, flour.ID))

	entries, err := f.ledgerRepo.FindBySale(sale.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	requireDecimal(t, "-6", entries[0].ChangeQty)
	assert.Equal(t, model.ReasonSalePrefix+sale.OrderNumber, entries[0].Reason)

	requireDecimal(t, "12", sale.Total)
	requireDecimal(t, "4.5", sale.CostTotal)
	requireDecimal(t, "7.5", sale.Profit)
	requireDecimal(t, "8", sale.ChangeAmount)
	assert.Equal(t, model.SaleCompleted, sale.Status)
	assert.Equal(t, model.SaleDineIn, sale.Type)
	assert.Equal(t, "cash", sale.PaymentMethod)
	require.NotNil(t, sale.CashierID)
	assert.Equal(t, cashier, *sale.CashierID)
	assert.True(t, strings.HasPrefix(sale.OrderNumber, "SALE-"))
	assert.Len(t, sale.OrderNumber, len("SALE-")+12)

	require.Len(t, sale.Items, 1)
	item := sale.Items[0]
	assert.Equal(t, 3, item.Quantity)
	requireDecimal(t, "4", item.UnitPrice)
	requireDecimal(t, "1.5", item.CostPrice)
	requireDecimal(t, "12", item.Subtotal)
	requireDecimal(t, "7.5", item.Profit)

	stored, err := f.sales.GetSale(sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Bread", stored.Items[0].Product.Name)

	assert.Contains(t, f.notifier.actions(), "sale_created")
}

func TestProcessSale_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "2"})

	_, err := f.sales.ProcessSale(cart(line(bread, 6)), "")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, flour.ID, stockErr.IngredientID)
	assert.Equal(t, "Flour", stockErr.Ingredient)
	requireDecimal(t, "12", stockErr.Needed)
	requireDecimal(t, "10", stockErr.Available)

	requireDecimal(t, "10", f.stock(t, flour.ID))
	requireDecimal(t, "10", f.counter(t, flour.ID))
	assert.Equal(t, int64(0), f.count(t, &model.Sale{}))
	assert.Equal(t, int64(0), f.count(t, &model.SaleItem{}))
	// only the initial stock entry
	assert.Equal(t, int64(1), f.count(t, &model.StockLedgerEntry{}))
	assert.NotContains(t, f.notifier.actions(), "sale_created")
}

func TestProcessSale_PartialShortageWritesNothing(t *testing.T) {
	f := newFixture(t)
	sugar := f.ingredient(t, "Sugar", "kg", "5")
	milk := f.ingredient(t, "Milk", "L", "3")
	shake := f.product(t, "Shake", "1.00", "3.00", map[*model.Ingredient]string{sugar: "1", milk: "2"})

	_, err := f.sales.ProcessSale(cart(line(shake, 2)), "")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Milk", stockErr.Ingredient)

	requireDecimal(t, "5", f.stock(t, sugar.ID))
	requireDecimal(t, "3", f.stock(t, milk.ID))
	assert.Equal(t, int64(0), f.count(t, &model.Sale{}))
}

func TestProcessSale_AggregatesSharedIngredients(t *testing.T) {
	f := newFixture(t)
	milk := f.ingredient(t, "Milk", "L", "5")
	latte := f.product(t, "Latte", "1.00", "3.50", map[*model.Ingredient]string{milk: "2"})
	cappuccino := f.product(t, "Cappuccino", "1.00", "3.50", map[*model.Ingredient]string{milk: "1.5"})

	// each line alone fits, together they need 2x2 + 1x1.5 = 5.5L
	_, err := f.sales.ProcessSale(cart(line(latte, 2), line(cappuccino, 1)), "")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	requireDecimal(t, "5.5", stockErr.Needed)
	requireDecimal(t, "5", stockErr.Available)
	requireDecimal(t, "5", f.stock(t, milk.ID))

	sale, err := f.sales.ProcessSale(cart(line(latte, 1), line(cappuccino, 2)), "")
	require.NoError(t, err)
	requireDecimal(t, "0", f.stock(t, milk.ID))
	assert.Len(t, sale.Items, 2)

	// one ledger entry per ingredient, not per line
	entries, err := f.ledgerRepo.FindBySale(sale.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	requireDecimal(t, "-5", entries[0].ChangeQty)
}

func TestProcessSale_Validation(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "2"})

	tests := []struct {
		name  string
		req   *ProcessSaleRequest
		field string
	}{
		{"empty cart", &ProcessSaleRequest{}, "items"},
		{"zero quantity", cart(line(bread, 0)), "items[0].quantity"},
		{"negative quantity", cart(line(bread, -1)), "items[0].quantity"},
		{"negative paid amount", &ProcessSaleRequest{Items: []SaleItemRequest{line(bread, 1)}, PaidAmount: dec("-1")}, "paid_amount"},
		{"paid amount past cents", &ProcessSaleRequest{Items: []SaleItemRequest{line(bread, 1)}, PaidAmount: dec("5.005")}, "paid_amount"},
		{"change amount past cents", &ProcessSaleRequest{Items: []SaleItemRequest{line(bread, 1)}, PaidAmount: dec("5"), ChangeAmount: decPtr("1.001")}, "change_amount"},
		{"unknown type", &ProcessSaleRequest{Items: []SaleItemRequest{line(bread, 1)}, Type: "drive-thru"}, "type"},
		{"unknown status", &ProcessSaleRequest{Items: []SaleItemRequest{line(bread, 1)}, Status: "lost"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sales.ProcessSale(tt.req, "")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	requireDecimal(t, "10", f.stock(t, flour.ID))
	assert.Equal(t, int64(0), f.count(t, &model.Sale{}))
}

func TestProcessSale_UnknownProductAndMissingRecipe(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "2"})

	_, err := f.sales.ProcessSale(cart(line(bread, 1), SaleItemRequest{ProductID: uuid.New(), Quantity: 1}), "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Resource)

	// a product whose recipe was cleared cannot be sold
	require.NoError(t, f.recipeRepo.DeleteByProduct(f.db, bread.ID))
	_, err = f.sales.ProcessSale(cart(line(bread, 1)), "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "no recipe")

	requireDecimal(t, "10", f.stock(t, flour.ID))
}

func TestProcessSale_OrderNumbers(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})

	req := cart(line(bread, 1))
	req.OrderNumber = "T-001"
	sale, err := f.sales.ProcessSale(req, "")
	require.NoError(t, err)
	assert.Equal(t, "T-001", sale.OrderNumber)

	dup := cart(line(bread, 1))
	dup.OrderNumber = "T-001"
	_, err = f.sales.ProcessSale(dup, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "order_number", ve.Field)
	requireDecimal(t, "9", f.stock(t, flour.ID))

	a, err := f.sales.ProcessSale(cart(line(bread, 1)), "")
	require.NoError(t, err)
	b, err := f.sales.ProcessSale(cart(line(bread, 1)), "")
	require.NoError(t, err)
	assert.NotEqual(t, a.OrderNumber, b.OrderNumber)
}

func TestProcessSale_ExplicitAmountsAndStatus(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})

	change := dec("0")
	sale, err := f.sales.ProcessSale(&ProcessSaleRequest{
		Items:         []SaleItemRequest{line(bread, 1)},
		Type:          model.SaleTakeOut,
		PaymentMethod: "gcash",
		PaidAmount:    dec("2"),
		ChangeAmount:  &change,
		Status:        model.SalePending,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.SaleTakeOut, sale.Type)
	assert.Equal(t, "gcash", sale.PaymentMethod)
	assert.Equal(t, model.SalePending, sale.Status)
	requireDecimal(t, "0", sale.ChangeAmount)
	requireDecimal(t, "2", sale.PaidAmount)
}

func TestProcessSale_PricesAreSnapshotted(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})

	sale, err := f.sales.ProcessSale(cart(line(bread, 1)), "")
	require.NoError(t, err)

	_, err = f.products.UpdateProduct(bread.ID, &ProductRequest{
		Name:         "Bread",
		CostPrice:    dec("2"),
		SellingPrice: dec("9"),
		CategoryID:   bread.CategoryID,
		Recipe:       []RecipeEntryInput{{IngredientID: flour.ID, QuantityRequired: dec("1")}},
	}, "tester")
	require.NoError(t, err)

	stored, err := f.sales.GetSale(sale.ID)
	require.NoError(t, err)
	requireDecimal(t, "4", stored.Items[0].UnitPrice)
	requireDecimal(t, "1.5", stored.Items[0].CostPrice)
	requireDecimal(t, "4", stored.Total)
}

func TestProcessSale_ConcurrentSalesCannotOversell(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "2"})

	const workers = 2
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		okCount int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 4 units = 8kg each; only one can fit in 10kg
			_, err := f.sales.ProcessSale(cart(line(bread, 4)), "")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			okCount++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, okCount)
	require.Len(t, errs, 1)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, errs[0], &stockErr)
	requireDecimal(t, "2", stockErr.Available)

	requireDecimal(t, "2", f.stock(t, flour.ID))
	requireDecimal(t, "2", f.counter(t, flour.ID))
	assert.Equal(t, int64(1), f.count(t, &model.Sale{}))
}

func TestProcessSale_ManyConcurrentSalesKeepStockNonNegative(t *testing.T) {
	f := newFixture(t)
	beans := f.ingredient(t, "Beans", "g", "100")
	espresso := f.product(t, "Espresso", "0.40", "2.00", map[*model.Ingredient]string{beans: "18"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.sales.ProcessSale(cart(line(espresso, 1)), "")
		}()
	}
	wg.Wait()

	// floor(100/18) = 5 sales fit
	assert.Equal(t, int64(5), f.count(t, &model.Sale{}))
	requireDecimal(t, "10", f.stock(t, beans.ID))
	requireDecimal(t, "10", f.counter(t, beans.ID))
}

func TestUpdateSaleStatus(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})

	newSale := func(status model.SaleStatus) *model.Sale {
		req := cart(line(bread, 1))
		req.Status = status
		sale, err := f.sales.ProcessSale(req, "")
		require.NoError(t, err)
		return sale
	}

	t.Run("kitchen workflow", func(t *testing.T) {
		sale := newSale(model.SalePending)
		updated, err := f.sales.UpdateSaleStatus(sale.ID, model.SalePreparing, "tester")
		require.NoError(t, err)
		assert.Equal(t, model.SalePreparing, updated.Status)

		updated, err = f.sales.UpdateSaleStatus(sale.ID, model.SaleCompleted, "tester")
		require.NoError(t, err)
		assert.Equal(t, model.SaleCompleted, updated.Status)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		sale := newSale(model.SalePending)
		updated, err := f.sales.UpdateSaleStatus(sale.ID, model.SalePending, "tester")
		require.NoError(t, err)
		assert.Equal(t, model.SalePending, updated.Status)
	})

	t.Run("terminal statuses", func(t *testing.T) {
		sale := newSale(model.SaleCompleted)
		_, err := f.sales.UpdateSaleStatus(sale.ID, model.SalePending, "tester")
		require.ErrorIs(t, err, ErrInvalidStatusTransition)

		_, err = f.sales.UpdateSaleStatus(sale.ID, model.SaleCancelled, "tester")
		require.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("cancel does not restock", func(t *testing.T) {
		before := f.stock(t, flour.ID)
		sale := newSale(model.SalePreparing)
		_, err := f.sales.UpdateSaleStatus(sale.ID, model.SaleCancelled, "tester")
		require.NoError(t, err)
		requireDecimal(t, before.Sub(dec("1")).String(), f.stock(t, flour.ID))
	})

	t.Run("bad input", func(t *testing.T) {
		sale := newSale(model.SalePending)
		var ve *ValidationError
		_, err := f.sales.UpdateSaleStatus(sale.ID, "shipped", "tester")
		require.ErrorAs(t, err, &ve)

		var nf *NotFoundError
		_, err = f.sales.UpdateSaleStatus(uuid.New(), model.SaleCompleted, "tester")
		require.ErrorAs(t, err, &nf)
	})
}

func TestListSalesAndStats(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "100")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})
	alice, bob := uuid.New(), uuid.New()

	sell := func(cashier uuid.UUID, status model.SaleStatus) {
		req := cart(line(bread, 1))
		req.Status = status
		_, err := f.sales.ProcessSale(req, cashier.String())
		require.NoError(t, err)
	}
	sell(alice, model.SalePending)
	sell(alice, model.SaleCompleted)
	sell(bob, model.SalePreparing)
	sell(bob, model.SaleCompleted)
	sell(bob, model.SaleCompleted)

	all, err := f.sales.ListSales(repository.SaleFilter{}, alice, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Total)

	own, err := f.sales.ListSales(repository.SaleFilter{}, alice, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)
	for _, s := range own.Data {
		assert.Equal(t, alice, *s.CashierID)
	}

	// a cashier cannot widen the filter to someone else
	own, err = f.sales.ListSales(repository.SaleFilter{CashierID: &bob}, alice, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)

	completed, err := f.sales.ListSales(repository.SaleFilter{Status: model.SaleCompleted, Limit: 2}, alice, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), completed.Total)
	assert.Len(t, completed.Data, 2)

	_, err = f.sales.ListSales(repository.SaleFilter{Status: "lost"}, alice, true)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	stats, err := f.sales.GetSaleStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Preparing)
	assert.Equal(t, int64(3), stats.CompletedToday)
}
