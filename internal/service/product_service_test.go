package service

import (
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_DecoratesAvailability(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	sugar := f.ingredient(t, "Sugar", "kg", "3")

	cake := f.product(t, "Cake", "2.00", "6.00", map[*model.Ingredient]string{flour: "1", sugar: "0.5"})
	assert.Equal(t, int64(6), cake.AvailableStock)
	assert.Equal(t, StatusInStock, cake.StockStatus)
	assert.Contains(t, f.notifier.actions(), "product_created")

	_, err := f.ledger.Record(sugar.ID, dec("-2"), "spoiled", "tester")
	require.NoError(t, err)

	got, err := f.products.GetProduct(cake.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AvailableStock)
	assert.Equal(t, StatusLowStock, got.StockStatus)
	require.Len(t, got.Recipe, 2)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	cat := f.category(t, "Bakery")
	recipe := []RecipeEntryInput{{IngredientID: flour.ID, QuantityRequired: dec("1")}}

	_, err := f.products.CreateProduct(&ProductRequest{
		Name: "Bread", SKU: "BRD-1", CostPrice: dec("1"), SellingPrice: dec("2"), CategoryID: cat.ID, Recipe: recipe,
	}, "tester")
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   ProductRequest
		field string
	}{
		{"missing name", ProductRequest{CategoryID: cat.ID, Recipe: recipe}, "name"},
		{"no recipe", ProductRequest{Name: "Roll", CategoryID: cat.ID}, "recipe"},
		{"negative price", ProductRequest{Name: "Roll", SellingPrice: dec("-1"), CategoryID: cat.ID, Recipe: recipe}, "selling_price"},
		{"price past cents", ProductRequest{Name: "Roll", SellingPrice: dec("2.499"), CategoryID: cat.ID, Recipe: recipe}, "selling_price"},
		{"cost past cents", ProductRequest{Name: "Roll", CostPrice: dec("0.125"), CategoryID: cat.ID, Recipe: recipe}, "cost_price"},
		{"missing category", ProductRequest{Name: "Roll", Recipe: recipe}, "category_id"},
		{"unknown category", ProductRequest{Name: "Roll", CategoryID: uuid.New(), Recipe: recipe}, "category_id"},
		{"duplicate sku", ProductRequest{Name: "Roll", SKU: " BRD-1 ", CategoryID: cat.ID, Recipe: recipe}, "sku"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.products.CreateProduct(&req, "tester")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("unknown ingredient rolls back the product", func(t *testing.T) {
		_, err := f.products.CreateProduct(&ProductRequest{
			Name: "Ghost", CategoryID: cat.ID,
			Recipe: []RecipeEntryInput{{IngredientID: uuid.New(), QuantityRequired: dec("1")}},
		}, "tester")
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)

		found, err := f.products.ListProducts(repository.ProductFilter{Search: "ghost"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	milk := f.ingredient(t, "Milk", "L", "4")
	cat := f.category(t, "Bakery")

	created, err := f.products.CreateProduct(&ProductRequest{
		Name: "Bread", SKU: "BRD-1", CostPrice: dec("1"), SellingPrice: dec("2"), CategoryID: cat.ID,
		Recipe: []RecipeEntryInput{{IngredientID: flour.ID, QuantityRequired: dec("1")}},
	}, "tester")
	require.NoError(t, err)

	// keeping its own SKU is not a duplicate
	updated, err := f.products.UpdateProduct(created.ID, &ProductRequest{
		Name: "Milk Bread", SKU: "BRD-1", CostPrice: dec("1.20"), SellingPrice: dec("2.50"), CategoryID: cat.ID,
		Recipe: []RecipeEntryInput{
			{IngredientID: flour.ID, QuantityRequired: dec("1")},
			{IngredientID: milk.ID, QuantityRequired: dec("1")},
		},
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Milk Bread", updated.Name)
	requireDecimal(t, "2.5", updated.SellingPrice)
	assert.Len(t, updated.Recipe, 2)
	assert.Equal(t, int64(4), updated.AvailableStock)

	_, err = f.products.UpdateProduct(uuid.New(), &ProductRequest{Name: "x"}, "tester")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, f.products.DeleteProduct(created.ID, "tester"))
	_, err = f.products.GetProduct(created.ID)
	require.ErrorAs(t, err, &nf)

	// the SKU is free again and the ingredients are no longer referenced
	_, err = f.products.CreateProduct(&ProductRequest{
		Name: "Bread", SKU: "BRD-1", CategoryID: cat.ID,
		Recipe: []RecipeEntryInput{{IngredientID: flour.ID, QuantityRequired: dec("1")}},
	}, "tester")
	require.NoError(t, err)
	require.NoError(t, f.inventory.DeleteIngredient(milk.ID, "tester"))
	assert.Contains(t, f.notifier.actions(), "product_deleted")
}

func TestListProductsAndCatalog(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")
	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})
	f.product(t, "Bagel", "1.00", "3.00", map[*model.Ingredient]string{flour: "0.5"})

	all, err := f.products.ListProducts(repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bagel", all[0].Name)

	found, err := f.products.ListProducts(repository.ProductFilter{Search: "  BRE "})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bread.ID, found[0].ID)

	byCategory, err := f.products.ListProducts(repository.ProductFilter{CategoryID: bread.CategoryID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	require.NoError(t, f.recipeRepo.DeleteByProduct(f.db, bread.ID))
	catalog, err := f.products.Catalog(repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Bagel", catalog[0].Name)
}

func TestCategoryService(t *testing.T) {
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", "kg", "10")

	drinks := f.category(t, "Drinks")
	updated, err := f.categories.UpdateCategory(drinks.ID, &CategoryRequest{Name: " Beverages ", Description: "cold and hot"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", updated.Name)

	_, err = f.categories.CreateCategory(&CategoryRequest{}, "tester")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	bread := f.product(t, "Bread", "1.50", "4.00", map[*model.Ingredient]string{flour: "1"})
	err = f.categories.DeleteCategory(bread.CategoryID, "tester")
	require.ErrorAs(t, err, &ve)

	require.NoError(t, f.products.DeleteProduct(bread.ID, "tester"))
	require.NoError(t, f.categories.DeleteCategory(bread.CategoryID, "tester"))

	_, err = f.categories.GetCategory(bread.CategoryID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	list, err := f.categories.ListCategories("bev")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, drinks.ID, list[0].ID)
}
