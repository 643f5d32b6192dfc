package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description string `gorm:"type:text" json:"description"`

	// Filled by list queries only
	ProductsCount int64 `gorm:"-" json:"products_count"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name"`
	SKU          *string         `gorm:"type:varchar(50);uniqueIndex" json:"sku"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"selling_price"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// Relasi
	Recipe []RecipeEntry `gorm:"foreignKey:ProductID" json:"recipe,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// RecipeEntry is the quantity of one ingredient consumed per unit of product sold.
// Entries are hard-deleted and re-inserted whenever a recipe is edited.
type RecipeEntry struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_product_ingredient" json:"product_id"`
	IngredientID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_product_ingredient" json:"ingredient_id"`
	Ingredient       *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	QuantityRequired decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_required"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (RecipeEntry) TableName() string {
	return "recipe_entries"
}

// ProductResponse is a product decorated with its computed availability
type ProductResponse struct {
	Product
	AvailableStock int64  `json:"available_stock"`
	StockStatus    string `json:"stock_status"`
}

func (e *RecipeEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
