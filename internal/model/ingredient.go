package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a raw, stock-tracked material consumed by products.
// Stock mirrors the sum of the ingredient's ledger entries and is only ever
// written together with a ledger append, under the same row lock.
type Ingredient struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required,max=255"`
	Unit     string          `gorm:"type:varchar(20);not null" json:"unit" validate:"required,max=20"`
	Stock    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"stock"`
	MinStock decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"min_stock"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// IsLow reports whether the ingredient is at or below its configured minimum
func (i *Ingredient) IsLow() bool {
	return i.MinStock.IsPositive() && i.Stock.LessThanOrEqual(i.MinStock)
}

// StockLedgerEntry is one immutable change to an ingredient's quantity.
// Positive ChangeQty is a restock or initial stock, negative is consumption.
type StockLedgerEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	ChangeQty    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"change_qty"`
	Reason       string          `gorm:"type:varchar(255);not null" json:"reason"`
	SaleID       *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (StockLedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

func (e *StockLedgerEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// Ledger reasons written by the inventory screens and the sale engine
const (
	ReasonInitialStock     = "initial stock"
	ReasonManualAdjustment = "manual adjustment"
	ReasonSalePrefix       = "Sale: "
)

// Decimal places of the quantity and money columns
const (
	QuantityScale int32 = 4
	MoneyScale    int32 = 2
)
