package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleType string

const (
	SaleDineIn   SaleType = "dine-in"
	SaleTakeOut  SaleType = "take-out"
	SaleDelivery SaleType = "delivery"
)

type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SalePreparing SaleStatus = "preparing"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// saleTransitions lists the statuses reachable from each status.
// Completed and cancelled sales are final.
var saleTransitions = map[SaleStatus][]SaleStatus{
	SalePending:   {SalePreparing, SaleCompleted, SaleCancelled},
	SalePreparing: {SaleCompleted, SaleCancelled},
	SaleCompleted: nil,
	SaleCancelled: nil,
}

func (s SaleStatus) Valid() bool {
	_, ok := saleTransitions[s]
	return ok
}

// CanTransitionTo reports whether a sale in status s may move to next
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	for _, allowed := range saleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (t SaleType) Valid() bool {
	switch t {
	case SaleDineIn, SaleTakeOut, SaleDelivery:
		return true
	}
	return false
}

type Sale struct {
	BaseModel
	OrderNumber   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	CashierID     *uuid.UUID      `gorm:"type:uuid;index" json:"cashier_id"`
	Cashier       *User           `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	Type          SaleType        `gorm:"type:varchar(20);not null;default:'dine-in'" json:"type"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CostTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_total"`
	Profit        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"profit"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	ChangeAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"change_amount"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem freezes the product prices that applied when the sale was made
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Profit    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"profit"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
