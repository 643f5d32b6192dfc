package repository

import (
	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository is append-only: there is deliberately no update or delete
type LedgerRepository interface {
	Append(tx *gorm.DB, entry *model.StockLedgerEntry) error
	SumByIngredient(tx *gorm.DB, ingredientID uuid.UUID) (decimal.Decimal, error)
	FindByIngredient(ingredientID uuid.UUID, limit int) ([]model.StockLedgerEntry, error)
	FindBySale(saleID uuid.UUID) ([]model.StockLedgerEntry, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) Append(tx *gorm.DB, entry *model.StockLedgerEntry) error {
	return tx.Create(entry).Error
}

func (r *ledgerRepo) SumByIngredient(tx *gorm.DB, ingredientID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&model.StockLedgerEntry{}).
		Select("COALESCE(SUM(change_qty), 0)").
		Where("ingredient_id = ?", ingredientID).
		Row().
		Scan(&total)
	return total, err
}

func (r *ledgerRepo) FindByIngredient(ingredientID uuid.UUID, limit int) ([]model.StockLedgerEntry, error) {
	var entries []model.StockLedgerEntry
	q := r.db.Where("ingredient_id = ?", ingredientID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) FindBySale(saleID uuid.UUID) ([]model.StockLedgerEntry, error) {
	var entries []model.StockLedgerEntry
	err := r.db.Preload("Ingredient").Where("sale_id = ?", saleID).Find(&entries).Error
	return entries, err
}
