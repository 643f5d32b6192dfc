package service

import (
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockLedger is the source of truth for ingredient stock.
// Entries are only ever appended; a correction is another entry.
type StockLedger interface {
	// Record appends one entry in its own transaction, locking the ingredient row
	Record(ingredientID uuid.UUID, changeQty decimal.Decimal, reason, userID string) (*model.StockLedgerEntry, error)
	// RecordTx appends inside the caller's transaction. The caller must already hold
	// the ingredient's row lock (see IngredientRepository.LockForUpdate).
	RecordTx(tx *gorm.DB, ingredient *model.Ingredient, changeQty decimal.Decimal, reason string, saleID *uuid.UUID, userID string) (*model.StockLedgerEntry, error)
	CurrentStock(ingredientID uuid.UUID) (decimal.Decimal, error)
	CurrentStockTx(tx *gorm.DB, ingredientID uuid.UUID) (decimal.Decimal, error)
	History(ingredientID uuid.UUID, limit int) ([]model.StockLedgerEntry, error)
}

type stockLedger struct {
	ingredientRepo repository.IngredientRepository
	ledgerRepo     repository.LedgerRepository
	db             *gorm.DB
	notifier       Notifier
	log            *zap.Logger
}

func NewStockLedger(iRepo repository.IngredientRepository, lRepo repository.LedgerRepository, db *gorm.DB, notifier Notifier, log *zap.Logger) StockLedger {
	return &stockLedger{
		ingredientRepo: iRepo,
		ledgerRepo:     lRepo,
		db:             db,
		notifier:       notifier,
		log:            logger.Or(log),
	}
}

func (s *stockLedger) Record(ingredientID uuid.UUID, changeQty decimal.Decimal, reason, userID string) (*model.StockLedgerEntry, error) {
	reason = strings.TrimSpace(reason)
	if changeQty.IsZero() {
		return nil, newValidationError("change_qty", "change_qty must not be zero")
	}
	if err := checkScale("change_qty", changeQty, model.QuantityScale); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, newValidationError("reason", "reason is required")
	}

	var (
		entry      *model.StockLedgerEntry
		ingredient model.Ingredient
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.ingredientRepo.LockForUpdate(tx, []uuid.UUID{ingredientID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return notFound("ingredient", ingredientID)
		}
		ingredient = locked[0]

		entry, err = s.RecordTx(tx, &ingredient, changeQty, reason, nil, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock recorded",
		zap.String("ingredient_id", ingredientID.String()),
		zap.String("change_qty", changeQty.String()),
		zap.String("new_stock", ingredient.Stock.String()),
		zap.String("reason", reason))
	publish(s.notifier, map[string]interface{}{
		"type":   "stock_update",
		"action": "stock_recorded",
		"ingredient": map[string]interface{}{
			"id":    ingredient.ID,
			"name":  ingredient.Name,
			"stock": ingredient.Stock,
			"unit":  ingredient.Unit,
		},
		"change_qty": changeQty,
		"reason":     reason,
	})

	return entry, nil
}

func (s *stockLedger) RecordTx(tx *gorm.DB, ingredient *model.Ingredient, changeQty decimal.Decimal, reason string, saleID *uuid.UUID, userID string) (*model.StockLedgerEntry, error) {
	current, err := s.ledgerRepo.SumByIngredient(tx, ingredient.ID)
	if err != nil {
		return nil, err
	}

	newStock := current.Add(changeQty)
	if newStock.IsNegative() {
		return nil, &InsufficientStockError{
			IngredientID: ingredient.ID,
			Ingredient:   ingredient.Name,
			Unit:         ingredient.Unit,
			Needed:       changeQty.Neg(),
			Available:    current,
		}
	}

	entry := &model.StockLedgerEntry{
		IngredientID: ingredient.ID,
		ChangeQty:    changeQty,
		Reason:       reason,
		SaleID:       saleID,
		CreatedBy:    userID,
	}
	if err := s.ledgerRepo.Append(tx, entry); err != nil {
		return nil, err
	}

	// Materialized counter, written under the same lock as the append
	if err := s.ingredientRepo.UpdateStock(tx, ingredient.ID, newStock, userID); err != nil {
		return nil, err
	}
	ingredient.Stock = newStock

	return entry, nil
}

func (s *stockLedger) CurrentStock(ingredientID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.ingredientRepo.FindByID(ingredientID); err != nil {
		return decimal.Zero, translateNotFound(err, "ingredient", ingredientID)
	}
	return s.ledgerRepo.SumByIngredient(s.db, ingredientID)
}

func (s *stockLedger) CurrentStockTx(tx *gorm.DB, ingredientID uuid.UUID) (decimal.Decimal, error) {
	return s.ledgerRepo.SumByIngredient(tx, ingredientID)
}

func (s *stockLedger) History(ingredientID uuid.UUID, limit int) ([]model.StockLedgerEntry, error) {
	if _, err := s.ingredientRepo.FindByID(ingredientID); err != nil {
		return nil, translateNotFound(err, "ingredient", ingredientID)
	}
	return s.ledgerRepo.FindByIngredient(ingredientID, limit)
}
