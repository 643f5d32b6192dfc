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

type CreateIngredientRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Unit     string          `json:"unit" validate:"required,max=20"`
	Stock    decimal.Decimal `json:"stock" validate:"gte=0"`
	MinStock decimal.Decimal `json:"min_stock" validate:"gte=0"`
}

// UpdateIngredientRequest edits the descriptive fields. A non-nil Stock is the
// counted quantity on hand; the difference is booked as a manual adjustment.
type UpdateIngredientRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Unit     string           `json:"unit" validate:"required,max=20"`
	MinStock decimal.Decimal  `json:"min_stock" validate:"gte=0"`
	Stock    *decimal.Decimal `json:"stock"`
}

type AdjustStockRequest struct {
	ChangeQty decimal.Decimal `json:"change_qty"`
	Reason    string          `json:"reason" validate:"max=255"`
}

type InventoryService interface {
	ListIngredients(search string) ([]model.Ingredient, error)
	GetIngredient(id uuid.UUID) (*model.Ingredient, error)
	CreateIngredient(req *CreateIngredientRequest, userID string) (*model.Ingredient, error)
	UpdateIngredient(id uuid.UUID, req *UpdateIngredientRequest, userID string) (*model.Ingredient, error)
	AdjustStock(id uuid.UUID, req *AdjustStockRequest, userID string) (*model.StockLedgerEntry, error)
	DeleteIngredient(id uuid.UUID, userID string) error
	GetStock(id uuid.UUID) (decimal.Decimal, error)
	GetHistory(id uuid.UUID, limit int) ([]model.StockLedgerEntry, error)
}

type inventoryService struct {
	ingredientRepo repository.IngredientRepository
	ledger         StockLedger
	db             *gorm.DB
	notifier       Notifier
	log            *zap.Logger
}

func NewInventoryService(iRepo repository.IngredientRepository, ledger StockLedger, db *gorm.DB, notifier Notifier, log *zap.Logger) InventoryService {
	return &inventoryService{
		ingredientRepo: iRepo,
		ledger:         ledger,
		db:             db,
		notifier:       notifier,
		log:            logger.Or(log),
	}
}

func (s *inventoryService) ListIngredients(search string) ([]model.Ingredient, error) {
	return s.ingredientRepo.FindAll(strings.TrimSpace(search))
}

func (s *inventoryService) GetIngredient(id uuid.UUID) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		return nil, translateNotFound(err, "ingredient", id)
	}
	return ingredient, nil
}

// CreateIngredient saves the ingredient and books its opening quantity as "initial stock"
func (s *inventoryService) CreateIngredient(req *CreateIngredientRequest, userID string) (*model.Ingredient, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	if err := checkScale("stock", req.Stock, model.QuantityScale); err != nil {
		return nil, err
	}
	if err := checkScale("min_stock", req.MinStock, model.QuantityScale); err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{
		Name:     strings.TrimSpace(req.Name),
		Unit:     strings.TrimSpace(req.Unit),
		MinStock: req.MinStock,
	}
	ingredient.CreatedBy = userID
	ingredient.UpdatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ingredientRepo.Create(tx, ingredient); err != nil {
			return err
		}
		if !req.Stock.IsPositive() {
			return nil
		}
		_, err := s.ledger.RecordTx(tx, ingredient, req.Stock, model.ReasonInitialStock, nil, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ingredient created",
		zap.String("ingredient_id", ingredient.ID.String()),
		zap.String("name", ingredient.Name),
		zap.String("stock", ingredient.Stock.String()))
	s.broadcast("ingredient_created", ingredient)
	return ingredient, nil
}

func (s *inventoryService) UpdateIngredient(id uuid.UUID, req *UpdateIngredientRequest, userID string) (*model.Ingredient, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	if req.Stock != nil && req.Stock.IsNegative() {
		return nil, newValidationError("stock", "stock must not be negative")
	}
	if err := checkScale("min_stock", req.MinStock, model.QuantityScale); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if err := checkScale("stock", *req.Stock, model.QuantityScale); err != nil {
			return nil, err
		}
	}

	var updated model.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.ingredientRepo.LockForUpdate(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return notFound("ingredient", id)
		}
		updated = locked[0]

		updated.Name = strings.TrimSpace(req.Name)
		updated.Unit = strings.TrimSpace(req.Unit)
		updated.MinStock = req.MinStock
		updated.UpdatedBy = userID
		if err := s.ingredientRepo.Update(tx, &updated); err != nil {
			return err
		}

		if req.Stock == nil {
			return nil
		}
		current, err := s.ledger.CurrentStockTx(tx, id)
		if err != nil {
			return err
		}
		diff := req.Stock.Sub(current)
		if diff.IsZero() {
			return nil
		}
		_, err = s.ledger.RecordTx(tx, &updated, diff, model.ReasonManualAdjustment, nil, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ingredient updated",
		zap.String("ingredient_id", updated.ID.String()),
		zap.String("stock", updated.Stock.String()))
	s.broadcast("ingredient_updated", &updated)
	return &updated, nil
}

// AdjustStock books a signed correction; the reason defaults to "manual adjustment"
func (s *inventoryService) AdjustStock(id uuid.UUID, req *AdjustStockRequest, userID string) (*model.StockLedgerEntry, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = model.ReasonManualAdjustment
	}
	return s.ledger.Record(id, req.ChangeQty, reason, userID)
}

// DeleteIngredient is refused while a live product's recipe still needs the ingredient
func (s *inventoryService) DeleteIngredient(id uuid.UUID, userID string) error {
	ingredient, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		return translateNotFound(err, "ingredient", id)
	}

	used, err := s.ingredientRepo.CountRecipesUsing(id)
	if err != nil {
		return err
	}
	if used > 0 {
		return newValidationError("ingredient", "%s is used by %d product recipe(s)", ingredient.Name, used)
	}

	if err := s.ingredientRepo.Delete(id, userID); err != nil {
		return err
	}

	s.log.Info("ingredient deleted", zap.String("ingredient_id", id.String()))
	s.broadcast("ingredient_deleted", ingredient)
	return nil
}

func (s *inventoryService) GetStock(id uuid.UUID) (decimal.Decimal, error) {
	return s.ledger.CurrentStock(id)
}

func (s *inventoryService) GetHistory(id uuid.UUID, limit int) ([]model.StockLedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.ledger.History(id, limit)
}

func (s *inventoryService) broadcast(action string, ingredient *model.Ingredient) {
	publish(s.notifier, map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"ingredient": map[string]interface{}{
			"id":    ingredient.ID,
			"name":  ingredient.Name,
			"stock": ingredient.Stock,
			"unit":  ingredient.Unit,
		},
	})
}
