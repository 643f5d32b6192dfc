package service

import (
	"errors"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRequest is used for both create and update; the recipe is always sent in full
type ProductRequest struct {
	Name         string             `json:"name" validate:"required,max=255"`
	SKU          string             `json:"sku" validate:"max=50"`
	CostPrice    decimal.Decimal    `json:"cost_price" validate:"gte=0"`
	SellingPrice decimal.Decimal    `json:"selling_price" validate:"gte=0"`
	CategoryID   uuid.UUID          `json:"category_id" validate:"uuid_required"`
	Recipe       []RecipeEntryInput `json:"recipe" validate:"required,min=1,dive"`
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.ProductResponse, error)
	GetProduct(id uuid.UUID) (*model.ProductResponse, error)
	CreateProduct(req *ProductRequest, userID string) (*model.ProductResponse, error)
	UpdateProduct(id uuid.UUID, req *ProductRequest, userID string) (*model.ProductResponse, error)
	DeleteProduct(id uuid.UUID, userID string) error
	// Catalog lists what the POS screen can sell: products that have a recipe
	Catalog(filter repository.ProductFilter) ([]model.ProductResponse, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	recipes      RecipeRegistry
	availability AvailabilityService
	db           *gorm.DB
	notifier     Notifier
	log          *zap.Logger
}

func NewProductService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, recipes RecipeRegistry,
	availability AvailabilityService, db *gorm.DB, notifier Notifier, log *zap.Logger) ProductService {
	return &productService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		recipes:      recipes,
		availability: availability,
		db:           db,
		notifier:     notifier,
		log:          logger.Or(log),
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.ProductResponse, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	products, err := s.productRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	return s.availability.Decorate(products), nil
}

func (s *productService) Catalog(filter repository.ProductFilter) ([]model.ProductResponse, error) {
	all, err := s.ListProducts(filter)
	if err != nil {
		return nil, err
	}
	sellable := make([]model.ProductResponse, 0, len(all))
	for _, p := range all {
		if len(p.Recipe) > 0 {
			sellable = append(sellable, p)
		}
	}
	return sellable, nil
}

func (s *productService) GetProduct(id uuid.UUID) (*model.ProductResponse, error) {
	product, err := s.productRepo.FindByID(nil, id)
	if err != nil {
		return nil, translateNotFound(err, "product", id)
	}
	decorated := s.availability.Decorate([]model.Product{*product})
	return &decorated[0], nil
}

// CreateProduct stores the product and its recipe in one transaction
func (s *productService) CreateProduct(req *ProductRequest, userID string) (*model.ProductResponse, error) {
	if err := s.validate(req, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:         strings.TrimSpace(req.Name),
		SKU:          normalizeSKU(req.SKU),
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		CategoryID:   req.CategoryID,
	}
	product.CreatedBy = userID
	product.UpdatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		return s.recipes.SetRecipeTx(tx, product.ID, req.Recipe)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return s.afterWrite("product_created", product.ID)
}

// UpdateProduct rewrites the product fields and replaces its recipe
func (s *productService) UpdateProduct(id uuid.UUID, req *ProductRequest, userID string) (*model.ProductResponse, error) {
	if _, err := s.productRepo.FindByID(nil, id); err != nil {
		return nil, translateNotFound(err, "product", id)
	}
	if err := s.validate(req, id); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:         strings.TrimSpace(req.Name),
		SKU:          normalizeSKU(req.SKU),
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		CategoryID:   req.CategoryID,
	}
	product.ID = id
	product.UpdatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Update(tx, product); err != nil {
			return err
		}
		return s.recipes.SetRecipeTx(tx, id, req.Recipe)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product updated", zap.String("product_id", id.String()))
	return s.afterWrite("product_updated", id)
}

// DeleteProduct removes the recipe and soft-deletes the product; past sales keep their items
func (s *productService) DeleteProduct(id uuid.UUID, userID string) error {
	if _, err := s.productRepo.FindByID(nil, id); err != nil {
		return translateNotFound(err, "product", id)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Delete(tx, id, userID); err != nil {
			return err
		}
		return s.recipes.ClearRecipeTx(tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted", zap.String("product_id", id.String()))
	publish(s.notifier, map[string]interface{}{
		"type":       "product_update",
		"action":     "product_deleted",
		"product_id": id,
	})
	return nil
}

func (s *productService) validate(req *ProductRequest, currentID uuid.UUID) error {
	if err := validationFrom(req); err != nil {
		return err
	}
	if err := checkScale("cost_price", req.CostPrice, model.MoneyScale); err != nil {
		return err
	}
	if err := checkScale("selling_price", req.SellingPrice, model.MoneyScale); err != nil {
		return err
	}
	if err := validateRecipe(req.Recipe); err != nil {
		return err
	}

	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("category_id", "category %s does not exist", req.CategoryID)
		}
		return err
	}

	if sku := normalizeSKU(req.SKU); sku != nil {
		existing, err := s.productRepo.FindBySKU(*sku)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.ID != currentID {
			return newValidationError("sku", "SKU %s already exists", *sku)
		}
	}
	return nil
}

func (s *productService) afterWrite(action string, id uuid.UUID) (*model.ProductResponse, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, map[string]interface{}{
		"type":   "product_update",
		"action": action,
		"product": map[string]interface{}{
			"id":              product.ID,
			"name":            product.Name,
			"available_stock": product.AvailableStock,
			"stock_status":    product.StockStatus,
		},
	})
	return product, nil
}

func normalizeSKU(sku string) *string {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}
	return &sku
}
