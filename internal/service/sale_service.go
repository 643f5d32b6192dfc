package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

// ProcessSaleRequest is the checkout payload of the POS screen.
// Everything except the items and the paid amount has a default.
type ProcessSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	OrderNumber   string            `json:"order_number" validate:"max=50"`
	Type          model.SaleType    `json:"type"`
	PaymentMethod string            `json:"payment_method" validate:"max=20"`
	PaidAmount    decimal.Decimal   `json:"paid_amount" validate:"gte=0"`
	ChangeAmount  *decimal.Decimal  `json:"change_amount"`
	Status        model.SaleStatus  `json:"status"`
}

type SaleService interface {
	ProcessSale(req *ProcessSaleRequest, cashierID string) (*model.Sale, error)
	UpdateSaleStatus(saleID uuid.UUID, status model.SaleStatus, userID string) (*model.Sale, error)
	GetSale(saleID uuid.UUID) (*model.Sale, error)
	ListSales(filter repository.SaleFilter, viewerID uuid.UUID, viewAll bool) (*repository.SalePage, error)
	GetSaleStats() (*repository.SaleStats, error)
}

type saleService struct {
	saleRepo       repository.SaleRepository
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	ledger         StockLedger
	db             *gorm.DB
	notifier       Notifier
	log            *zap.Logger
}

func NewSaleService(sRepo repository.SaleRepository, pRepo repository.ProductRepository, iRepo repository.IngredientRepository,
	ledger StockLedger, db *gorm.DB, notifier Notifier, log *zap.Logger) SaleService {
	return &saleService{
		saleRepo:       sRepo,
		productRepo:    pRepo,
		ingredientRepo: iRepo,
		ledger:         ledger,
		db:             db,
		notifier:       notifier,
		log:            logger.Or(log),
	}
}

// ProcessSale checks, deducts and records a whole cart in one transaction.
// Either every ledger entry, the sale and all its items are written, or nothing is.
func (s *saleService) ProcessSale(req *ProcessSaleRequest, cashierID string) (*model.Sale, error) {
	if err := normalizeSaleRequest(req); err != nil {
		return nil, err
	}

	var (
		sale    *model.Sale
		touched []model.Ingredient
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderNumber, err := s.resolveOrderNumber(tx, req.OrderNumber)
		if err != nil {
			return err
		}

		products, err := s.loadProducts(tx, req.Items)
		if err != nil {
			return err
		}

		needed, err := aggregateIngredients(req.Items, products)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(needed))
		for id := range needed {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		locked, err := s.ingredientRepo.LockForUpdate(tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Ingredient, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		for _, id := range ids {
			ingredient, ok := byID[id]
			if !ok {
				return notFound("ingredient", id)
			}
			available, err := s.ledger.CurrentStockTx(tx, id)
			if err != nil {
				return err
			}
			if available.LessThan(needed[id]) {
				return &InsufficientStockError{
					IngredientID: id,
					Ingredient:   ingredient.Name,
					Unit:         ingredient.Unit,
					Needed:       needed[id],
					Available:    available,
				}
			}
		}

		saleID := uuid.New()
		reason := model.ReasonSalePrefix + orderNumber
		for _, id := range ids {
			if _, err := s.ledger.RecordTx(tx, byID[id], needed[id].Neg(), reason, &saleID, cashierID); err != nil {
				return err
			}
			touched = append(touched, *byID[id])
		}

		sale = buildSale(saleID, orderNumber, req, products, cashierID)
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}
		for i := range sale.Items {
			p := products[sale.Items[i].ProductID]
			sale.Items[i].Product = &p
		}
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.log.Warn("sale rejected",
				zap.String("ingredient_id", stockErr.IngredientID.String()),
				zap.String("ingredient", stockErr.Ingredient),
				zap.String("needed", stockErr.Needed.String()),
				zap.String("available", stockErr.Available.String()))
		}
		return nil, err
	}

	s.log.Info("sale processed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("order_number", sale.OrderNumber),
		zap.String("total", sale.Total.String()),
		zap.Int("items", len(sale.Items)))

	stock := make([]map[string]interface{}, 0, len(touched))
	for _, ing := range touched {
		stock = append(stock, map[string]interface{}{
			"id":    ing.ID,
			"name":  ing.Name,
			"stock": ing.Stock,
			"unit":  ing.Unit,
		})
	}
	publish(s.notifier, map[string]interface{}{
		"type":         "stock_update",
		"action":       "sale_created",
		"sale_id":      sale.ID,
		"order_number": sale.OrderNumber,
		"ingredients":  stock,
	})

	return sale, nil
}

func normalizeSaleRequest(req *ProcessSaleRequest) error {
	if req == nil {
		return newValidationError("items", "at least one item is required")
	}
	if err := validationFrom(req); err != nil {
		return err
	}
	if req.PaidAmount.IsNegative() {
		return newValidationError("paid_amount", "paid_amount must not be negative")
	}
	if req.ChangeAmount != nil && req.ChangeAmount.IsNegative() {
		return newValidationError("change_amount", "change_amount must not be negative")
	}
	if err := checkScale("paid_amount", req.PaidAmount, model.MoneyScale); err != nil {
		return err
	}
	if req.ChangeAmount != nil {
		if err := checkScale("change_amount", *req.ChangeAmount, model.MoneyScale); err != nil {
			return err
		}
	}

	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if req.Type == "" {
		req.Type = model.SaleDineIn
	}
	if !req.Type.Valid() {
		return newValidationError("type", "type must be one of dine-in, take-out, delivery")
	}
	if req.Status == "" {
		req.Status = model.SaleCompleted
	}
	if !req.Status.Valid() {
		return newValidationError("status", "status must be one of pending, preparing, completed, cancelled")
	}
	return nil
}

// resolveOrderNumber keeps the caller's order number if it is free, or generates one
func (s *saleService) resolveOrderNumber(tx *gorm.DB, requested string) (string, error) {
	if requested != "" {
		exists, err := s.saleRepo.OrderNumberExists(tx, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", newValidationError("order_number", "order number %s is already used", requested)
		}
		return requested, nil
	}

	for attempt := 0; attempt < 5; attempt++ {
		candidate := generateOrderNumber()
		exists, err := s.saleRepo.OrderNumberExists(tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", errors.New("could not generate a unique order number")
}

func generateOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SALE-" + strings.ToUpper(hex[:12])
}

func (s *saleService) loadProducts(tx *gorm.DB, items []SaleItemRequest) (map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := s.productRepo.FindByIDs(tx, ids)
	if err != nil {
		return nil, err
	}

	products := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	for _, item := range items {
		if _, ok := products[item.ProductID]; !ok {
			return nil, notFound("product", item.ProductID)
		}
	}
	return products, nil
}

// aggregateIngredients sums quantity_required x quantity per ingredient over the whole cart,
// so two lines sharing an ingredient are checked against their combined need
func aggregateIngredients(items []SaleItemRequest, products map[uuid.UUID]model.Product) (map[uuid.UUID]decimal.Decimal, error) {
	needed := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range items {
		product := products[item.ProductID]
		if len(product.Recipe) == 0 {
			return nil, newValidationError("items", "product %s has no recipe", product.Name)
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		for _, entry := range product.Recipe {
			if !entry.QuantityRequired.IsPositive() {
				continue
			}
			needed[entry.IngredientID] = needed[entry.IngredientID].Add(entry.QuantityRequired.Mul(qty))
		}
	}
	return needed, nil
}

func buildSale(id uuid.UUID, orderNumber string, req *ProcessSaleRequest, products map[uuid.UUID]model.Product, cashierID string) *model.Sale {
	sale := &model.Sale{
		OrderNumber:   orderNumber,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		PaidAmount:    req.PaidAmount,
		Status:        req.Status,
	}
	sale.ID = id
	sale.CreatedBy = cashierID
	sale.UpdatedBy = cashierID
	if uid, err := uuid.Parse(cashierID); err == nil {
		sale.CashierID = &uid
	}

	for _, item := range req.Items {
		product := products[item.ProductID]
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal := product.SellingPrice.Mul(qty)
		cost := product.CostPrice.Mul(qty)

		sale.Items = append(sale.Items, model.SaleItem{
			SaleID:    id,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.SellingPrice,
			CostPrice: product.CostPrice,
			Subtotal:  subtotal,
			Profit:    subtotal.Sub(cost),
		})
		sale.Total = sale.Total.Add(subtotal)
		sale.CostTotal = sale.CostTotal.Add(cost)
	}
	sale.Profit = sale.Total.Sub(sale.CostTotal)

	if req.ChangeAmount != nil {
		sale.ChangeAmount = *req.ChangeAmount
	} else if change := req.PaidAmount.Sub(sale.Total); change.IsPositive() {
		sale.ChangeAmount = change
	}
	return sale
}

// UpdateSaleStatus moves a sale along the kitchen workflow. It never touches stock,
// not even on cancellation.
func (s *saleService) UpdateSaleStatus(saleID uuid.UUID, status model.SaleStatus, userID string) (*model.Sale, error) {
	if !status.Valid() {
		return nil, newValidationError("status", "status must be one of pending, preparing, completed, cancelled")
	}

	var previous model.SaleStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sale, err := s.saleRepo.LockByID(tx, saleID)
		if err != nil {
			return translateNotFound(err, "sale", saleID)
		}
		previous = sale.Status
		if sale.Status == status {
			return nil
		}
		if !sale.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, sale.Status, status)
		}
		return s.saleRepo.UpdateStatus(tx, saleID, status, userID)
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, translateNotFound(err, "sale", saleID)
	}

	if previous != status {
		s.log.Info("sale status updated",
			zap.String("order_number", sale.OrderNumber),
			zap.String("from", string(previous)),
			zap.String("to", string(status)))
		publish(s.notifier, map[string]interface{}{
			"type":         "sale_update",
			"action":       "status_updated",
			"sale_id":      sale.ID,
			"order_number": sale.OrderNumber,
			"status":       sale.Status,
		})
	}
	return sale, nil
}

func (s *saleService) GetSale(saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, translateNotFound(err, "sale", saleID)
	}
	return sale, nil
}

// ListSales pages through sales. Viewers without the view-all privilege only see their own.
func (s *saleService) ListSales(filter repository.SaleFilter, viewerID uuid.UUID, viewAll bool) (*repository.SalePage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newValidationError("status", "unknown status %s", filter.Status)
	}
	if !viewAll {
		filter.CashierID = &viewerID
	}
	return s.saleRepo.FindAll(filter)
}

func (s *saleService) GetSaleStats() (*repository.SaleStats, error) {
	return s.saleRepo.GetStats(time.Now())
}
