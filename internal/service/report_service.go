package service

import (
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

// DashboardStats is the summary card row of the admin dashboard
type DashboardStats struct {
	Days                int                      `json:"days"`
	Sales               *repository.SalesSummary `json:"sales"`
	LowStockProducts    int64                    `json:"low_stock_products"`
	TotalIngredients    int                      `json:"total_ingredients"`
	LowStockIngredients []model.Ingredient       `json:"low_stock_ingredients"`
}

type ReportService interface {
	GetDashboardStats(days int) (*DashboardStats, error)
	GetSalesOverTime(days int) ([]repository.SalesPerDay, error)
	GetSalesPerProduct(days int) ([]repository.ProductSales, error)
	GetSalesByPaymentMethod(days int) ([]repository.PaymentMethodSales, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type reportService struct {
	reportRepo     repository.ReportRepository
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	availability   AvailabilityService
	now            func() time.Time
}

func NewReportService(rRepo repository.ReportRepository, pRepo repository.ProductRepository, iRepo repository.IngredientRepository, availability AvailabilityService) ReportService {
	return &reportService{
		reportRepo:     rRepo,
		productRepo:    pRepo,
		ingredientRepo: iRepo,
		availability:   availability,
		now:            time.Now,
	}
}

// since turns a "last N days" window into its start time; N <= 0 means 30
func (s *reportService) since(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return s.now().AddDate(0, 0, -days)
}

func (s *reportService) GetDashboardStats(days int) (*DashboardStats, error) {
	if days <= 0 {
		days = 30
	}
	summary, err := s.reportRepo.GetSalesSummary(s.since(days))
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	var lowProducts int64
	for _, p := range s.availability.Decorate(products) {
		if p.AvailableStock <= s.availability.LowStockThreshold() {
			lowProducts++
		}
	}

	ingredients, err := s.ingredientRepo.FindAll("")
	if err != nil {
		return nil, err
	}
	lowIngredients := make([]model.Ingredient, 0)
	for _, ing := range ingredients {
		if ing.IsLow() {
			lowIngredients = append(lowIngredients, ing)
		}
	}

	return &DashboardStats{
		Days:                days,
		Sales:               summary,
		LowStockProducts:    lowProducts,
		TotalIngredients:    len(ingredients),
		LowStockIngredients: lowIngredients,
	}, nil
}

func (s *reportService) GetSalesOverTime(days int) ([]repository.SalesPerDay, error) {
	return s.reportRepo.GetSalesOverTime(s.since(days))
}

func (s *reportService) GetSalesPerProduct(days int) ([]repository.ProductSales, error) {
	return s.reportRepo.GetSalesPerProduct(s.since(days), 10)
}

func (s *reportService) GetSalesByPaymentMethod(days int) ([]repository.PaymentMethodSales, error) {
	return s.reportRepo.GetSalesByPaymentMethod(s.since(days))
}

func (s *reportService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	return s.reportRepo.GetStockMovement(s.since(days), s.now())
}
