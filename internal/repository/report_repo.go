package repository

import (
	"time"

	"go-pos-inventory/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementData untuk chart data: ingredient quantities in and out per day
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// SalesSummary totals completed sales over a period
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	TotalOrders  int64           `json:"total_orders"`
}

type SalesPerDay struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type ProductSales struct {
	Name      string          `json:"name"`
	TotalSold int64           `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type PaymentMethodSales struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int64           `json:"count"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// ReportRepository holds the read-only aggregations behind the dashboard.
// Only completed sales count towards revenue figures.
type ReportRepository interface {
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetSalesSummary(startDate time.Time) (*SalesSummary, error)
	GetSalesOverTime(startDate time.Time) ([]SalesPerDay, error)
	GetSalesPerProduct(startDate time.Time, limit int) ([]ProductSales, error)
	GetSalesByPaymentMethod(startDate time.Time) ([]PaymentMethodSales, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockLedgerEntry{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN change_qty > 0 THEN change_qty ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN change_qty < 0 THEN -change_qty ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		data.Date = dayOnly(data.Date)
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *reportRepo) GetSalesSummary(startDate time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	err := r.completedSince(startDate).
		Select("COALESCE(SUM(total), 0), COALESCE(SUM(profit), 0), COUNT(*)").
		Row().
		Scan(&summary.TotalRevenue, &summary.TotalProfit, &summary.TotalOrders)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *reportRepo) GetSalesOverTime(startDate time.Time) ([]SalesPerDay, error) {
	rows, err := r.completedSince(startDate).
		Select("DATE(created_at) as date, COALESCE(SUM(total), 0) as revenue, COALESCE(SUM(profit), 0) as profit").
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SalesPerDay
	for rows.Next() {
		var day SalesPerDay
		if err := rows.Scan(&day.Date, &day.Revenue, &day.Profit); err != nil {
			return nil, err
		}
		day.Date = dayOnly(day.Date)
		results = append(results, day)
	}
	return results, rows.Err()
}

func (r *reportRepo) GetSalesPerProduct(startDate time.Time, limit int) ([]ProductSales, error) {
	var results []ProductSales
	err := r.db.Table("sale_items").
		Select("products.name as name, SUM(sale_items.quantity) as total_sold, SUM(sale_items.subtotal) as revenue").
		Joins("JOIN products ON sale_items.product_id = products.id").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.status = ? AND sales.created_at >= ? AND sales.deleted_at IS NULL", model.SaleCompleted, startDate).
		Group("products.id, products.name").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *reportRepo) GetSalesByPaymentMethod(startDate time.Time) ([]PaymentMethodSales, error) {
	var results []PaymentMethodSales
	err := r.completedSince(startDate).
		Select("payment_method, COUNT(*) as count, COALESCE(SUM(total), 0) as revenue").
		Group("payment_method").
		Order("payment_method ASC").
		Scan(&results).Error
	return results, err
}

func (r *reportRepo) completedSince(startDate time.Time) *gorm.DB {
	return r.db.Model(&model.Sale{}).
		Where("status = ? AND created_at >= ?", model.SaleCompleted, startDate)
}

// dayOnly trims driver-specific date renderings ("2026-01-02T00:00:00Z", "2026-01-02") to YYYY-MM-DD
func dayOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
