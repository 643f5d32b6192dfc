package repository

import (
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter mirrors the filters of the sales and report screens
type SaleFilter struct {
	Status    model.SaleStatus
	Search    string // order number fragment
	CashierID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// SalePage is one page of sales plus the total number of matches
type SalePage struct {
	Data  []model.Sale `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// SaleStats backs the counters on top of the sales screen
type SaleStats struct {
	Pending        int64 `json:"pending"`
	Preparing      int64 `json:"preparing"`
	CompletedToday int64 `json:"completed_today"`
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	OrderNumberExists(tx *gorm.DB, orderNumber string) (bool, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindAll(filter SaleFilter) (*SalePage, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.SaleStatus, updatedBy string) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	GetStats(now time.Time) (*SaleStats, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale together with its items
func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Omit("Cashier").Create(sale).Error
}

func (r *saleRepo) OrderNumberExists(tx *gorm.DB, orderNumber string) (bool, error) {
	var count int64
	err := tx.Unscoped().Model(&model.Sale{}).Where("order_number = ?", orderNumber).Count(&count).Error
	return count > 0, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items.Product").Preload("Cashier").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(filter SaleFilter) (*SalePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 15
	}

	q := r.db.Model(&model.Sale{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.DateFrom != nil {
		q = q.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("created_at < ?", *filter.DateTo)
	}

	// reusable for both the count and the page query
	q = q.Session(&gorm.Session{})

	page := &SalePage{Page: filter.Page, Limit: filter.Limit}
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, err
	}

	err := q.Preload("Items.Product").Preload("Cashier").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&page.Data).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *saleRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := tx.Clauses(lockForUpdate).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.SaleStatus, updatedBy string) error {
	return tx.Model(&model.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *saleRepo) GetStats(now time.Time) (*SaleStats, error) {
	var stats SaleStats
	if err := r.db.Model(&model.Sale{}).Where("status = ?", model.SalePending).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Sale{}).Where("status = ?", model.SalePreparing).Count(&stats.Preparing).Error; err != nil {
		return nil, err
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := r.db.Model(&model.Sale{}).
		Where("status = ? AND created_at >= ?", model.SaleCompleted, startOfDay).
		Count(&stats.CompletedToday).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
