package repository

import (
	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows product listings; zero values mean "no filter"
type ProductFilter struct {
	Search     string
	CategoryID uuid.UUID
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Category", "Recipe").Create(product).Error
}

func (r *productRepo) FindAll(filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Preload("Category").Preload("Recipe.Ingredient").Order("name ASC")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?)", like, like)
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if tx == nil {
		tx = r.db
	}
	var product model.Product
	if err := tx.Preload("Category").Preload("Recipe.Ingredient").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads products with their recipes; missing ids are simply absent from the result
func (r *productRepo) FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	if tx == nil {
		tx = r.db
	}
	var products []model.Product
	err := tx.Preload("Recipe").Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":          product.Name,
			"sku":           product.SKU,
			"cost_price":    product.CostPrice,
			"selling_price": product.SellingPrice,
			"category_id":   product.CategoryID,
			"updated_by":    product.UpdatedBy,
		}).Error
}

// Delete soft-deletes the product and frees its SKU for reuse
func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	err := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_by": deletedBy, "sku": nil}).Error
	if err != nil {
		return err
	}
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}
