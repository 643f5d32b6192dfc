package repository

import (
	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientRepository interface {
	Create(tx *gorm.DB, ingredient *model.Ingredient) error
	FindAll(search string) ([]model.Ingredient, error)
	FindByID(id uuid.UUID) (*model.Ingredient, error)
	FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingredient, error)
	Update(tx *gorm.DB, ingredient *model.Ingredient) error
	Delete(id uuid.UUID, deletedBy string) error
	CountRecipesUsing(id uuid.UUID) (int64, error)

	// LockForUpdate loads the ingredients and holds their rows until tx ends.
	// Rows are locked in ascending id order so that overlapping carts cannot deadlock.
	LockForUpdate(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingredient, error)
	// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock decimal.Decimal, updatedBy string) error
}

// lockForUpdate renders SELECT ... FOR UPDATE (ignored by SQLite, which locks the whole database)
var lockForUpdate = clause.Locking{Strength: "UPDATE"}

type ingredientRepo struct {
	db *gorm.DB
}

func NewIngredientRepo(db *gorm.DB) IngredientRepository {
	return &ingredientRepo{db}
}

func (r *ingredientRepo) Create(tx *gorm.DB, ingredient *model.Ingredient) error {
	return tx.Create(ingredient).Error
}

func (r *ingredientRepo) FindAll(search string) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	q := r.db.Order("name ASC")
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	err := q.Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepo) FindByID(id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepo) FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingredient, error) {
	if tx == nil {
		tx = r.db
	}
	var ingredients []model.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	err := tx.Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

// Update writes descriptive columns only; stock moves through the ledger
func (r *ingredientRepo) Update(tx *gorm.DB, ingredient *model.Ingredient) error {
	return tx.Model(&model.Ingredient{}).
		Where("id = ?", ingredient.ID).
		Updates(map[string]interface{}{
			"name":       ingredient.Name,
			"unit":       ingredient.Unit,
			"min_stock":  ingredient.MinStock,
			"updated_by": ingredient.UpdatedBy,
		}).Error
}

func (r *ingredientRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Ingredient{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Ingredient{}, "id = ?", id).Error
	})
}

func (r *ingredientRepo) CountRecipesUsing(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.RecipeEntry{}).
		Joins("JOIN products ON products.id = recipe_entries.product_id AND products.deleted_at IS NULL").
		Where("recipe_entries.ingredient_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *ingredientRepo) LockForUpdate(tx *gorm.DB, ids []uuid.UUID) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	err := tx.Clauses(lockForUpdate).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Ingredient{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}
