package repository

import (
	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecipeRepository interface {
	// Replace deletes every entry of the product and inserts entries in their place
	Replace(tx *gorm.DB, productID uuid.UUID, entries []model.RecipeEntry) error
	DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error
	FindByProduct(tx *gorm.DB, productID uuid.UUID) ([]model.RecipeEntry, error)
}

type recipeRepo struct {
	db *gorm.DB
}

func NewRecipeRepo(db *gorm.DB) RecipeRepository {
	return &recipeRepo{db}
}

func (r *recipeRepo) Replace(tx *gorm.DB, productID uuid.UUID, entries []model.RecipeEntry) error {
	if err := r.DeleteByProduct(tx, productID); err != nil {
		return err
	}
	for i := range entries {
		entries[i].ProductID = productID
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Omit("Ingredient").Create(&entries).Error
}

func (r *recipeRepo) DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.RecipeEntry{}).Error
}

func (r *recipeRepo) FindByProduct(tx *gorm.DB, productID uuid.UUID) ([]model.RecipeEntry, error) {
	if tx == nil {
		tx = r.db
	}
	var entries []model.RecipeEntry
	err := tx.Preload("Ingredient").
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
