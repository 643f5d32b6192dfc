package service

import (
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeEntryInput is one line of a recipe as sent by the product form
type RecipeEntryInput struct {
	IngredientID     uuid.UUID       `json:"ingredient_id" validate:"uuid_required"`
	QuantityRequired decimal.Decimal `json:"quantity_required" validate:"gt=0"`
}

// RecipeRegistry owns the product -> ingredient requirements.
// Every write replaces the whole recipe; callers always send the full list.
type RecipeRegistry interface {
	SetRecipe(productID uuid.UUID, entries []RecipeEntryInput) ([]model.RecipeEntry, error)
	SetRecipeTx(tx *gorm.DB, productID uuid.UUID, entries []RecipeEntryInput) error
	GetRecipe(productID uuid.UUID) ([]model.RecipeEntry, error)
	// ClearRecipeTx drops every entry of a product that is being deleted
	ClearRecipeTx(tx *gorm.DB, productID uuid.UUID) error
}

type recipeRegistry struct {
	recipeRepo     repository.RecipeRepository
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	db             *gorm.DB
}

func NewRecipeRegistry(rRepo repository.RecipeRepository, pRepo repository.ProductRepository, iRepo repository.IngredientRepository, db *gorm.DB) RecipeRegistry {
	return &recipeRegistry{
		recipeRepo:     rRepo,
		productRepo:    pRepo,
		ingredientRepo: iRepo,
		db:             db,
	}
}

func (s *recipeRegistry) SetRecipe(productID uuid.UUID, entries []RecipeEntryInput) ([]model.RecipeEntry, error) {
	if err := validateRecipe(entries); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.productRepo.FindByID(tx, productID); err != nil {
			return translateNotFound(err, "product", productID)
		}
		return s.SetRecipeTx(tx, productID, entries)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(productID)
}

func (s *recipeRegistry) SetRecipeTx(tx *gorm.DB, productID uuid.UUID, entries []RecipeEntryInput) error {
	if err := validateRecipe(entries); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.IngredientID
	}
	existing, err := s.ingredientRepo.FindByIDs(tx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, ing := range existing {
		known[ing.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return notFound("ingredient", id)
		}
	}

	rows := make([]model.RecipeEntry, len(entries))
	for i, e := range entries {
		rows[i] = model.RecipeEntry{
			IngredientID:     e.IngredientID,
			QuantityRequired: e.QuantityRequired,
		}
	}
	return s.recipeRepo.Replace(tx, productID, rows)
}

func (s *recipeRegistry) GetRecipe(productID uuid.UUID) ([]model.RecipeEntry, error) {
	if _, err := s.productRepo.FindByID(nil, productID); err != nil {
		return nil, translateNotFound(err, "product", productID)
	}
	return s.recipeRepo.FindByProduct(nil, productID)
}

func (s *recipeRegistry) ClearRecipeTx(tx *gorm.DB, productID uuid.UUID) error {
	return s.recipeRepo.DeleteByProduct(tx, productID)
}

func validateRecipe(entries []RecipeEntryInput) error {
	if len(entries) == 0 {
		return newValidationError("recipe", "At least one ingredient is required to create a product recipe.")
	}
	seen := make(map[uuid.UUID]bool, len(entries))
	for i, e := range entries {
		if e.IngredientID == uuid.Nil {
			return newValidationError("recipe", "entry %d: ingredient_id is required", i)
		}
		if !e.QuantityRequired.IsPositive() {
			return newValidationError("recipe", "entry %d: quantity_required must be greater than 0", i)
		}
		if !validator.WithinScale(e.QuantityRequired, model.QuantityScale) {
			return newValidationError("recipe", "entry %d: quantity_required must have at most %d decimal places", i, model.QuantityScale)
		}
		if seen[e.IngredientID] {
			return newValidationError("recipe", "entry %d: ingredient %s is listed twice", i, e.IngredientID)
		}
		seen[e.IngredientID] = true
	}
	return nil
}
