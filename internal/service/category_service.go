package service

import (
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type CategoryService interface {
	ListCategories(search string) ([]model.Category, error)
	GetCategory(id uuid.UUID) (*model.Category, error)
	CreateCategory(req *CategoryRequest, userID string) (*model.Category, error)
	UpdateCategory(id uuid.UUID, req *CategoryRequest, userID string) (*model.Category, error)
	DeleteCategory(id uuid.UUID, userID string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(cRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: cRepo}
}

func (s *categoryService) ListCategories(search string) ([]model.Category, error) {
	return s.categoryRepo.FindAll(strings.TrimSpace(search))
}

func (s *categoryService) GetCategory(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, translateNotFound(err, "category", id)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(req *CategoryRequest, userID string) (*model.Category, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	category.CreatedBy = userID
	category.UpdatedBy = userID

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(id uuid.UUID, req *CategoryRequest, userID string) (*model.Category, error) {
	if err := validationFrom(req); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = strings.TrimSpace(req.Description)
	category.UpdatedBy = userID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory is refused while any product still belongs to the category
func (s *categoryService) DeleteCategory(id uuid.UUID, userID string) error {
	category, err := s.GetCategory(id)
	if err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("category", "%s still has %d product(s)", category.Name, count)
	}
	return s.categoryRepo.Delete(id, userID)
}
