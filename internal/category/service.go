package category

import (
	"context"
	"errors"

	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category has events and cannot be deleted")
)

type Service interface {
	CreateCategory(ctx context.Context, name, description string, userID uint, ip string) (*Category, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*Category, error)
	UpdateCategory(ctx context.Context, id uint, name, description string, userID uint, ip string) (*Category, error)
	DeleteCategory(ctx context.Context, id uint, userID uint, ip string) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) CreateCategory(ctx context.Context, name, description string, userID uint, ip string) (*Category, error) {
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_CREATED", map[string]interface{}{
			"name": name, "reason": "duplicate",
		}, ip, "failure")
		return nil, ErrCategoryExists
	}

	category := &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_CREATED", map[string]interface{}{
			"name": name,
		}, ip, "failure")
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_CREATED", map[string]interface{}{
		"category_id": category.ID, "name": category.Name,
	}, ip, "success")

	return category, nil
}

func (s *service) GetCategories(ctx context.Context) ([]Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, name, description string, userID uint, ip string) (*Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" && name != category.Name {
		if existing, err := s.repo.GetByName(ctx, name); err == nil && existing.ID != id {
			return nil, ErrCategoryExists
		}
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}

	if err := s.repo.Update(ctx, category); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_UPDATED", map[string]interface{}{
			"category_id": id,
		}, ip, "failure")
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_UPDATED", map[string]interface{}{
		"category_id": category.ID, "name": category.Name,
	}, ip, "success")

	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uint, userID uint, ip string) error {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountEvents(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_DELETED", map[string]interface{}{
			"category_id": id,
		}, ip, "failure")
		return err
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "CATEGORY_DELETED", map[string]interface{}{
		"category_id": id, "name": category.Name,
	}, ip, "success")

	return nil
}
