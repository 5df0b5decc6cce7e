package store

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/gorm"
)

type ItemStore struct {
	DB *gorm.DB
}

func NewItemStore(db *gorm.DB) *ItemStore { return &ItemStore{DB: db} }

func (s *ItemStore) Create(ctx context.Context, it *models.Item) error {
	it.Name = strings.TrimSpace(it.Name)
	return translate(s.DB.WithContext(ctx).Create(it).Error)
}

func (s *ItemStore) Get(ctx context.Context, id uint) (*models.Item, error) {
	var it models.Item
	if err := s.DB.WithContext(ctx).First(&it, id).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (s *ItemStore) GetByName(ctx context.Context, name string) (*models.Item, error) {
	var it models.Item
	if err := s.DB.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&it).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (s *ItemStore) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Item{}).
		Where("name = ?", strings.TrimSpace(name)).
		Limit(1).Count(&count).Error
	return count > 0, translate(err)
}

func (s *ItemStore) List(ctx context.Context) ([]models.Item, error) {
	return s.Search(ctx, "")
}

// Search matches q against name and description, ordered by name.
func (s *ItemStore) Search(ctx context.Context, q string) ([]models.Item, error) {
	dbq := s.DB.WithContext(ctx)
	if strings.TrimSpace(q) != "" {
		like := likePattern(q)
		dbq = dbq.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	var out []models.Item
	if err := dbq.Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *ItemStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.Item{}).Order("name ASC").Pluck("name", &names).Error
	return names, translate(err)
}

func (s *ItemStore) Update(ctx context.Context, it *models.Item) error {
	it.Name = strings.TrimSpace(it.Name)
	res := s.DB.WithContext(ctx).Model(&models.Item{}).Where("id = ?", it.ID).Updates(map[string]any{
		"name":        it.Name,
		"description": it.Description,
		"unit":        it.Unit,
		"rate":        it.Rate,
		"hamali_rate": it.HamaliRate,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ItemStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert updates the item with the same name or creates it. created reports which one happened.
func (s *ItemStore) Upsert(ctx context.Context, it *models.Item) (created bool, err error) {
	existing, err := s.GetByName(ctx, it.Name)
	switch {
	case err == nil:
		it.ID = existing.ID
		return false, s.Update(ctx, it)
	case errors.Is(err, ErrNotFound):
		return true, s.Create(ctx, it)
	default:
		return false, err
	}
}
