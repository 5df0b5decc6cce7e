package store

import (
	"context"
	"strings"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/gorm"
)

type CustomerStore struct {
	DB *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore { return &CustomerStore{DB: db} }

// Create inserts c and sets its ID. A name collision yields ErrDuplicateKey.
func (s *CustomerStore) Create(ctx context.Context, c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	return translate(s.DB.WithContext(ctx).Create(c).Error)
}

func (s *CustomerStore) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CustomerStore) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CustomerStore) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Customer{}).
		Where("name = ?", strings.TrimSpace(name)).
		Limit(1).Count(&count).Error
	return count > 0, translate(err)
}

// List returns all customers ordered by name.
func (s *CustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	return s.Search(ctx, "")
}

// Search matches q as a substring of name, phone or address. An empty q lists everything.
func (s *CustomerStore) Search(ctx context.Context, q string) ([]models.Customer, error) {
	dbq := s.DB.WithContext(ctx)
	if strings.TrimSpace(q) != "" {
		like := likePattern(q)
		dbq = dbq.Where("name LIKE ? OR phone LIKE ? OR address LIKE ?", like, like, like)
	}
	var out []models.Customer
	if err := dbq.Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *CustomerStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.Customer{}).Order("name ASC").Pluck("name", &names).Error
	return names, translate(err)
}

// Update overwrites name, phone and address of the customer with c.ID.
func (s *CustomerStore) Update(ctx context.Context, c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	res := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).
		Updates(map[string]any{"name": c.Name, "phone": c.Phone, "address": c.Address})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the customer only. Estimates that reference it are kept.
func (s *CustomerStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
