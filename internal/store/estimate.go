package store

import (
	"context"
	"time"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/gorm"
)

type EstimateStore struct {
	DB *gorm.DB
}

func NewEstimateStore(db *gorm.DB) *EstimateStore { return &EstimateStore{DB: db} }

// Day truncates t to a calendar date at UTC midnight. Estimate dates are
// always stored in this form so range and group-by queries stay portable.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EstimateFilter narrows Search. Zero values do not filter.
type EstimateFilter struct {
	Number       string     // substring of estimate_no
	CustomerName string     // exact customer name
	From         *time.Time // inclusive
	To           *time.Time // inclusive
}

// EstimateRow is an estimate header joined with its customer name.
// CustomerName is nil when the customer no longer exists.
type EstimateRow struct {
	ID           uint      `json:"id"`
	EstimateNo   string    `json:"estimate_no"`
	Date         time.Time `json:"date"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName *string   `json:"customer_name"`
	ItemsTotal   float64   `json:"items_total"`
	HamaliTotal  float64   `json:"hamali_total"`
	AutoCharge   float64   `json:"auto_charge"`
	Discount     float64   `json:"discount"`
	GrandTotal   float64   `json:"grand_total"`
	PDFPath      string    `gorm:"column:pdf_path" json:"pdf_path"`
	Status       string    `json:"status"`
}

// Search lists estimate headers, newest first.
func (s *EstimateStore) Search(ctx context.Context, f EstimateFilter) ([]EstimateRow, error) {
	q := s.DB.WithContext(ctx).Table("estimates AS e").
		Select("e.id, e.estimate_no, e.date, e.customer_id, c.name AS customer_name, " +
			"e.items_total, e.hamali_total, e.auto_charge, e.discount, e.grand_total, e.pdf_path, e.status").
		Joins("LEFT JOIN customers AS c ON c.id = e.customer_id")
	if f.Number != "" {
		q = q.Where("e.estimate_no LIKE ?", likePattern(f.Number))
	}
	if f.CustomerName != "" {
		q = q.Where("c.name = ?", f.CustomerName)
	}
	if f.From != nil {
		q = q.Where("e.date >= ?", Day(*f.From))
	}
	if f.To != nil {
		q = q.Where("e.date <= ?", Day(*f.To))
	}
	var rows []EstimateRow
	if err := q.Order("e.id DESC").Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// Get loads the header and its lines in insertion order.
func (s *EstimateStore) Get(ctx context.Context, id uint) (*models.Estimate, error) {
	var e models.Estimate
	err := s.DB.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&e, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *EstimateStore) GetByNumber(ctx context.Context, no string) (*models.Estimate, error) {
	var e models.Estimate
	err := s.DB.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("estimate_no = ?", no).Take(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *EstimateStore) Exists(ctx context.Context, no string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Estimate{}).
		Where("estimate_no = ?", no).Limit(1).Count(&count).Error
	return count > 0, translate(err)
}

// CreateHeader inserts the header without its lines. Status defaults to pending.
func (s *EstimateStore) CreateHeader(ctx context.Context, e *models.Estimate) error {
	if e.Status == "" {
		e.Status = models.StatusPending
	}
	e.Date = Day(e.Date)
	lines := e.Lines
	e.Lines = nil
	err := s.DB.WithContext(ctx).Omit("Lines").Create(e).Error
	e.Lines = lines
	return translate(err)
}

// UpdateHeader rewrites the mutable header columns of e.ID. Number and status are left alone.
func (s *EstimateStore) UpdateHeader(ctx context.Context, e *models.Estimate) error {
	e.Date = Day(e.Date)
	res := s.DB.WithContext(ctx).Model(&models.Estimate{}).Where("id = ?", e.ID).Updates(map[string]any{
		"date":         e.Date,
		"customer_id":  e.CustomerID,
		"items_total":  e.ItemsTotal,
		"hamali_total": e.HamaliTotal,
		"auto_charge":  e.AutoCharge,
		"discount":     e.Discount,
		"grand_total":  e.GrandTotal,
		"pdf_path":     e.PDFPath,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceLines deletes every line of estimateID and inserts lines in order.
func (s *EstimateStore) ReplaceLines(ctx context.Context, estimateID uint, lines []models.EstimateLine) error {
	return translate(s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("estimate_id = ?", estimateID).Delete(&models.EstimateLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].EstimateID = estimateID
		}
		return tx.Create(&lines).Error
	}))
}

// Lines returns the stored lines of an estimate in insertion order.
func (s *EstimateStore) Lines(ctx context.Context, estimateID uint) ([]models.EstimateLine, error) {
	var out []models.EstimateLine
	err := s.DB.WithContext(ctx).Where("estimate_id = ?", estimateID).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

// SetPDFPath records where the rendered document lives.
func (s *EstimateStore) SetPDFPath(ctx context.Context, id uint, path string) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Estimate{}).Where("id = ?", id).Update("pdf_path", path).Error)
}

// Delete removes the lines and then the header. Customers are untouched.
func (s *EstimateStore) Delete(ctx context.Context, id uint) error {
	return translate(s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("estimate_id = ?", id).Delete(&models.EstimateLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Estimate{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}
