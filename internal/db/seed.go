package db

import (
	"errors"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/gorm"
)

// baseItems are inserted by Seed when missing. Existing rows are never touched.
var baseItems = []models.Item{
	{Name: "Cement", Description: "OPC 53 grade", Unit: "Bag", Rate: 420, HamaliRate: 20},
	{Name: "TMT Steel", Description: "Fe 500", Unit: "Kg", Rate: 62, HamaliRate: 1},
	{Name: "Binding Wire", Unit: "Kg", Rate: 85},
}

// Seed inserts the baseline catalog. It is idempotent.
func Seed(db *gorm.DB) error {
	for _, it := range baseItems {
		var existing models.Item
		err := db.Where("name = ?", it.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			it := it
			if err := db.Create(&it).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
