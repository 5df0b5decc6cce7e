package models

// Item is a catalog entry. Rate and HamaliRate are per unit.
type Item struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string  `gorm:"size:500" json:"description"`
	Unit        string  `gorm:"size:50" json:"unit"`
	Rate        float64 `gorm:"not null;default:0" json:"rate"`
	HamaliRate  float64 `gorm:"not null;default:0" json:"hamali_rate"`
}

func (Item) TableName() string { return "items" }

// Units selectable for catalog items and estimate lines. Other labels are accepted as free text.
var Units = []string{"pcs", "Kg", "Box", "Bag", "Dozen", "feet", "litre", "Meter"}
