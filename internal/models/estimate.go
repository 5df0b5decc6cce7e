package models

import "time"

// StatusPending is the only status assigned today.
const StatusPending = "pending"

// Estimate header. CustomerID is not a constrained foreign key: deleting a
// customer leaves past estimates pointing at an id that may no longer resolve.
type Estimate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EstimateNo  string         `gorm:"column:estimate_no;size:20;not null;uniqueIndex" json:"estimate_no"`
	Date        time.Time      `gorm:"type:date;not null;index" json:"date"`
	CustomerID  uint           `gorm:"index" json:"customer_id"`
	ItemsTotal  float64        `gorm:"not null;default:0" json:"items_total"`
	HamaliTotal float64        `gorm:"not null;default:0" json:"hamali_total"`
	AutoCharge  float64        `gorm:"not null;default:0" json:"auto_charge"`
	Discount    float64        `gorm:"not null;default:0" json:"discount"`
	GrandTotal  float64        `gorm:"not null;default:0" json:"grand_total"`
	PDFPath     string         `gorm:"column:pdf_path;size:500" json:"pdf_path"`
	Status      string         `gorm:"size:20;not null;default:pending" json:"status"`
	Lines       []EstimateLine `gorm:"foreignKey:EstimateID" json:"lines,omitempty"`
}

func (Estimate) TableName() string { return "estimates" }

// EstimateLine is a snapshot of a catalog item at the time it was selected;
// it holds no reference to the items table.
type EstimateLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	EstimateID  uint    `gorm:"index;not null" json:"estimate_id"`
	ItemName    string  `gorm:"size:255;not null" json:"item_name"`
	Description string  `gorm:"size:500" json:"description"`
	Qty         float64 `gorm:"not null" json:"qty"`
	Unit        string  `gorm:"size:50" json:"unit"`
	Rate        float64 `gorm:"not null" json:"rate"`
	RowTotal    float64 `gorm:"not null" json:"row_total"`
	HamaliRate  float64 `gorm:"not null;default:0" json:"hamali_rate"`
	HamaliTotal float64 `gorm:"not null;default:0" json:"hamali_total"`
}

func (EstimateLine) TableName() string { return "estimate_items" }

// All lists the models handled by AutoMigrate.
func All() []interface{} {
	return []interface{}{&Customer{}, &Item{}, &Estimate{}, &EstimateLine{}}
}
