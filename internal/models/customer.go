package models

// Customer est identifié par son nom (clé unique pour les recherches).
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Phone   string `gorm:"size:50" json:"phone"`
	Address string `gorm:"size:500" json:"address"`
}

func (Customer) TableName() string { return "customers" }
