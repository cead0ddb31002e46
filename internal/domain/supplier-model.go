package domain

type Supplier struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"uniqueIndex;not null" json:"name"`
	Contact  *string `json:"contact,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive bool    `gorm:"not null;default:true" json:"is_active"`
}
