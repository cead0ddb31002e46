package domain

type User struct {
	Username     string  `gorm:"primaryKey" json:"username"`
	PasswordHash string  `gorm:"not null" json:"-"`
	IsAdmin      bool    `gorm:"not null;default:false" json:"is_admin"`
	IsStore      bool    `gorm:"not null;default:false" json:"is_store"`
	StoreName    *string `json:"store_name,omitempty"`
}

type Store struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
