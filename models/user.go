package models

import "time"

type User struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	Email     string        `gorm:"unique;not null" json:"email"`
	Phone     string        `json:"phone"`
	Name      string        `json:"name"`
	Role      string        `gorm:"type:VARCHAR(20);default:'student'" json:"role"` // "student" or "admin"
	Address   CampusAddress `gorm:"embedded" json:"address"`
	Cart      Cart          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders    []Order       `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders"`
	CreatedAt time.Time     `json:"created_at"`
}

// CampusAddress is embedded in User
type CampusAddress struct {
	Hall   string `json:"hall"`
	Room   string `json:"room"`
	ZoneID uint   `json:"zone_id"`
}
