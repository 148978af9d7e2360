package models

import "time"

// Company is a tenant. It carries its own login credentials: authenticating
// with them yields a synthesized company principal rather than a user row.
type Company struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Description  string    `gorm:"type:text" json:"description"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Users []User `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	Tasks []Task `gorm:"foreignKey:CompanyID" json:"tasks,omitempty"`
}
