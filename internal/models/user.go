package models

import "time"

type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleUser       UserRole = "USER"

	// RoleCompany is the tier a company principal acts under. It never
	// appears on a users row; it only exists on principals synthesized
	// from a company's own credentials.
	RoleCompany UserRole = "COMPANY"
)

// Valid reports whether the role is one that can be stored on a user row.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	CompanyID      *uint64   `gorm:"index" json:"company_id"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CanAssignTasks bool      `gorm:"not null;default:false" json:"can_assign_tasks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Company       *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	AssignedTasks []Task         `gorm:"foreignKey:AssigneeID" json:"-"`
	CreatedTasks  []Task         `gorm:"foreignKey:CreatorID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}
