package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// UserDTO represents a user account in API responses
type UserDTO struct {
	ID             uint64          `json:"id"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	Role           models.UserRole `json:"role"`
	CompanyID      *uint64         `json:"company_id"`
	IsActive       bool            `json:"is_active"`
	CanAssignTasks bool            `json:"can_assign_tasks"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// PrincipalDTO represents the acting identity behind a token. Company logins
// have no user id; their id field carries the company id instead.
type PrincipalDTO struct {
	ID        uint64          `json:"id"`
	Kind      string          `json:"kind"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	CompanyID *uint64         `json:"company_id"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Username:       user.Username,
		Role:           user.Role,
		CompanyID:      user.CompanyID,
		IsActive:       user.IsActive,
		CanAssignTasks: user.CanAssignTasks,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of users to UserListResponse
func ToUserListResponse(users []models.User, page, pageSize int, total int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{
		Users: items,
		Pagination: utils.PaginationResponse{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}
}

// ToPrincipalDTO converts a resolved principal to PrincipalDTO
func ToPrincipalDTO(p auth.Principal) PrincipalDTO {
	if p.Kind == auth.PrincipalCompany {
		companyID := p.Company.ID
		return PrincipalDTO{
			ID:        p.Company.ID,
			Kind:      string(auth.PrincipalCompany),
			Username:  p.Company.Username,
			Role:      models.RoleCompany,
			CompanyID: &companyID,
		}
	}
	return PrincipalDTO{
		ID:        p.User.ID,
		Kind:      string(auth.PrincipalUser),
		Username:  p.User.Username,
		Role:      p.User.Role,
		CompanyID: p.User.CompanyID,
	}
}
