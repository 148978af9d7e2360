package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// CompanyDTO represents a company in API responses
type CompanyDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCompanyDTO converts a Company model to CompanyDTO
func ToCompanyDTO(company models.Company) CompanyDTO {
	return CompanyDTO{
		ID:          company.ID,
		Name:        company.Name,
		Username:    company.Username,
		Email:       company.Email,
		Description: company.Description,
		IsActive:    company.IsActive,
		CreatedAt:   company.CreatedAt,
		UpdatedAt:   company.UpdatedAt,
	}
}

// ToCompanyListResponse converts a slice of companies to DTOs
func ToCompanyListResponse(companies []models.Company) []CompanyDTO {
	items := make([]CompanyDTO, len(companies))
	for i, company := range companies {
		items[i] = ToCompanyDTO(company)
	}
	return items
}
