package repository

import (
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create creates a new company
func (r *GormCompanyRepository) Create(company *models.Company) error {
	return r.db.Create(company).Error
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(id uint64) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByName finds a company by its unique name
func (r *GormCompanyRepository) FindByName(name string) (*models.Company, error) {
	var company models.Company
	if err := r.db.Where("name = ?", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByUsername finds a company by its login username
func (r *GormCompanyRepository) FindByUsername(username string) (*models.Company, error) {
	var company models.Company
	if err := r.db.Where("username = ?", username).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByEmail finds a company by its login email
func (r *GormCompanyRepository) FindByEmail(email string) (*models.Company, error) {
	var company models.Company
	if err := r.db.Where("email = ?", email).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update saves changes to a company
func (r *GormCompanyRepository) Update(company *models.Company) error {
	return r.db.Save(company).Error
}

// List retrieves all companies
func (r *GormCompanyRepository) List() ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
