package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyNameRequired  = errors.New("company name is required")
	ErrCompanyLoginRequired = errors.New("company username and email are required")
	ErrPasswordTooShort     = errors.New("password too short")
)

// CompanyService handles tenant management.
type CompanyService struct {
	companyRepo repository.CompanyRepository
	policy      *auth.Policy
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo repository.CompanyRepository, policy *auth.Policy) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		policy:      policy,
	}
}

// CreateCompanyInput represents the information to provision a tenant.
type CreateCompanyInput struct {
	Name        string
	Username    string
	Email       string
	Password    string
	Description string
}

// CreateCompany provisions a new tenant with its own login credentials.
func (s *CompanyService) CreateCompany(actor auth.Principal, input CreateCompanyInput) (*models.Company, error) {
	if d := s.policy.Decide(actor, auth.ActionCompanyCreate, auth.Target{Kind: auth.TargetCompany}); !d.Allowed {
		return nil, d.Err
	}

	name := strings.TrimSpace(input.Name)
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, ErrCompanyNameRequired
	}
	if username == "" || email == "" {
		return nil, ErrCompanyLoginRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// All unique-field collisions are caught here, before anything is written.
	if err := s.checkUniqueFields(name, username, email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash company password: %w", err)
	}

	company := &models.Company{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Description:  strings.TrimSpace(input.Description),
		IsActive:     true,
	}
	if err := s.companyRepo.Create(company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return company, nil
}

// ListCompanies returns the companies visible to the actor: every tenant for
// the super-admin, the actor's own tenant otherwise.
func (s *CompanyService) ListCompanies(actor auth.Principal) ([]models.Company, error) {
	if actor.IsSuperAdmin() {
		companies, err := s.companyRepo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list companies: %w", err)
		}
		return companies, nil
	}

	companyID, ok := actor.CompanyID()
	if !ok {
		return []models.Company{}, nil
	}
	company, err := s.companyRepo.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Company{}, nil
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return []models.Company{*company}, nil
}

// GetCompany returns a company by id. A tenant the actor cannot see surfaces
// as not-found rather than a denial, so its existence is not leaked.
func (s *CompanyService) GetCompany(actor auth.Principal, id uint64) (*models.Company, error) {
	company, err := s.findCompany(id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionCompanyRead, auth.CompanyTarget(company)); !d.Allowed {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

// UpdateCompanyInput carries optional company field updates.
type UpdateCompanyInput struct {
	Name        *string
	Username    *string
	Email       *string
	Password    *string
	Description *string
}

// UpdateCompany updates a tenant's profile and credentials.
func (s *CompanyService) UpdateCompany(actor auth.Principal, id uint64, input UpdateCompanyInput) (*models.Company, error) {
	company, err := s.findCompany(id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionCompanyUpdate, auth.CompanyTarget(company)); !d.Allowed {
		return nil, d.Err
	}

	name, username, email := company.Name, company.Username, company.Email
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCompanyNameRequired
		}
	}
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		email = strings.TrimSpace(*input.Email)
	}
	if username == "" || email == "" {
		return nil, ErrCompanyLoginRequired
	}
	if err := s.checkUniqueFields(name, username, email, company.ID); err != nil {
		return nil, err
	}

	company.Name = name
	company.Username = username
	company.Email = email
	if input.Description != nil {
		company.Description = strings.TrimSpace(*input.Description)
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash company password: %w", err)
		}
		company.PasswordHash = string(hash)
	}

	if err := s.companyRepo.Update(company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

// DeactivateCompany soft-deletes a tenant. Its users and tasks stay in place;
// company logins and token reconstruction fail while inactive.
func (s *CompanyService) DeactivateCompany(actor auth.Principal, id uint64) error {
	company, err := s.findCompany(id)
	if err != nil {
		return err
	}

	if d := s.policy.Decide(actor, auth.ActionCompanyDeactivate, auth.CompanyTarget(company)); !d.Allowed {
		return d.Err
	}

	company.IsActive = false
	if err := s.companyRepo.Update(company); err != nil {
		return fmt.Errorf("failed to deactivate company: %w", err)
	}
	return nil
}

func (s *CompanyService) findCompany(id uint64) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return company, nil
}

func (s *CompanyService) checkUniqueFields(name, username, email string, selfID uint64) error {
	if existing, err := s.companyRepo.FindByName(name); err == nil && existing.ID != selfID {
		return conflict("name")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check company name: %w", err)
	}

	if existing, err := s.companyRepo.FindByUsername(username); err == nil && existing.ID != selfID {
		return conflict("username")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check company username: %w", err)
	}

	if existing, err := s.companyRepo.FindByEmail(email); err == nil && existing.ID != selfID {
		return conflict("email")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check company email: %w", err)
	}
	return nil
}
