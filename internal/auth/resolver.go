package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid login identifier or password")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Resolver turns raw credentials or verified token subjects into principals.
type Resolver struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	logger    *slog.Logger
}

func NewResolver(users repository.UserRepository, companies repository.CompanyRepository, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		users:     users,
		companies: companies,
		logger:    logger,
	}
}

// Authenticate resolves a login identifier and password to a principal.
//
// The company credential space is tried first, then the user space. The order
// is fixed: an identifier that exists in both spaces always resolves to the
// company. Once an identifier matches a company, authentication succeeds or
// fails within that space; it never falls through to users.
func (r *Resolver) Authenticate(identifier, password string) (Principal, error) {
	company, err := r.findCompany(identifier)
	if err != nil {
		return Principal{}, err
	}
	if company != nil {
		if bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(password)) != nil {
			r.logger.Warn("company login rejected", "identifier", identifier, "reason", "bad password")
			return Principal{}, ErrInvalidCredentials
		}
		if !company.IsActive {
			r.logger.Warn("company login rejected", "identifier", identifier, "reason", "inactive")
			return Principal{}, ErrAccountInactive
		}
		r.logger.Info("company login", "company_id", company.ID, "username", company.Username)
		return VirtualCompanyPrincipal(company), nil
	}

	user, err := r.findUser(identifier)
	if err != nil {
		return Principal{}, err
	}
	if user == nil {
		r.logger.Warn("login rejected", "identifier", identifier, "reason", "unknown identifier")
		return Principal{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		r.logger.Warn("user login rejected", "user_id", user.ID, "reason", "bad password")
		return Principal{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		r.logger.Warn("user login rejected", "user_id", user.ID, "reason", "inactive")
		return Principal{}, ErrAccountInactive
	}
	r.logger.Info("user login", "user_id", user.ID, "role", user.Role)
	return RealUserPrincipal(user), nil
}

// ResolveSubject reconstructs the acting principal from a verified token
// subject. Missing or inactive rows surface as the same opaque token error the
// codec uses, so a token holder cannot probe account state.
func (r *Resolver) ResolveSubject(subject Subject) (Principal, error) {
	switch subject.Kind {
	case PrincipalCompany:
		company, err := r.companies.FindByID(subject.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.logger.Warn("token subject rejected", "kind", "company", "id", subject.ID, "reason", "not found")
				return Principal{}, ErrInvalidToken
			}
			return Principal{}, fmt.Errorf("failed to load company %d: %w", subject.ID, err)
		}
		if !company.IsActive {
			r.logger.Warn("token subject rejected", "kind", "company", "id", subject.ID, "reason", "inactive")
			return Principal{}, ErrInvalidToken
		}
		return VirtualCompanyPrincipal(company), nil

	default:
		user, err := r.users.FindByID(subject.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.logger.Warn("token subject rejected", "kind", "user", "id", subject.ID, "reason", "not found")
				return Principal{}, ErrInvalidToken
			}
			return Principal{}, fmt.Errorf("failed to load user %d: %w", subject.ID, err)
		}
		if !user.IsActive {
			r.logger.Warn("token subject rejected", "kind", "user", "id", subject.ID, "reason", "inactive")
			return Principal{}, ErrInvalidToken
		}
		return RealUserPrincipal(user), nil
	}
}

func (r *Resolver) findCompany(identifier string) (*models.Company, error) {
	if company, err := r.companies.FindByUsername(identifier); err == nil {
		return company, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up company by username: %w", err)
	}

	if company, err := r.companies.FindByEmail(identifier); err == nil {
		return company, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up company by email: %w", err)
	}
	return nil, nil
}

func (r *Resolver) findUser(identifier string) (*models.User, error) {
	if user, err := r.users.FindByEmail(identifier); err == nil {
		return user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	if user, err := r.users.FindByUsername(identifier); err == nil {
		return user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user by username: %w", err)
	}
	return nil, nil
}
