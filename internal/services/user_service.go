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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserLoginRequired = errors.New("email and username are required")
	ErrInvalidRole       = errors.New("invalid role")
)

// UserService handles account management under the authorization policy.
type UserService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	policy      *auth.Policy
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, policy *auth.Policy) *UserService {
	return &UserService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		policy:      policy,
	}
}

// CreateUserInput represents the information to create an account.
type CreateUserInput struct {
	Email          string
	Username       string
	Password       string
	Role           models.UserRole
	CompanyID      *uint64
	CanAssignTasks bool
}

// CreateUser creates an account inside the actor's permission envelope.
// Company and admin actors always create into their own tenant.
func (s *UserService) CreateUser(actor auth.Principal, input CreateUserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	companyID := input.CompanyID
	if companyID == nil {
		if own, ok := actor.CompanyID(); ok {
			companyID = &own
		}
	}

	target := auth.Target{
		Kind:      auth.TargetUser,
		CompanyID: companyID,
		Role:      role,
	}
	if d := s.policy.Decide(actor, auth.ActionUserCreate, target); !d.Allowed {
		return nil, d.Err
	}

	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" {
		return nil, ErrUserLoginRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if companyID != nil {
		if _, err := s.companyRepo.FindByID(*companyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCompanyNotFound
			}
			return nil, fmt.Errorf("failed to find company: %w", err)
		}
	}

	if err := s.checkUniqueFields(email, username, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		Username:       username,
		PasswordHash:   string(hash),
		Role:           role,
		CompanyID:      companyID,
		IsActive:       true,
		CanAssignTasks: input.CanAssignTasks,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ListUsersInput represents filters for listing users.
type ListUsersInput struct {
	CompanyID *uint64
	Role      *models.UserRole
	IsActive  *bool
	Page      int
	PageSize  int
}

// ListUsers returns accounts scoped to the actor's tier: the super-admin sees
// the admin accounts it manages, tenant actors see their own company, and
// user-tier actors see only themselves.
func (s *UserService) ListUsers(actor auth.Principal, input ListUsersInput) ([]models.User, int64, error) {
	filter := repository.UserFilter{
		IsActive: input.IsActive,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	switch actor.Role() {
	case models.RoleSuperAdmin:
		adminRole := models.RoleAdmin
		filter.Role = &adminRole
		filter.CompanyID = input.CompanyID
	case models.RoleCompany, models.RoleAdmin:
		companyID, _ := actor.CompanyID()
		filter.CompanyID = &companyID
		filter.Role = input.Role
	default:
		userID, _ := actor.RealUserID()
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to find user: %w", err)
		}
		return []models.User{*user}, 1, nil
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns an account by id. Cross-tenant probes surface as not-found.
func (s *UserService) GetUser(actor auth.Principal, id uint64) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionUserRead, auth.UserTarget(user)); !d.Allowed {
		if errors.Is(d.Err, auth.ErrCrossTenantViolation) {
			return nil, ErrUserNotFound
		}
		return nil, d.Err
	}
	return user, nil
}

// UpdateUserInput carries optional account field updates.
type UpdateUserInput struct {
	Email          *string
	Username       *string
	Password       *string
	Role           *models.UserRole
	CanAssignTasks *bool
}

// UpdateUser applies an update within the actor's permission envelope. For a
// user-tier actor editing their own profile, only the allow-listed fields are
// written; everything else in the payload is silently ignored.
func (s *UserService) UpdateUser(actor auth.Principal, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil && !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	target := auth.UserTarget(user)
	target.RequestedRole = input.Role
	if d := s.policy.Decide(actor, auth.ActionUserUpdate, target); !d.Allowed {
		return nil, d.Err
	}

	if allowed := s.policy.AllowedUserUpdateFields(actor, id); allowed != nil {
		input = narrowUpdateInput(input, allowed)
	}

	email, username := user.Email, user.Username
	if input.Email != nil {
		email = strings.TrimSpace(*input.Email)
	}
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
	}
	if email == "" || username == "" {
		return nil, ErrUserLoginRequired
	}
	if err := s.checkUniqueFields(email, username, user.ID); err != nil {
		return nil, err
	}

	user.Email = email
	user.Username = username
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.CanAssignTasks != nil {
		user.CanAssignTasks = *input.CanAssignTasks
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeactivateUser soft-deletes an account. Rows are never removed.
func (s *UserService) DeactivateUser(actor auth.Principal, id uint64) error {
	return s.setActive(actor, auth.ActionUserDeactivate, id, false)
}

// ActivateUser restores a soft-deleted account.
func (s *UserService) ActivateUser(actor auth.Principal, id uint64) error {
	return s.setActive(actor, auth.ActionUserActivate, id, true)
}

func (s *UserService) setActive(actor auth.Principal, action auth.Action, id uint64, active bool) error {
	user, err := s.findUser(id)
	if err != nil {
		return err
	}

	if d := s.policy.Decide(actor, action, auth.UserTarget(user)); !d.Allowed {
		return d.Err
	}

	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *UserService) checkUniqueFields(email, username string, selfID uint64) error {
	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != selfID {
		return conflict("email")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if existing, err := s.userRepo.FindByUsername(username); err == nil && existing.ID != selfID {
		return conflict("username")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func narrowUpdateInput(input UpdateUserInput, allowed []string) UpdateUserInput {
	narrowed := UpdateUserInput{}
	for _, field := range allowed {
		switch field {
		case "email":
			narrowed.Email = input.Email
		case "username":
			narrowed.Username = input.Username
		case "password":
			narrowed.Password = input.Password
		}
	}
	return narrowed
}
