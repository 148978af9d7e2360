package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update saves changes to a user
	Update(user *models.User) error

	// List retrieves users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// FirstActiveAdmin returns the active admin of a company with the lowest
	// user id, used to attribute company-principal actions to a real user.
	FirstActiveAdmin(companyID uint64) (*models.User, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	CompanyID *uint64
	Role      *models.UserRole
	IsActive  *bool
	Page      int
	PageSize  int
}

// CompanyRepository defines the interface for company data access
type CompanyRepository interface {
	// Create creates a new company
	Create(company *models.Company) error

	// FindByID finds a company by ID
	FindByID(id uint64) (*models.Company, error)

	// FindByName finds a company by its unique name
	FindByName(name string) (*models.Company, error)

	// FindByUsername finds a company by its login username
	FindByUsername(username string) (*models.Company, error)

	// FindByEmail finds a company by its login email
	FindByEmail(email string) (*models.Company, error)

	// Update saves changes to a company
	Update(company *models.Company) error

	// List retrieves all companies
	List() ([]models.Company, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves changes to a task
	Update(task *models.Task) error

	// Delete removes a task row
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CompanyID  *uint64
	AssigneeID *uint64
	CreatorID  *uint64
	// VisibleToUserID restricts results to tasks the user is the assignee
	// or the creator of.
	VisibleToUserID *uint64
	Status          *models.TaskStatus
	Search          string
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	Page            int
	PageSize        int
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(notification *models.Notification) error

	// FindByID finds a notification by ID
	FindByID(id uint64) (*models.Notification, error)

	// ListByUser lists a user's notifications, newest first
	ListByUser(userID uint64) ([]models.Notification, error)

	// MarkRead marks a notification as read
	MarkRead(id uint64) error

	// Delete removes a notification row
	Delete(id uint64) error
}
