package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// UserHandler coordinates account-management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser creates an account within the actor's permission envelope.
func (h *UserHandler) CreateUser(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateUserRequest struct {
		Email          string          `json:"email" binding:"required,email"`
		Username       string          `json:"username" binding:"required"`
		Password       string          `json:"password" binding:"required"`
		Role           models.UserRole `json:"role"`
		CompanyID      *uint64         `json:"company_id"`
		CanAssignTasks bool            `json:"can_assign_tasks"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(principal, services.CreateUserInput{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		Role:           req.Role,
		CompanyID:      req.CompanyID,
		CanAssignTasks: req.CanAssignTasks,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns accounts scoped to the actor's tier.
func (h *UserHandler) ListUsers(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListUsersInput{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	if companyIDStr := c.Query("company_id"); companyIDStr != "" {
		companyID, err := strconv.ParseUint(companyIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid company_id")
			return
		}
		input.CompanyID = &companyID
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if !role.Valid() {
			apierrors.BadRequest(c, "Invalid role")
			return
		}
		input.Role = &role
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid is_active")
			return
		}
		input.IsActive = &active
	}

	users, total, err := h.userService.ListUsers(principal, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.PageSize, total))
}

// GetUser returns a single account by id.
func (h *UserHandler) GetUser(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(principal, id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies an account update.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Email          *string          `json:"email"`
		Username       *string          `json:"username"`
		Password       *string          `json:"password"`
		Role           *models.UserRole `json:"role"`
		CanAssignTasks *bool            `json:"can_assign_tasks"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(principal, id, services.UpdateUserInput{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		Role:           req.Role,
		CanAssignTasks: req.CanAssignTasks,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeactivateUser soft-deletes an account.
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

// ActivateUser restores a soft-deleted account.
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var err error
	var message string
	if active {
		err = h.userService.ActivateUser(principal, id)
		message = "User activated successfully"
	} else {
		err = h.userService.DeactivateUser(principal, id)
		message = "User deactivated successfully"
	}
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

func respondUserError(c *gin.Context, err error) {
	var conflictErr *services.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		apierrors.Conflict(c, fmt.Sprintf("User %s is already taken", conflictErr.Field))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrCompanyNotFound):
		apierrors.NotFound(c, "Company not found")
	case errors.Is(err, services.ErrUserLoginRequired),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, auth.ErrCrossTenantViolation):
		apierrors.CrossTenant(c, "")
	case errors.Is(err, auth.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalError(c, "")
	}
}
