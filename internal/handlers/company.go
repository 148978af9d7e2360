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
	"github.com/taskflow/taskflow-api/internal/services"
)

// CompanyHandler coordinates tenant-management HTTP handlers.
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// CreateCompany provisions a new tenant.
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateCompanyRequest struct {
		Name        string `json:"name" binding:"required"`
		Username    string `json:"username" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.CreateCompany(principal, services.CreateCompanyInput{
		Name:        req.Name,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
	})
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCompanyDTO(*company))
}

// ListCompanies returns the companies visible to the actor.
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	companies, err := h.companyService.ListCompanies(principal)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": dto.ToCompanyListResponse(companies),
	})
}

// GetCompany returns a single company by id.
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(principal, id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(*company))
}

// UpdateCompany updates a tenant's profile and credentials.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type UpdateCompanyRequest struct {
		Name        *string `json:"name"`
		Username    *string `json:"username"`
		Email       *string `json:"email"`
		Password    *string `json:"password"`
		Description *string `json:"description"`
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.UpdateCompany(principal, id, services.UpdateCompanyInput{
		Name:        req.Name,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
	})
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(*company))
}

// DeactivateCompany soft-deletes a tenant.
func (h *CompanyHandler) DeactivateCompany(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.companyService.DeactivateCompany(principal, id); err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Company deactivated successfully",
	})
}

func respondCompanyError(c *gin.Context, err error) {
	var conflictErr *services.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		apierrors.Conflict(c, fmt.Sprintf("Company %s is already taken", conflictErr.Field))
	case errors.Is(err, services.ErrCompanyNotFound):
		apierrors.NotFound(c, "Company not found")
	case errors.Is(err, services.ErrCompanyNameRequired),
		errors.Is(err, services.ErrCompanyLoginRequired):
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

// parseIDParam parses the :id path segment, responding 400 itself on failure.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}
