package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hackfest/internal/app/models/dto"
	"github.com/yigit/hackfest/internal/app/services"
	"github.com/yigit/hackfest/internal/middleware"
	"github.com/yigit/hackfest/internal/pkg/helpers"
)

// AdminController handles organizer operations
type AdminController struct {
	authService         *services.AuthService
	registrationService services.RegistrationService
	logger              zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(authService *services.AuthService, registrationService services.RegistrationService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		authService:         authService,
		registrationService: registrationService,
		logger:              logger,
	}
}

// Login handles organizer login
// @Summary Organizer login
// @Description Authenticates the organizer and returns an access token
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	tokenResponse, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tokenResponse, "Login successful"))
}

// ListRegistrations lists stored registrations, newest first
// @Summary List registrations
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationListResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	records, total, err := c.registrationService.ListRegistrations(ctx.Request.Context(), page, size)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list registrations")
		middleware.HandleAPIError(ctx, err)
		return
	}

	registrations := make([]dto.RegistrationResponse, 0, len(records))
	for _, rec := range records {
		registrations = append(registrations, dto.NewRegistrationResponse(rec))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.RegistrationListResponse{
		Registrations: registrations,
		Pagination:    helpers.NewPaginationInfo(total, page, size),
	}, ""))
}

// GetRegistration returns one stored registration
// @Summary Get a registration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Registration not found"
// @Router /admin/registrations/{id} [get]
func (c *AdminController) GetRegistration(ctx *gin.Context) {
	rec, err := c.registrationService.GetRegistration(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRegistrationResponse(rec), ""))
}
