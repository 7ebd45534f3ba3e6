// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/models/dto"
	"github.com/yigit/hackfest/internal/app/services"
	"github.com/yigit/hackfest/internal/middleware"
)

// IdempotencyKeyHeader carries the client's key for one-shot registrations
const IdempotencyKeyHeader = "Idempotency-Key"

// RegistrationController handles registration form operations
type RegistrationController struct {
	registrationService services.RegistrationService
	logger              zerolog.Logger
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService services.RegistrationService, logger zerolog.Logger) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		logger:              logger,
	}
}

// GetSchema returns the registration form fields
// @Summary Registration form schema
// @Description Lists every field of the registration form with its label, rule and message
// @Tags registration
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SchemaResponse}
// @Router /registration/schema [get]
func (c *RegistrationController) GetSchema(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSchemaResponse(), ""))
}

// OpenForm starts a new form session
// @Summary Open a registration form
// @Tags registration
// @Produce json
// @Success 201 {object} dto.APIResponse{data=dto.FormResponse} "Form opened"
// @Failure 503 {object} dto.ErrorResponse "Too many open forms"
// @Router /registration/forms [post]
func (c *RegistrationController) OpenForm(ctx *gin.Context) {
	snap, err := c.registrationService.OpenForm(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewFormResponse(snap), "Registration form opened"))
}

// GetForm returns a form snapshot
// @Summary Get a registration form
// @Tags registration
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} dto.APIResponse{data=dto.FormResponse}
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Router /registration/forms/{id} [get]
func (c *RegistrationController) GetForm(ctx *gin.Context) {
	snap, err := c.registrationService.GetForm(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewFormResponse(snap), ""))
}

// UpdateField sets one field of the draft and returns inline feedback
// @Summary Update a form field
// @Description Stores the value even when it is invalid; the response tells whether it passed its rule
// @Tags registration
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param request body dto.UpdateFieldRequest true "Field path and value"
// @Success 200 {object} dto.APIResponse{data=dto.FieldFeedbackResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown field or wrong value type"
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Failure 409 {object} dto.ErrorResponse "Submission in progress"
// @Router /registration/forms/{id}/fields [patch]
func (c *RegistrationController) UpdateField(ctx *gin.Context) {
	var req dto.UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	fieldErr, err := c.registrationService.UpdateField(ctx.Request.Context(), ctx.Param("id"), req.Path, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FieldFeedbackResponse{
		Path:  req.Path,
		Valid: fieldErr == nil,
		Error: fieldErr,
	}, ""))
}

// ValidateForm checks the whole draft
// @Summary Validate a form
// @Tags registration
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} dto.APIResponse{data=dto.ValidationResponse} "Draft is valid"
// @Failure 400 {object} dto.ErrorResponse "Every violated field"
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Router /registration/forms/{id}/validate [post]
func (c *RegistrationController) ValidateForm(ctx *gin.Context) {
	errs, err := c.registrationService.ValidateForm(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if len(errs) > 0 {
		middleware.HandleAPIError(ctx, errs)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ValidationResponse{Valid: true, Errors: errs}, ""))
}

// SubmitForm submits the draft of a form
// @Summary Submit a form
// @Tags registration
// @Produce json
// @Param id path string true "Form ID"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse} "Registration successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid draft"
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Failure 409 {object} dto.ErrorResponse "Submission in progress or team already registered"
// @Failure 503 {object} dto.ErrorResponse "Registration service unavailable"
// @Failure 504 {object} dto.ErrorResponse "Registration service timed out"
// @Router /registration/forms/{id}/submit [post]
func (c *RegistrationController) SubmitForm(ctx *gin.Context) {
	result, err := c.registrationService.SubmitForm(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondSubmitted(ctx, dto.NewSubmissionResponse(result))
}

// ResetForm clears a form
// @Summary Reset a form
// @Tags registration
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} dto.APIResponse{data=dto.FormResponse}
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Router /registration/forms/{id}/reset [post]
func (c *RegistrationController) ResetForm(ctx *gin.Context) {
	snap, err := c.registrationService.ResetForm(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewFormResponse(snap), "Registration form reset"))
}

// CloseForm drops a form session
// @Summary Close a form
// @Tags registration
// @Param id path string true "Form ID"
// @Success 204 "Form closed"
// @Failure 404 {object} dto.ErrorResponse "Form not found or expired"
// @Failure 409 {object} dto.ErrorResponse "Submission in progress"
// @Router /registration/forms/{id} [delete]
func (c *RegistrationController) CloseForm(ctx *gin.Context) {
	if err := c.registrationService.CloseForm(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Register submits a complete registration in one request
// @Summary Register a team
// @Description Validates and stores a complete registration. Repeating the request with the same Idempotency-Key returns the original registration.
// @Tags registration
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated UUID"
// @Param request body models.Registration true "Registration"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse} "Registration successful"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse} "Registration already stored under this key"
// @Failure 400 {object} dto.ErrorResponse "Invalid registration"
// @Failure 409 {object} dto.ErrorResponse "Team already registered"
// @Failure 503 {object} dto.ErrorResponse "Registration service unavailable"
// @Failure 504 {object} dto.ErrorResponse "Registration service timed out"
// @Router /registrations [post]
func (c *RegistrationController) Register(ctx *gin.Context) {
	draft := models.EmptyRegistration()
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.registrationService.Register(ctx.Request.Context(), ctx.GetHeader(IdempotencyKeyHeader), draft)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondSubmitted(ctx, dto.NewSubmissionResponse(result))
}

func (c *RegistrationController) respondSubmitted(ctx *gin.Context, resp dto.SubmissionResponse) {
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	ctx.JSON(status, dto.NewAPIResponse(resp, resp.Confirmation.Title))
}
