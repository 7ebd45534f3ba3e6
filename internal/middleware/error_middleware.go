package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hackfest/internal/app/models/dto"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/logger"
)

// --- Central Error Handling Middleware/Function ---

// HandleAPIError maps an application error to a status code and writes the
// standard error response
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	// A SubmissionError also unwraps to its cause, so it goes first.
	var subErr *apperrors.SubmissionError
	if errors.As(err, &subErr) {
		return submissionErrorDetail(subErr)
	}

	var validationErrs apperrors.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Please correct the highlighted fields").
			WithDetails([]apperrors.FieldError(validationErrs))
		if len(validationErrs) == 1 {
			detail.WithField(validationErrs[0].Field)
		}
		return http.StatusBadRequest, detail
	}

	var fieldErr *apperrors.FieldError
	if errors.As(err, &fieldErr) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fieldErr.Message).
			WithField(fieldErr.Field)
		return http.StatusBadRequest, detail
	}

	switch {
	case errors.Is(err, apperrors.ErrUnknownField),
		errors.Is(err, apperrors.ErrFieldType):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, badRequestMessage(err))
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrFormNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Registration form not found or expired")
	case errors.Is(err, apperrors.ErrRegistrationNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Registration not found")
	case errors.Is(err, apperrors.ErrSubmissionInProgress):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "A submission is already in progress for this form").
			WithRetryable(true)
	case errors.Is(err, apperrors.ErrRegistrationAlreadyExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "A team led by this email is already registered")
	case errors.Is(err, apperrors.ErrTooManyForms):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Too many open registration forms, please try again later").
			WithRetryable(true)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func submissionErrorDetail(err *apperrors.SubmissionError) (int, *dto.ErrorDetail) {
	message := dto.SubmissionMessage(err)

	switch err.Kind {
	case apperrors.SubmissionDuplicate:
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message)
	case apperrors.SubmissionRejected:
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, message)
		var validationErrs apperrors.ValidationErrors
		if errors.As(err, &validationErrs) {
			detail.WithDetails([]apperrors.FieldError(validationErrs))
		}
		return http.StatusUnprocessableEntity, detail
	case apperrors.SubmissionConflict:
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, message)
	case apperrors.SubmissionTimeout:
		return http.StatusGatewayTimeout, dto.NewErrorDetail(dto.ErrorCodeTimeout, message).WithRetryable(true)
	case apperrors.SubmissionCanceled:
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, message).WithRetryable(true)
	default:
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, message).
			WithRetryable(err.Retryable())
	}
}

func badRequestMessage(err error) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return err.Error()
}
