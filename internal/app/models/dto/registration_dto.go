package dto

import (
	"time"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

// FieldSchema describes one form field
type FieldSchema struct {
	Path    string `json:"path" example:"member1.email"`
	Label   string `json:"label" example:"Email"`
	Type    string `json:"type" example:"string"`
	Rule    string `json:"rule" example:"required,email"`
	Message string `json:"message" example:"Please enter a valid email address."`
}

// SchemaResponse describes the registration form
type SchemaResponse struct {
	Fields          []FieldSchema           `json:"fields"`
	SemesterOptions []models.SemesterOption `json:"semesterOptions"`
	TeamSize        int                     `json:"teamSize" example:"3"`
}

// NewSchemaResponse builds the schema from the model's field table
func NewSchemaResponse() SchemaResponse {
	specs := models.FieldSpecs()
	fields := make([]FieldSchema, 0, len(specs))
	for _, spec := range specs {
		fields = append(fields, FieldSchema{
			Path:    spec.Path,
			Label:   spec.Label,
			Type:    spec.Type(),
			Rule:    spec.Rule,
			Message: spec.Message,
		})
	}
	return SchemaResponse{
		Fields:          fields,
		SemesterOptions: models.SemesterOptions(),
		TeamSize:        models.TeamSize,
	}
}

// SubmissionErrorResponse is the last failed submission of a form
type SubmissionErrorResponse struct {
	Kind      string `json:"kind" example:"unavailable"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// NewSubmissionErrorResponse converts a SubmissionError, or returns nil
func NewSubmissionErrorResponse(err *apperrors.SubmissionError) *SubmissionErrorResponse {
	if err == nil {
		return nil
	}
	return &SubmissionErrorResponse{
		Kind:      string(err.Kind),
		Message:   SubmissionMessage(err),
		Retryable: err.Retryable(),
	}
}

// SubmissionMessage is the user-facing text for a failed submission
func SubmissionMessage(err *apperrors.SubmissionError) string {
	switch err.Kind {
	case apperrors.SubmissionDuplicate:
		return "A team led by this email is already registered."
	case apperrors.SubmissionRejected:
		return "The registration was rejected. Please review your details."
	case apperrors.SubmissionConflict:
		return "This request was already used to submit a different registration. Please submit again."
	case apperrors.SubmissionTimeout:
		return "The registration service did not respond in time. Please try again."
	case apperrors.SubmissionCanceled:
		return "The registration was canceled before it completed."
	default:
		return "The registration service is unavailable. Please try again."
	}
}

// FormResponse is a snapshot of a registration form
type FormResponse struct {
	ID        string                   `json:"id"`
	State     string                   `json:"state" example:"idle" enums:"idle,submitting,failed"`
	Draft     models.Registration      `json:"draft"`
	LastError *SubmissionErrorResponse `json:"lastError,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// NewFormResponse converts a form snapshot
func NewFormResponse(s registration.Snapshot) FormResponse {
	return FormResponse{
		ID:        s.ID,
		State:     string(s.State),
		Draft:     s.Draft,
		LastError: NewSubmissionErrorResponse(s.LastError),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// UpdateFieldRequest sets one field of a draft
type UpdateFieldRequest struct {
	Path  string      `json:"path" binding:"required" example:"leaderEmail"`
	Value interface{} `json:"value" swaggertype:"string" example:"jane@x.com"`
}

// FieldFeedbackResponse is the inline validation result of an update
type FieldFeedbackResponse struct {
	Path  string                `json:"path"`
	Valid bool                  `json:"valid"`
	Error *apperrors.FieldError `json:"error,omitempty"`
}

// ValidationResponse lists every violation of a draft
type ValidationResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []apperrors.FieldError `json:"errors"`
}

// SubmissionResponse is returned after a successful submission
type SubmissionResponse struct {
	RegistrationID string                    `json:"registrationId"`
	Replayed       bool                      `json:"replayed"`
	Confirmation   registration.Confirmation `json:"confirmation"`
	SubmittedAt    time.Time                 `json:"submittedAt"`
}

// NewSubmissionResponse converts a submission result
func NewSubmissionResponse(r registration.Result) SubmissionResponse {
	return SubmissionResponse{
		RegistrationID: r.RegistrationID,
		Replayed:       r.Replayed,
		Confirmation:   r.Confirmation,
		SubmittedAt:    r.SubmittedAt,
	}
}

// RegistrationResponse is a stored registration as shown to organizers
type RegistrationResponse struct {
	ID           string              `json:"id"`
	Registration models.Registration `json:"registration"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// NewRegistrationResponse converts a stored record
func NewRegistrationResponse(rec *models.RegistrationRecord) RegistrationResponse {
	return RegistrationResponse{
		ID:           rec.ID,
		Registration: rec.Registration,
		CreatedAt:    rec.CreatedAt,
	}
}

// RegistrationListResponse is a page of registrations
type RegistrationListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Pagination    PaginationInfo         `json:"pagination"`
}
