package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/service"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/schema"
	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/requestcontext"
)

// createCaseResponse keys are snake_case for compatibility with existing
// partner integrations; the rest of the API is camelCase.
type createCaseResponse struct {
	CaseID     string `json:"case_id"`
	CaseNumber string `json:"case_number"`
	Status     string `json:"status"`
}

type caseResponse struct {
	CaseID             string           `json:"caseId"`
	CaseNumber         string           `json:"caseNumber"`
	Type               string           `json:"type"`
	Status             string           `json:"status"`
	PartnerID          string           `json:"partnerId"`
	PartnerReferenceID string           `json:"partnerReferenceId,omitempty"`
	Applicant          models.Applicant `json:"applicant"`
	Business           *models.Business `json:"business,omitempty"`
	Metadata           models.Metadata  `json:"metadata,omitempty"`
	CreatedBy          string           `json:"createdBy"`
	UpdatedBy          string           `json:"updatedBy"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func toCaseResponse(c *models.Case) caseResponse {
	return caseResponse{
		CaseID:             c.ID.String(),
		CaseNumber:         c.CaseNumber,
		Type:               c.Type.String(),
		Status:             c.Status.String(),
		PartnerID:          c.PartnerID.String(),
		PartnerReferenceID: c.PartnerReferenceID,
		Applicant:          c.Applicant,
		Business:           c.Business,
		Metadata:           c.Metadata,
		CreatedBy:          c.CreatedBy,
		UpdatedBy:          c.UpdatedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type errorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Details []dErrors.FieldDetail `json:"details,omitempty"`
	DebugID string                `json:"debug_id,omitempty"`
}

// validationResponse is the rich rejection envelope: every failed
// requirement plus the schema context the request was judged against.
type validationResponse struct {
	Error          string                   `json:"error"`
	Message        string                   `json:"message"`
	Details        []schema.ValidationError `json:"details"`
	EntityTypeCode string                   `json:"entityTypeCode,omitempty"`
	FormConfigID   string                   `json:"formConfigId,omitempty"`
	FormVersion    string                   `json:"formVersion,omitempty"`
	DebugID        string                   `json:"debug_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidationError(w http.ResponseWriter, r *http.Request, verr *service.SchemaValidationError) {
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Error:          string(dErrors.CodeValidationFailed),
		Message:        "application failed requirement validation",
		Details:        verr.Details,
		EntityTypeCode: verr.Mode.EntityTypeCode,
		FormConfigID:   verr.Mode.FormConfigID,
		FormVersion:    verr.Mode.FormVersion,
		DebugID:        requestcontext.RequestID(r.Context()),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeInternal
	resp := errorResponse{
		Message: "internal server error",
		DebugID: requestcontext.RequestID(r.Context()),
	}
	if dErr, ok := dErrors.From(err); ok {
		code = dErr.Code
		resp.Message = dErr.Message
		resp.Details = dErr.Details
	}
	resp.Error = string(code)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "error", err, "status", status)
	}
	writeJSON(w, status, resp)
}
