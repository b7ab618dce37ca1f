package handler

import (
	"net/http"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/service"
)

// Schema identifiers arrive on headers; syndication partners that cannot
// set custom headers put the same keys in metadata instead.
const (
	headerFormConfigID = "X-Form-Config-Id"
	headerFormVersion  = "X-Form-Version"
	headerEntityType   = "X-Entity-Type"
)

type createCaseRequest struct {
	Type               string           `json:"type"`
	PartnerID          string           `json:"partnerId,omitempty"`
	PartnerReferenceID string           `json:"partnerReferenceId,omitempty"`
	Applicant          models.Applicant `json:"applicant"`
	Business           *models.Business `json:"business,omitempty"`
	Metadata           models.Metadata  `json:"metadata,omitempty"`
}

func (req createCaseRequest) toInput(r *http.Request) service.CreateCaseInput {
	return service.CreateCaseInput{
		Type:               req.Type,
		PartnerID:          req.PartnerID,
		PartnerReferenceID: req.PartnerReferenceID,
		Applicant:          req.Applicant,
		Business:           req.Business,
		Metadata:           req.Metadata,
		FormConfigID:       r.Header.Get(headerFormConfigID),
		FormVersion:        r.Header.Get(headerFormVersion),
		EntityTypeCode:     r.Header.Get(headerEntityType),
	}
}

type rejectCaseRequest struct {
	Reason string `json:"reason"`
}
