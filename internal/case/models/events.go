package models

import (
	"encoding/json"
	"time"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
)

// Event types emitted by the case lifecycle.
const (
	EventCaseCreated       = "case_created"
	EventCaseSubmitted     = "case_submitted"
	EventCaseReviewStarted = "case_review_started"
	EventCaseApproved      = "case_approved"
	EventCaseRejected      = "case_rejected"
)

// Event is a domain event pending publication. Events are recorded on the
// aggregate during transitions and cleared once handed to the outbox.
type Event struct {
	ID         domain.EventID
	Type       string
	CaseID     domain.CaseID
	Actor      string
	OccurredAt time.Time
	Payload    json.RawMessage
}

// submittedSnapshot is the payload carried by the Submitted event so
// downstream consumers do not need to re-read the aggregate.
type submittedSnapshot struct {
	CaseNumber string          `json:"caseNumber"`
	CaseType   domain.CaseType `json:"caseType"`
	PartnerID  string          `json:"partnerId"`
	Applicant  Applicant       `json:"applicant"`
	Business   *Business       `json:"business,omitempty"`
	Metadata   Metadata        `json:"metadata,omitempty"`
}

// reviewOutcome is the payload carried by approval/rejection events.
type reviewOutcome struct {
	CaseNumber string `json:"caseNumber"`
	Actor      string `json:"actor"`
	Reason     string `json:"reason,omitempty"`
}

func newEvent(eventType string, caseID domain.CaseID, actor string, occurredAt time.Time, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payload structs are plain value types; marshaling cannot fail for
		// them, and an empty payload keeps the event usable if it ever does.
		raw = []byte(`{}`)
	}
	return Event{
		ID:         domain.NewEventID(),
		Type:       eventType,
		CaseID:     caseID,
		Actor:      actor,
		OccurredAt: occurredAt,
		Payload:    raw,
	}
}
