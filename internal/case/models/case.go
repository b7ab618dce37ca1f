package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

// Case is the onboarding application aggregate. Status moves only through
// the named transition methods; direct field assignment bypasses the
// invariants and has no place outside this package.
type Case struct {
	ID                 domain.CaseID
	CaseNumber         string
	Type               domain.CaseType
	Status             domain.CaseStatus
	PartnerID          domain.PartnerID
	PartnerReferenceID string
	Applicant          Applicant
	Business           *Business
	Metadata           Metadata
	CreatedBy          string
	UpdatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	events []Event
}

// NewCaseParams carries everything needed to open a case in Draft.
type NewCaseParams struct {
	Type               domain.CaseType
	PartnerID          domain.PartnerID
	PartnerReferenceID string
	Applicant          Applicant
	Business           *Business
	Metadata           Metadata
	CreatedBy          string
	Now                time.Time
}

// NewCase opens a case in Draft and records the creation event.
func NewCase(p NewCaseParams) *Case {
	id := domain.NewCaseID()
	c := &Case{
		ID:                 id,
		CaseNumber:         NewCaseNumber(p.Now),
		Type:               p.Type,
		Status:             domain.CaseStatusDraft,
		PartnerID:          p.PartnerID,
		PartnerReferenceID: p.PartnerReferenceID,
		Applicant:          p.Applicant,
		Business:           p.Business,
		Metadata:           p.Metadata,
		CreatedBy:          p.CreatedBy,
		UpdatedBy:          p.CreatedBy,
		CreatedAt:          p.Now,
		UpdatedAt:          p.Now,
	}
	c.record(newEvent(EventCaseCreated, id, p.CreatedBy, p.Now, map[string]string{
		"caseNumber": c.CaseNumber,
		"caseType":   c.Type.String(),
		"partnerId":  c.PartnerID.String(),
	}))
	return c
}

// Submit moves the case from Draft to Submitted.
//
// externallyValidated marks that required-field enforcement already happened
// against an external schema (or was deliberately waived because the schema
// lookup failed); the hardcoded completeness predicate is then bypassed and
// the transition cannot fail for a Draft case. Without it, the legacy
// completeness rule applies and a violation leaves the case untouched.
func (c *Case) Submit(externallyValidated bool, now time.Time) error {
	if c.Status != domain.CaseStatusDraft {
		return c.invalidTransition(domain.CaseStatusSubmitted)
	}
	if !externallyValidated {
		if missing := c.missingMandatoryFields(); len(missing) > 0 {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("application is incomplete: missing %s", strings.Join(missing, ", ")))
		}
	}
	c.Status = domain.CaseStatusSubmitted
	c.UpdatedAt = now
	c.record(newEvent(EventCaseSubmitted, c.ID, c.CreatedBy, now, submittedSnapshot{
		CaseNumber: c.CaseNumber,
		CaseType:   c.Type,
		PartnerID:  c.PartnerID.String(),
		Applicant:  c.Applicant,
		Business:   c.Business,
		Metadata:   c.Metadata,
	}))
	return nil
}

// StartReview moves a submitted case under review.
func (c *Case) StartReview(actor string, now time.Time) error {
	if actor == "" {
		return dErrors.New(dErrors.CodeBadRequest, "actor is required")
	}
	if !c.Status.CanTransitionTo(domain.CaseStatusUnderReview) {
		return c.invalidTransition(domain.CaseStatusUnderReview)
	}
	c.Status = domain.CaseStatusUnderReview
	c.UpdatedBy = actor
	c.UpdatedAt = now
	c.record(newEvent(EventCaseReviewStarted, c.ID, actor, now, reviewOutcome{
		CaseNumber: c.CaseNumber,
		Actor:      actor,
	}))
	return nil
}

// Approve terminally approves a case from Submitted or UnderReview.
func (c *Case) Approve(actor string, now time.Time) error {
	if actor == "" {
		return dErrors.New(dErrors.CodeBadRequest, "actor is required")
	}
	if !c.Status.CanTransitionTo(domain.CaseStatusApproved) {
		return c.invalidTransition(domain.CaseStatusApproved)
	}
	c.Status = domain.CaseStatusApproved
	c.UpdatedBy = actor
	c.UpdatedAt = now
	c.record(newEvent(EventCaseApproved, c.ID, actor, now, reviewOutcome{
		CaseNumber: c.CaseNumber,
		Actor:      actor,
	}))
	return nil
}

// Reject terminally rejects a case from Submitted or UnderReview. A
// non-blank reason is required.
func (c *Case) Reject(actor, reason string, now time.Time) error {
	if actor == "" {
		return dErrors.New(dErrors.CodeBadRequest, "actor is required")
	}
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "rejection reason is required")
	}
	if !c.Status.CanTransitionTo(domain.CaseStatusRejected) {
		return c.invalidTransition(domain.CaseStatusRejected)
	}
	c.Status = domain.CaseStatusRejected
	c.UpdatedBy = actor
	c.UpdatedAt = now
	c.record(newEvent(EventCaseRejected, c.ID, actor, now, reviewOutcome{
		CaseNumber: c.CaseNumber,
		Actor:      actor,
		Reason:     reason,
	}))
	return nil
}

// PullEvents returns and clears the pending domain events. Call inside the
// transaction that persists the aggregate so events and state commit
// together.
func (c *Case) PullEvents() []Event {
	events := c.events
	c.events = nil
	return events
}

// missingMandatoryFields is the hardcoded legacy completeness rule applied
// only when no external schema identifiers were supplied.
func (c *Case) missingMandatoryFields() []string {
	var missing []string
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check("applicant.first_name", c.Applicant.FirstName)
	check("applicant.last_name", c.Applicant.LastName)
	check("applicant.email", c.Applicant.Email)
	check("applicant.phone", c.Applicant.Phone)
	check("applicant.date_of_birth", c.Applicant.DateOfBirth)
	check("applicant.address", c.Applicant.Address.Line1)
	check("applicant.nationality", c.Applicant.Nationality)
	return missing
}

func (c *Case) invalidTransition(target domain.CaseStatus) error {
	return dErrors.New(dErrors.CodeInvariantViolation,
		fmt.Sprintf("cannot transition case from %s to %s", c.Status, target))
}

func (c *Case) record(e Event) {
	c.events = append(c.events, e)
}
