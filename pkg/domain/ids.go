// Package domain holds the identifier and enum types shared across modules.
// Construct values via the Parse functions at trust boundaries; direct casting
// bypasses validation.
package domain

import "github.com/google/uuid"

// CaseID identifies a case aggregate.
type CaseID uuid.UUID

// ParseCaseID constructs a CaseID from external input.
func ParseCaseID(s string) (CaseID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CaseID{}, err
	}
	return CaseID(u), nil
}

// NewCaseID generates a fresh random case identifier.
func NewCaseID() CaseID {
	return CaseID(uuid.New())
}

func (id CaseID) String() string { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// PartnerID identifies the partner that owns a case. Partner identities are
// derived deterministically from the caller's e-mail (internal/identity), so
// any client that knows the derivation rule can verify one.
type PartnerID uuid.UUID

// ParsePartnerID constructs a PartnerID from external input.
func ParsePartnerID(s string) (PartnerID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PartnerID{}, err
	}
	return PartnerID(u), nil
}

func (id PartnerID) String() string { return uuid.UUID(id).String() }

func (id PartnerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// EventID identifies a domain event.
type EventID uuid.UUID

// NewEventID generates a fresh random event identifier.
func NewEventID() EventID {
	return EventID(uuid.New())
}

func (id EventID) String() string { return uuid.UUID(id).String() }
