package domain

import (
	"strings"

	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

// CaseType classifies the legal form of the applicant behind a case.
type CaseType string

// Supported case types.
const (
	CaseTypeIndividual  CaseType = "Individual"
	CaseTypeCorporate   CaseType = "Corporate"
	CaseTypeTrust       CaseType = "Trust"
	CaseTypePartnership CaseType = "Partnership"
)

// validCaseTypes is the single source of truth for supported case types.
var validCaseTypes = map[CaseType]bool{
	CaseTypeIndividual:  true,
	CaseTypeCorporate:   true,
	CaseTypeTrust:       true,
	CaseTypePartnership: true,
}

// ParseCaseType constructs a CaseType from external input. Matching is
// case-insensitive so "INDIVIDUAL" and "individual" both resolve.
//
// Errors: returns CodeBadRequest when the value is empty or unsupported.
func ParseCaseType(s string) (CaseType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "case type cannot be empty")
	}
	for t := range validCaseTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "invalid case type")
}

// IsValid checks if the case type is one of the supported enum values.
func (t CaseType) IsValid() bool {
	return validCaseTypes[t]
}

// String returns the string representation of the case type.
func (t CaseType) String() string {
	return string(t)
}
