package schema

import (
	"fmt"
	"strings"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
)

// fieldScope classifies a requirement as targeting the applicant or the
// business payload.
type fieldScope string

const (
	scopeApplicant fieldScope = "applicant"
	scopeBusiness  fieldScope = "business"
)

// businessMarkers are the code substrings that route a requirement to the
// business payload.
var businessMarkers = []string{
	"LEGAL_NAME", "REGISTRATION", "BUSINESS", "COMPANY", "TRADING_NAME", "TRADE_NAME",
}

// fieldBinding maps one requirement-code spelling to a payload accessor.
// The table is typed and built once at package load; a binding that
// misroutes a value is a programming error caught by the validator tests,
// not a request-time failure.
type fieldBinding struct {
	scope fieldScope
	get   func(applicant models.Applicant, business *models.Business) string
}

func applicantField(get func(models.Applicant) string) fieldBinding {
	return fieldBinding{
		scope: scopeApplicant,
		get: func(a models.Applicant, _ *models.Business) string {
			return get(a)
		},
	}
}

func businessField(get func(models.Business) string) fieldBinding {
	return fieldBinding{
		scope: scopeBusiness,
		get: func(_ models.Applicant, b *models.Business) string {
			if b == nil {
				return ""
			}
			return get(*b)
		},
	}
}

// bindings is the synonym table: many requirement-code spellings resolve to
// the same payload field. Codes are matched case-insensitively after
// normalization. Codes absent from this table are silently unvalidated.
var bindings = map[string]fieldBinding{
	"FIRST_NAME": applicantField(func(a models.Applicant) string { return a.FirstName }),
	"GIVEN_NAME": applicantField(func(a models.Applicant) string { return a.FirstName }),
	"FIRSTNAME":  applicantField(func(a models.Applicant) string { return a.FirstName }),

	"MIDDLE_NAME": applicantField(func(a models.Applicant) string { return a.MiddleName }),

	"LAST_NAME":   applicantField(func(a models.Applicant) string { return a.LastName }),
	"SURNAME":     applicantField(func(a models.Applicant) string { return a.LastName }),
	"FAMILY_NAME": applicantField(func(a models.Applicant) string { return a.LastName }),
	"LASTNAME":    applicantField(func(a models.Applicant) string { return a.LastName }),

	"EMAIL":         applicantField(func(a models.Applicant) string { return a.Email }),
	"EMAIL_ADDRESS": applicantField(func(a models.Applicant) string { return a.Email }),

	"PHONE":          applicantField(func(a models.Applicant) string { return a.Phone }),
	"PHONE_NUMBER":   applicantField(func(a models.Applicant) string { return a.Phone }),
	"MOBILE":         applicantField(func(a models.Applicant) string { return a.Phone }),
	"MOBILE_NUMBER":  applicantField(func(a models.Applicant) string { return a.Phone }),
	"CONTACT_NUMBER": applicantField(func(a models.Applicant) string { return a.Phone }),

	"DATE_OF_BIRTH": applicantField(func(a models.Applicant) string { return a.DateOfBirth }),
	"DOB":           applicantField(func(a models.Applicant) string { return a.DateOfBirth }),
	"BIRTH_DATE":    applicantField(func(a models.Applicant) string { return a.DateOfBirth }),

	"ADDRESS":             applicantField(func(a models.Applicant) string { return a.Address.Line1 }),
	"ADDRESS_LINE1":       applicantField(func(a models.Applicant) string { return a.Address.Line1 }),
	"STREET_ADDRESS":      applicantField(func(a models.Applicant) string { return a.Address.Line1 }),
	"RESIDENTIAL_ADDRESS": applicantField(func(a models.Applicant) string { return a.Address.Line1 }),

	"CITY":        applicantField(func(a models.Applicant) string { return a.Address.City }),
	"STATE":       applicantField(func(a models.Applicant) string { return a.Address.State }),
	"PROVINCE":    applicantField(func(a models.Applicant) string { return a.Address.State }),
	"POSTAL_CODE": applicantField(func(a models.Applicant) string { return a.Address.PostalCode }),
	"POSTCODE":    applicantField(func(a models.Applicant) string { return a.Address.PostalCode }),
	"ZIP":         applicantField(func(a models.Applicant) string { return a.Address.PostalCode }),
	"ZIP_CODE":    applicantField(func(a models.Applicant) string { return a.Address.PostalCode }),
	"COUNTRY":     applicantField(func(a models.Applicant) string { return a.Address.Country }),

	"NATIONALITY": applicantField(func(a models.Applicant) string { return a.Nationality }),
	"CITIZENSHIP": applicantField(func(a models.Applicant) string { return a.Nationality }),

	"TAX_ID":     applicantField(func(a models.Applicant) string { return a.TaxID }),
	"TIN":        applicantField(func(a models.Applicant) string { return a.TaxID }),
	"TAX_NUMBER": applicantField(func(a models.Applicant) string { return a.TaxID }),

	"PASSPORT":        applicantField(func(a models.Applicant) string { return a.PassportNumber }),
	"PASSPORT_NUMBER": applicantField(func(a models.Applicant) string { return a.PassportNumber }),

	"LEGAL_NAME":    businessField(func(b models.Business) string { return b.LegalName }),
	"BUSINESS_NAME": businessField(func(b models.Business) string { return b.LegalName }),
	"COMPANY_NAME":  businessField(func(b models.Business) string { return b.LegalName }),
	"TRADING_NAME":  businessField(func(b models.Business) string { return b.LegalName }),
	"TRADE_NAME":    businessField(func(b models.Business) string { return b.LegalName }),

	"REGISTRATION_NUMBER":   businessField(func(b models.Business) string { return b.RegistrationNumber }),
	"COMPANY_REGISTRATION":  businessField(func(b models.Business) string { return b.RegistrationNumber }),
	"BUSINESS_REGISTRATION": businessField(func(b models.Business) string { return b.RegistrationNumber }),

	"REGISTRATION_COUNTRY":    businessField(func(b models.Business) string { return b.RegistrationCountry }),
	"COUNTRY_OF_REGISTRATION": businessField(func(b models.Business) string { return b.RegistrationCountry }),
	"INCORPORATION_COUNTRY":   businessField(func(b models.Business) string { return b.RegistrationCountry }),

	"BUSINESS_ADDRESS":   businessField(func(b models.Business) string { return b.Address.Line1 }),
	"REGISTERED_ADDRESS": businessField(func(b models.Business) string { return b.Address.Line1 }),
	"COMPANY_ADDRESS":    businessField(func(b models.Business) string { return b.Address.Line1 }),
}

// Validate checks the raw payload against a resolved configuration and
// returns all field-level failures. A nil configuration produces no errors;
// the caller relies on the lifecycle bypass or the legacy completeness rule
// instead.
//
// Business-scoped requirements are skipped entirely when no business payload
// was supplied: they cannot be validated and are not reported as missing.
func Validate(cfg *EntityConfiguration, applicant models.Applicant, business *models.Business) []ValidationError {
	if cfg == nil {
		return nil
	}

	var errs []ValidationError
	for _, req := range cfg.Requirements {
		if !req.IsRequired {
			continue
		}
		code := normalizeCode(req.Code)
		scope := classify(code)
		if scope == scopeBusiness && business == nil {
			continue
		}
		binding, known := bindings[code]
		if !known {
			// Unknown codes are silently unvalidated; schema expansion with
			// new field types loses enforcement until a binding is added.
			continue
		}
		if strings.TrimSpace(binding.get(applicant, business)) == "" {
			errs = append(errs, ValidationError{
				Field:   string(scope) + "." + strings.ToLower(code),
				Code:    req.Code,
				Message: fmt.Sprintf("%s is required", requirementLabel(req)),
			})
		}
	}
	return errs
}

// classify routes a requirement code to its payload by fixed substring
// markers; anything not matching a business marker targets the applicant.
func classify(code string) fieldScope {
	for _, marker := range businessMarkers {
		if strings.Contains(code, marker) {
			return scopeBusiness
		}
	}
	return scopeApplicant
}

// normalizeCode canonicalizes a requirement code for table lookup:
// uppercase, word boundaries as single underscores. Handles both
// "FIRST_NAME" and "firstName" spellings.
func normalizeCode(code string) string {
	var b strings.Builder
	prevUnderscore := false
	for i, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
			prevUnderscore = false
		case r >= 'A' && r <= 'Z':
			if i > 0 && !prevUnderscore && isLower(rune(code[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

func requirementLabel(req Requirement) string {
	if req.DisplayName != "" {
		return req.DisplayName
	}
	return req.Code
}
