package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
)

func completeApplicant() models.Applicant {
	return models.Applicant{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: "1985-12-10",
		Email:       "ada@partner.example",
		Phone:       "+44 20 7946 0000",
		Address: models.Address{
			Line1:      "12 St James Square",
			City:       "London",
			PostalCode: "SW1Y 4JU",
			Country:    "GB",
		},
		Nationality: "GB",
	}
}

func requiredReq(code string) Requirement {
	return Requirement{Code: code, IsRequired: true}
}

func TestValidate(t *testing.T) {
	t.Run("nil configuration produces no errors", func(t *testing.T) {
		errs := Validate(nil, models.Applicant{}, nil)
		assert.Empty(t, errs)
	})

	t.Run("complete applicant passes", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			requiredReq("FIRST_NAME"), requiredReq("LAST_NAME"),
			requiredReq("EMAIL"), requiredReq("PHONE"),
		}}
		assert.Empty(t, Validate(cfg, completeApplicant(), nil))
	})

	t.Run("every missing required field is reported", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			requiredReq("FIRST_NAME"), requiredReq("EMAIL"), requiredReq("TAX_ID"),
		}}
		errs := Validate(cfg, models.Applicant{LastName: "Lovelace"}, nil)
		require.Len(t, errs, 3)
		fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
		assert.Contains(t, fields, "applicant.first_name")
		assert.Contains(t, fields, "applicant.email")
		assert.Contains(t, fields, "applicant.tax_id")
	})

	t.Run("non-required requirements are skipped", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			{Code: "TAX_ID", IsRequired: false},
		}}
		assert.Empty(t, Validate(cfg, models.Applicant{}, nil))
	})

	t.Run("synonym spellings resolve to the same field", func(t *testing.T) {
		applicant := completeApplicant()
		applicant.Phone = ""
		for _, code := range []string{"PHONE", "PHONE_NUMBER", "MOBILE", "CONTACT_NUMBER", "phoneNumber"} {
			cfg := &EntityConfiguration{Requirements: []Requirement{requiredReq(code)}}
			errs := Validate(cfg, applicant, nil)
			require.Len(t, errs, 1, "code %s", code)
			assert.Equal(t, "applicant.phone", errs[0].Field, "code %s", code)
		}
	})

	t.Run("unknown codes are silently unvalidated", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			requiredReq("SOURCE_OF_WEALTH"),
		}}
		assert.Empty(t, Validate(cfg, models.Applicant{}, nil))
	})

	t.Run("business requirements skipped when no business payload", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			requiredReq("LEGAL_NAME"), requiredReq("REGISTRATION_NUMBER"),
		}}
		assert.Empty(t, Validate(cfg, completeApplicant(), nil))
	})

	t.Run("business requirements enforced when business supplied", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			requiredReq("LEGAL_NAME"), requiredReq("REGISTRATION_NUMBER"),
		}}
		errs := Validate(cfg, completeApplicant(), &models.Business{LegalName: "Acme Ltd"})
		require.Len(t, errs, 1)
		assert.Equal(t, "business.registration_number", errs[0].Field)
	})

	t.Run("whitespace-only values count as missing", func(t *testing.T) {
		applicant := completeApplicant()
		applicant.Email = "   "
		cfg := &EntityConfiguration{Requirements: []Requirement{requiredReq("EMAIL")}}
		require.Len(t, Validate(cfg, applicant, nil), 1)
	})

	t.Run("display name is used in the message when present", func(t *testing.T) {
		cfg := &EntityConfiguration{Requirements: []Requirement{
			{Code: "DOB", DisplayName: "Date of birth", IsRequired: true},
		}}
		errs := Validate(cfg, models.Applicant{}, nil)
		require.Len(t, errs, 1)
		assert.Equal(t, "Date of birth is required", errs[0].Message)
	})
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"FIRST_NAME":   "FIRST_NAME",
		"firstName":    "FIRST_NAME",
		"first-name":   "FIRST_NAME",
		"first name":   "FIRST_NAME",
		"PhoneNumber":  "PHONE_NUMBER",
		"addressLine1": "ADDRESS_LINE1",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeCode(in), "input %q", in)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, scopeBusiness, classify("LEGAL_NAME"))
	assert.Equal(t, scopeBusiness, classify("COMPANY_REGISTRATION"))
	assert.Equal(t, scopeApplicant, classify("FIRST_NAME"))
	assert.Equal(t, scopeApplicant, classify("PASSPORT_NUMBER"))
}
