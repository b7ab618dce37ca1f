// Package schema resolves external field-requirement configurations and
// validates raw application payloads against them.
package schema

// Requirement is one field requirement within an entity configuration.
type Requirement struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	IsRequired  bool   `json:"isRequired"`
}

// EntityConfiguration is the externally managed requirement schema for one
// entity type. Read-only to this service; absence is not an error by itself.
type EntityConfiguration struct {
	EntityTypeCode string        `json:"entityTypeCode"`
	DisplayName    string        `json:"displayName"`
	Requirements   []Requirement `json:"requirements"`
}

// ValidationError is one field-level failure from requirement validation.
// Field uses the payload path form, e.g. "applicant.first_name". Produced
// transiently, never persisted.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Mode describes how a request's required fields are enforced.
//
// SchemaDriven is true whenever any schema identifier was supplied, even if
// the configuration lookup subsequently failed; in that situation validation
// is skipped but the lifecycle completeness bypass still applies. A request
// with no identifiers at all is legacy and falls back to the hardcoded
// completeness rule.
type Mode struct {
	SchemaDriven   bool
	FormConfigID   string
	FormVersion    string
	EntityTypeCode string
}
