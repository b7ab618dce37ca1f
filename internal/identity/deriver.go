// Package identity derives partner identities from authenticated e-mail
// addresses. The derivation is pure and deterministic, which removes any
// need for a separate identity-registration step: any client that knows the
// rule can verify a partner ID against the e-mail it was derived from.
package identity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

// partnerNamespace is the fixed UUIDv5 namespace for partner derivation.
// Changing it re-keys every partner identity, so it is a wire-format
// constant in practice.
var partnerNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Normalize canonicalizes an e-mail for derivation: trimmed and lowercased.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Derive computes the partner identity for an authenticated e-mail. The same
// normalized e-mail always yields the same identity; distinct e-mails yield
// distinct identities (UUIDv5 over SHA-1, collision-free in practice).
//
// Errors: returns CodeUnauthorized when the e-mail is blank (token without
// an e-mail claim).
func Derive(email string) (domain.PartnerID, error) {
	normalized := Normalize(email)
	if normalized == "" {
		return domain.PartnerID{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no e-mail claim")
	}
	return domain.PartnerID(uuid.NewSHA1(partnerNamespace, []byte(normalized))), nil
}

// Verify derives the partner identity for email and checks it against an
// optionally supplied explicit partner ID. An explicit ID that disagrees
// with the derivation is rejected before any write.
//
// Errors: CodeUnauthorized for a blank e-mail; CodeBadRequest for an
// unparseable explicit ID; CodePartnerMismatch when the explicit ID does not
// equal the derived one.
func Verify(email, explicitPartnerID string) (domain.PartnerID, error) {
	derived, err := Derive(email)
	if err != nil {
		return domain.PartnerID{}, err
	}
	if explicitPartnerID == "" {
		return derived, nil
	}
	claimed, err := domain.ParsePartnerID(explicitPartnerID)
	if err != nil {
		return domain.PartnerID{}, dErrors.New(dErrors.CodeBadRequest, "partnerId is not a valid identifier")
	}
	if claimed != derived {
		return domain.PartnerID{}, dErrors.New(dErrors.CodePartnerMismatch, "partnerId does not match the identity derived from the caller's e-mail")
	}
	return derived, nil
}
