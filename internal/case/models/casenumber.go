package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCaseNumber builds a human-readable case number, e.g.
// "KYB-20260831-3F9A2C". The suffix is random; the case ID remains the
// canonical identifier and the number exists for humans and support tickets.
func NewCaseNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("KYB-%s-%s", now.UTC().Format("20060102"), suffix)
}
