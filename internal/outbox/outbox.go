// Package outbox implements the transactional outbox for case domain
// events. Events are appended in the same transaction as the aggregate write
// and published to Kafka by a separate worker, so a crash between commit and
// publish never loses an event.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
)

// Row is one pending or published outbox entry.
type Row struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// Store persists outbox rows. Append participates in the caller's
// transaction when one is in the context.
type Store interface {
	Append(ctx context.Context, row Row) error
	Unpublished(ctx context.Context, limit int) ([]Row, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// envelope is the JSON structure published to Kafka.
type envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	CaseID     string          `json:"caseId"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt string          `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// FromEvent converts a case domain event into an outbox row.
func FromEvent(e models.Event) (Row, error) {
	payload, err := json.Marshal(envelope{
		ID:         e.ID.String(),
		Type:       e.Type,
		CaseID:     e.CaseID.String(),
		Actor:      e.Actor,
		OccurredAt: e.OccurredAt.Format(time.RFC3339Nano),
		Payload:    e.Payload,
	})
	if err != nil {
		return Row{}, err
	}
	return Row{
		ID:            uuid.UUID(e.ID),
		AggregateType: "case",
		AggregateID:   e.CaseID.String(),
		EventType:     e.Type,
		Payload:       payload,
		CreatedAt:     e.OccurredAt,
	}, nil
}
