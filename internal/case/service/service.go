package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/metrics"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/store"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/identity"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/outbox"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/schema"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/requestcontext"
)

// Metadata keys that may carry schema identifiers as an alternative to the
// request headers.
const (
	metadataKeyFormConfigID   = "form_config_id"
	metadataKeyFormVersion    = "form_version"
	metadataKeyEntityTypeCode = "entity_type_code"
)

// TxRunner executes fn inside one storage transaction. Stores read the
// transaction from the context, so the case row and its outbox events
// commit together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dispatcher accepts downstream orchestration tasks after commit.
type Dispatcher interface {
	Enqueue(task orchestrator.Task) bool
}

// Service implements the case intake pipeline and the review operations.
type Service struct {
	cases    store.Store
	events   outbox.Store
	tx       TxRunner
	resolver *schema.Resolver
	dispatch Dispatcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New constructs the case service.
func New(cases store.Store, events outbox.Store, tx TxRunner, resolver *schema.Resolver, dispatch Dispatcher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if cases == nil {
		return nil, fmt.Errorf("case store is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("schema resolver is required")
	}
	return &Service{
		cases:    cases,
		events:   events,
		tx:       tx,
		resolver: resolver,
		dispatch: dispatch,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("onboarding-kyb/case"),
	}, nil
}

// CreateCaseInput is the decoded intake request plus the schema identifiers
// from the request headers.
type CreateCaseInput struct {
	Type               string
	PartnerID          string
	PartnerReferenceID string
	Applicant          models.Applicant
	Business           *models.Business
	Metadata           models.Metadata

	FormConfigID   string
	FormVersion    string
	EntityTypeCode string
}

// SchemaValidationError carries the field-level failures and the schema
// context of a rejected intake so the HTTP layer can render the full
// envelope.
type SchemaValidationError struct {
	Details []schema.ValidationError
	Mode    schema.Mode
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed with %d field error(s)", len(e.Details))
}

// CreateCase runs the intake pipeline: resolve schema, validate, derive
// identity, persist the aggregate with its events, then hand downstream
// propagation to the dispatcher. Everything before commit can reject the
// request; nothing after commit can.
func (s *Service) CreateCase(ctx context.Context, input CreateCaseInput) (*models.Case, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "case.create")
	defer span.End()

	email := requestcontext.Email(ctx)
	if requestcontext.UserID(ctx) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	caseType, err := domain.ParseCaseType(input.Type)
	if err != nil {
		return nil, err
	}

	formConfigID, formVersion, entityTypeCode := schemaIdentifiers(input)
	mode, cfg := s.resolver.Resolve(ctx, formConfigID, formVersion, entityTypeCode)
	span.SetAttributes(
		attribute.Bool("case.schema_driven", mode.SchemaDriven),
		attribute.String("case.type", caseType.String()),
	)

	if validationErrs := schema.Validate(cfg, input.Applicant, input.Business); len(validationErrs) > 0 {
		s.metrics.IncrementValidationFailure(mode.EntityTypeCode)
		return nil, &SchemaValidationError{Details: validationErrs, Mode: mode}
	}

	partnerID, err := identity.Verify(email, input.PartnerID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	c := models.NewCase(models.NewCaseParams{
		Type:               caseType,
		PartnerID:          partnerID,
		PartnerReferenceID: input.PartnerReferenceID,
		Applicant:          input.Applicant,
		Business:           input.Business,
		Metadata:           withSchemaMetadata(input.Metadata, mode),
		CreatedBy:          email,
		Now:                now,
	})

	// Schema-driven requests bypass the completeness guard unconditionally,
	// including when the configuration lookup failed; only the legacy path
	// can refuse to submit. For a fresh Draft this makes Submit(true)
	// infallible.
	if err := c.Submit(mode.SchemaDriven, now); err != nil {
		return nil, err
	}

	if err := s.persistWithEvents(ctx, c, s.cases.Create); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist case")
	}

	s.metrics.IncrementCreated(modeLabel(mode), caseType.String())
	s.metrics.IncrementTransition(domain.CaseStatusSubmitted.String())
	s.metrics.ObserveIntakeLatency(time.Since(start))
	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID.String(),
		"case_number", c.CaseNumber,
		"case_type", caseType.String(),
		"partner_id", partnerID.String(),
		"schema_driven", mode.SchemaDriven,
		"request_id", requestcontext.RequestID(ctx),
	)

	if s.dispatch != nil {
		s.dispatch.Enqueue(orchestrator.Task{
			CaseID:     c.ID,
			CaseNumber: c.CaseNumber,
			CaseType:   c.Type,
			PartnerID:  c.PartnerID,
			RequestID:  requestcontext.RequestID(ctx),
		})
	}
	return c, nil
}

// Get returns one case by ID.
func (s *Service) Get(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

// StartReview moves a submitted case under review.
func (s *Service) StartReview(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	return s.transition(ctx, id, domain.CaseStatusUnderReview, func(c *models.Case, actor string, now time.Time) error {
		return c.StartReview(actor, now)
	})
}

// Approve terminally approves a case.
func (s *Service) Approve(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	return s.transition(ctx, id, domain.CaseStatusApproved, func(c *models.Case, actor string, now time.Time) error {
		return c.Approve(actor, now)
	})
}

// Reject terminally rejects a case with a reason.
func (s *Service) Reject(ctx context.Context, id domain.CaseID, reason string) (*models.Case, error) {
	return s.transition(ctx, id, domain.CaseStatusRejected, func(c *models.Case, actor string, now time.Time) error {
		return c.Reject(actor, reason, now)
	})
}

func (s *Service) transition(ctx context.Context, id domain.CaseID, target domain.CaseStatus, apply func(*models.Case, string, time.Time) error) (*models.Case, error) {
	actor := requestcontext.Email(ctx)
	if actor == "" {
		actor = requestcontext.UserID(ctx)
	}
	if actor == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c, actor, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.persistWithEvents(ctx, c, s.cases.Update); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist case")
	}

	s.metrics.IncrementTransition(target.String())
	s.logger.InfoContext(ctx, "case transitioned",
		"case_id", c.ID.String(),
		"status", c.Status.String(),
		"actor", actor,
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// persistWithEvents writes the aggregate and its pending events in one
// transaction.
func (s *Service) persistWithEvents(ctx context.Context, c *models.Case, write func(context.Context, *models.Case) error) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := write(txCtx, c); err != nil {
			return err
		}
		for _, event := range c.PullEvents() {
			row, err := outbox.FromEvent(event)
			if err != nil {
				return fmt.Errorf("encode event %s: %w", event.Type, err)
			}
			if err := s.events.Append(txCtx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// schemaIdentifiers merges header-level identifiers with metadata-carried
// ones; headers win.
func schemaIdentifiers(input CreateCaseInput) (formConfigID, formVersion, entityTypeCode string) {
	formConfigID = input.FormConfigID
	formVersion = input.FormVersion
	entityTypeCode = input.EntityTypeCode
	if formConfigID == "" {
		formConfigID, _ = input.Metadata.Get(metadataKeyFormConfigID)
	}
	if formVersion == "" {
		formVersion, _ = input.Metadata.Get(metadataKeyFormVersion)
	}
	if entityTypeCode == "" {
		entityTypeCode, _ = input.Metadata.Get(metadataKeyEntityTypeCode)
	}
	return formConfigID, formVersion, entityTypeCode
}

// withSchemaMetadata records the effective schema identifiers on the
// aggregate so a case remembers which schema admitted it.
func withSchemaMetadata(metadata models.Metadata, mode schema.Mode) models.Metadata {
	out := append(models.Metadata(nil), metadata...)
	if mode.FormConfigID != "" {
		out.Set(metadataKeyFormConfigID, mode.FormConfigID)
	}
	if mode.FormVersion != "" {
		out.Set(metadataKeyFormVersion, mode.FormVersion)
	}
	if mode.EntityTypeCode != "" {
		out.Set(metadataKeyEntityTypeCode, mode.EntityTypeCode)
	}
	return out
}

func modeLabel(mode schema.Mode) string {
	if mode.SchemaDriven {
		return "schema"
	}
	return "legacy"
}
