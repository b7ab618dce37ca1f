package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

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

// =============================================================================
// Case Service Test Suite
// =============================================================================
// Justification for unit tests: the intake pipeline couples schema resolution,
// identity verification, the lifecycle bypass, and transactional persistence.
// The failure-ordering guarantees (nothing persisted on rejection, dispatch
// only after commit) are hard to pin down through E2E tests.

type fakeTxRunner struct {
	calls int
	fail  error
}

func (t *fakeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.fail != nil {
		return t.fail
	}
	return fn(ctx)
}

type fakeDispatcher struct {
	tasks []orchestrator.Task
}

func (d *fakeDispatcher) Enqueue(task orchestrator.Task) bool {
	d.tasks = append(d.tasks, task)
	return true
}

type fakeProvider struct {
	cfg *schema.EntityConfiguration
	err error
}

func (p *fakeProvider) FetchByFormConfig(context.Context, string, string) (*schema.EntityConfiguration, error) {
	return p.cfg, p.err
}

func (p *fakeProvider) FetchByEntityType(context.Context, string) (*schema.EntityConfiguration, error) {
	return p.cfg, p.err
}

type CaseServiceSuite struct {
	suite.Suite
	cases      *store.MemoryStore
	events     *outbox.MemoryStore
	tx         *fakeTxRunner
	dispatcher *fakeDispatcher
	provider   *fakeProvider
	service    *Service
}

func TestCaseServiceSuite(t *testing.T) {
	suite.Run(t, new(CaseServiceSuite))
}

func (s *CaseServiceSuite) SetupTest() {
	s.cases = store.NewMemory()
	s.events = outbox.NewMemory()
	s.tx = &fakeTxRunner{}
	s.dispatcher = &fakeDispatcher{}
	s.provider = &fakeProvider{}

	logger := slog.New(slog.DiscardHandler)
	resolver := schema.NewResolver(s.provider, logger)

	var err error
	s.service, err = New(s.cases, s.events, s.tx, resolver, s.dispatcher, logger, nil)
	s.Require().NoError(err)
}

func (s *CaseServiceSuite) ctx() context.Context {
	ctx := requestcontext.WithUserID(context.Background(), "user-1")
	ctx = requestcontext.WithEmail(ctx, "ops@partner.example")
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
}

func completeInput() CreateCaseInput {
	return CreateCaseInput{
		Type: "individual",
		Applicant: models.Applicant{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			DateOfBirth: "1985-12-10",
			Email:       "ada@partner.example",
			Phone:       "+44 20 7946 0000",
			Address:     models.Address{Line1: "12 St James Square"},
			Nationality: "GB",
		},
	}
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *CaseServiceSuite) TestNew() {
	logger := slog.New(slog.DiscardHandler)
	resolver := schema.NewResolver(nil, logger)

	s.Run("nil case store returns error", func() {
		_, err := New(nil, s.events, s.tx, resolver, nil, logger, nil)
		s.Error(err)
		s.Contains(err.Error(), "case store is required")
	})

	s.Run("nil outbox store returns error", func() {
		_, err := New(s.cases, nil, s.tx, resolver, nil, logger, nil)
		s.Error(err)
	})

	s.Run("nil dispatcher is allowed", func() {
		svc, err := New(s.cases, s.events, s.tx, resolver, nil, logger, nil)
		s.NoError(err)
		s.NotNil(svc)
	})
}

// =============================================================================
// CreateCase Tests
// =============================================================================

func (s *CaseServiceSuite) TestCreateCaseLegacyPath() {
	s.Run("complete application is created submitted", func() {
		c, err := s.service.CreateCase(s.ctx(), completeInput())
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusSubmitted, c.Status)
		s.NotEmpty(c.CaseNumber)

		stored, err := s.cases.Get(context.Background(), c.ID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusSubmitted, stored.Status)
	})

	s.Run("incomplete application is rejected and nothing persists", func() {
		s.SetupTest()
		input := completeInput()
		input.Applicant.Phone = ""

		_, err := s.service.CreateCase(s.ctx(), input)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))
		s.Zero(s.cases.Len())
		s.Empty(s.events.All())
		s.Empty(s.dispatcher.tasks)
	})

	s.Run("unknown case type is a bad request", func() {
		input := completeInput()
		input.Type = "charity"
		_, err := s.service.CreateCase(s.ctx(), input)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})
}

func (s *CaseServiceSuite) TestCreateCaseSchemaDrivenPath() {
	s.Run("validation failure returns all field errors and persists nothing", func() {
		s.provider.cfg = &schema.EntityConfiguration{
			EntityTypeCode: "INDIVIDUAL",
			Requirements: []schema.Requirement{
				{Code: "TAX_ID", IsRequired: true},
				{Code: "PASSPORT_NUMBER", IsRequired: true},
			},
		}
		input := completeInput()
		input.EntityTypeCode = "INDIVIDUAL"

		_, err := s.service.CreateCase(s.ctx(), input)
		var verr *SchemaValidationError
		s.Require().ErrorAs(err, &verr)
		s.Len(verr.Details, 2)
		s.Equal("INDIVIDUAL", verr.Mode.EntityTypeCode)
		s.Zero(s.cases.Len())
		s.Zero(s.tx.calls)
	})

	s.Run("failed config lookup admits an incomplete application", func() {
		s.SetupTest()
		s.provider.err = sentinel.ErrUnavailable
		input := completeInput()
		input.Applicant = models.Applicant{FirstName: "Ada"}
		input.EntityTypeCode = "INDIVIDUAL"

		c, err := s.service.CreateCase(s.ctx(), input)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusSubmitted, c.Status)
	})

	s.Run("schema identifiers fall back to metadata keys", func() {
		s.SetupTest()
		s.provider.cfg = &schema.EntityConfiguration{
			Requirements: []schema.Requirement{{Code: "TAX_ID", IsRequired: true}},
		}
		input := completeInput()
		input.Metadata = models.Metadata{{Key: "entity_type_code", Value: "INDIVIDUAL"}}

		_, err := s.service.CreateCase(s.ctx(), input)
		var verr *SchemaValidationError
		s.Require().ErrorAs(err, &verr)
		s.True(verr.Mode.SchemaDriven)
	})
}

func (s *CaseServiceSuite) TestCreateCaseIdentity() {
	s.Run("partner id is derived from the caller's email", func() {
		derived, err := identity.Derive("ops@partner.example")
		s.Require().NoError(err)

		c, err := s.service.CreateCase(s.ctx(), completeInput())
		s.Require().NoError(err)
		s.Equal(derived, c.PartnerID)
	})

	s.Run("mismatched explicit partner id persists nothing", func() {
		s.SetupTest()
		other, err := identity.Derive("someone@else.example")
		s.Require().NoError(err)

		input := completeInput()
		input.PartnerID = other.String()

		_, err = s.service.CreateCase(s.ctx(), input)
		s.True(dErrors.Is(err, dErrors.CodePartnerMismatch))
		s.Zero(s.cases.Len())
		s.Empty(s.dispatcher.tasks)
	})

	s.Run("missing subject is unauthorized", func() {
		_, err := s.service.CreateCase(context.Background(), completeInput())
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func (s *CaseServiceSuite) TestCreateCasePersistence() {
	s.Run("case and events commit through one transaction", func() {
		c, err := s.service.CreateCase(s.ctx(), completeInput())
		s.Require().NoError(err)
		s.Equal(1, s.tx.calls)

		rows := s.events.All()
		s.Require().Len(rows, 2)
		s.Equal(models.EventCaseCreated, rows[0].EventType)
		s.Equal(models.EventCaseSubmitted, rows[1].EventType)
		s.Equal(c.ID.String(), rows[0].AggregateID)

		var envelope map[string]json.RawMessage
		s.Require().NoError(json.Unmarshal(rows[1].Payload, &envelope))
		s.Contains(envelope, "payload")
	})

	s.Run("storage failure surfaces as internal and skips dispatch", func() {
		s.SetupTest()
		s.tx.fail = errors.New("connection reset")

		_, err := s.service.CreateCase(s.ctx(), completeInput())
		s.True(dErrors.Is(err, dErrors.CodeInternal))
		s.Empty(s.dispatcher.tasks)
	})

	s.Run("dispatch happens only after successful commit", func() {
		s.SetupTest()
		c, err := s.service.CreateCase(s.ctx(), completeInput())
		s.Require().NoError(err)
		s.Require().Len(s.dispatcher.tasks, 1)
		s.Equal(c.ID, s.dispatcher.tasks[0].CaseID)
		s.Equal(c.CaseNumber, s.dispatcher.tasks[0].CaseNumber)
		s.Equal("req-1", s.dispatcher.tasks[0].RequestID)
	})
}

// =============================================================================
// Review Operation Tests
// =============================================================================

func (s *CaseServiceSuite) TestReviewOperations() {
	create := func() domain.CaseID {
		c, err := s.service.CreateCase(s.ctx(), completeInput())
		s.Require().NoError(err)
		return c.ID
	}

	s.Run("start review then approve", func() {
		id := create()
		c, err := s.service.StartReview(s.ctx(), id)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusUnderReview, c.Status)

		c, err = s.service.Approve(s.ctx(), id)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusApproved, c.Status)
	})

	s.Run("reject records the reason event", func() {
		s.SetupTest()
		id := create()
		c, err := s.service.Reject(s.ctx(), id, "document mismatch")
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusRejected, c.Status)

		rows := s.events.All()
		s.Equal(models.EventCaseRejected, rows[len(rows)-1].EventType)
	})

	s.Run("unknown case is not found", func() {
		_, err := s.service.Approve(s.ctx(), domain.NewCaseID())
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("invalid transition leaves the case untouched", func() {
		s.SetupTest()
		id := create()
		_, err := s.service.Approve(s.ctx(), id)
		s.Require().NoError(err)

		_, err = s.service.StartReview(s.ctx(), id)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))

		c, err := s.service.Get(s.ctx(), id)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusApproved, c.Status)
	})
}
