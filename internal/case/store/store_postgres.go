package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
	txcontext "github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/tx"
)

// PostgresStore persists case aggregates in PostgreSQL. Writes participate
// in a caller-provided transaction when one is present in the context, so
// the case row and its outbox events commit atomically.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed case store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	applicant, business, metadata, err := marshalPayloads(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cases (
			id, case_number, case_type, status, partner_id, partner_reference_id,
			applicant, business, metadata, created_by, updated_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.CaseNumber,
		c.Type.String(),
		c.Status.String(),
		uuid.UUID(c.PartnerID),
		c.PartnerReferenceID,
		applicant,
		business,
		metadata,
		c.CreatedBy,
		c.UpdatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	query := `
		SELECT id, case_number, case_type, status, partner_id, partner_reference_id,
		       applicant, business, metadata, created_by, updated_by, created_at, updated_at
		FROM cases
		WHERE id = $1
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))

	var (
		c            models.Case
		caseID       uuid.UUID
		partnerID    uuid.UUID
		caseType     string
		status       string
		applicantRaw []byte
		businessRaw  []byte
		metadataRaw  []byte
	)
	err := row.Scan(
		&caseID, &c.CaseNumber, &caseType, &status, &partnerID, &c.PartnerReferenceID,
		&applicantRaw, &businessRaw, &metadataRaw, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	c.ID = domain.CaseID(caseID)
	c.PartnerID = domain.PartnerID(partnerID)
	c.Type = domain.CaseType(caseType)
	c.Status = domain.CaseStatus(status)

	if err := json.Unmarshal(applicantRaw, &c.Applicant); err != nil {
		return nil, fmt.Errorf("decode applicant: %w", err)
	}
	if len(businessRaw) > 0 {
		var b models.Business
		if err := json.Unmarshal(businessRaw, &b); err != nil {
			return nil, fmt.Errorf("decode business: %w", err)
		}
		c.Business = &b
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &c, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Case) error {
	applicant, business, metadata, err := marshalPayloads(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE cases
		SET status = $2, applicant = $3, business = $4, metadata = $5,
		    updated_by = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.Status.String(),
		applicant,
		business,
		metadata,
		c.UpdatedBy,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %s: %w", c.ID, sentinel.ErrNotFound)
	}
	return nil
}

func marshalPayloads(c *models.Case) (applicant, business, metadata []byte, err error) {
	applicant, err = json.Marshal(c.Applicant)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode applicant: %w", err)
	}
	if c.Business != nil {
		business, err = json.Marshal(c.Business)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("encode business: %w", err)
		}
	}
	metadata, err = json.Marshal(c.Metadata)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode metadata: %w", err)
	}
	return applicant, business, metadata, nil
}
