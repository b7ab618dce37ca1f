package schema

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/requestcontext"
)

// ConfigProvider fetches entity configurations from the external
// configuration service. Implementations: the resty client in
// internal/schema/client, optionally wrapped by the Redis cache in
// internal/schema/cache.
type ConfigProvider interface {
	FetchByFormConfig(ctx context.Context, formConfigID, formVersion string) (*EntityConfiguration, error)
	FetchByEntityType(ctx context.Context, entityTypeCode string) (*EntityConfiguration, error)
}

// Resolver determines which requirement schema, if any, applies to a
// request. Resolution order: form-config-id (most specific, versioned),
// then entity-type code, then none (legacy mode).
type Resolver struct {
	provider ConfigProvider
	logger   *slog.Logger
}

// NewResolver builds a resolver. provider may be nil when no configuration
// collaborator is deployed; schema-driven requests then resolve to a nil
// configuration but keep their schema-driven flag.
func NewResolver(provider ConfigProvider, logger *slog.Logger) *Resolver {
	return &Resolver{provider: provider, logger: logger}
}

// Resolve looks up the configuration for the supplied identifiers.
//
// A supplied identifier whose lookup fails (not found or transport error)
// still flags the request as schema-driven: validation is skipped but the
// lifecycle bypass applies. Only the complete absence of identifiers puts
// the request on the strict legacy path. This asymmetry is deliberate and
// load-bearing.
func (r *Resolver) Resolve(ctx context.Context, formConfigID, formVersion, entityTypeCode string) (Mode, *EntityConfiguration) {
	mode := Mode{
		FormConfigID:   formConfigID,
		FormVersion:    formVersion,
		EntityTypeCode: entityTypeCode,
	}

	switch {
	case formConfigID != "":
		mode.SchemaDriven = true
		return mode, r.fetch(ctx, mode, func(p ConfigProvider) (*EntityConfiguration, error) {
			return p.FetchByFormConfig(ctx, formConfigID, formVersion)
		})
	case entityTypeCode != "":
		mode.SchemaDriven = true
		return mode, r.fetch(ctx, mode, func(p ConfigProvider) (*EntityConfiguration, error) {
			return p.FetchByEntityType(ctx, entityTypeCode)
		})
	default:
		return mode, nil
	}
}

func (r *Resolver) fetch(ctx context.Context, mode Mode, lookup func(ConfigProvider) (*EntityConfiguration, error)) *EntityConfiguration {
	if r.provider == nil {
		r.logger.DebugContext(ctx, "entity configuration provider not configured, skipping validation",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	cfg, err := lookup(r.provider)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, sentinel.ErrNotFound) {
			level = slog.LevelInfo
		}
		r.logger.Log(ctx, level, "entity configuration lookup failed, validation skipped",
			"form_config_id", mode.FormConfigID,
			"form_version", mode.FormVersion,
			"entity_type_code", mode.EntityTypeCode,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	return cfg
}
