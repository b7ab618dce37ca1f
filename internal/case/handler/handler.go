// Package handler is the HTTP surface of case intake and review. It owns
// decoding, header extraction, and error rendering; all decisions live in
// the service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/models"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/case/service"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/middleware"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

const requestTimeout = 30 * time.Second

type Handler struct {
	service   *service.Service
	validator middleware.JWTValidator
	logger    *slog.Logger
}

func New(svc *service.Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{service: svc, validator: validator, logger: logger}
}

// Register mounts the case routes. All of them require a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/", h.createCase)
		r.Get("/{caseID}", h.getCase)
		r.Post("/{caseID}/review", h.startReview)
		r.Post("/{caseID}/approve", h.approveCase)
		r.Post("/{caseID}/reject", h.rejectCase)
	})
}

func (h *Handler) createCase(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.service.CreateCase(r.Context(), req.toInput(r))
	if err != nil {
		var verr *service.SchemaValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, r, verr)
			return
		}
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCaseResponse{
		CaseID:     c.ID.String(),
		CaseNumber: c.CaseNumber,
		Status:     c.Status.String(),
	})
}

func (h *Handler) getCase(w http.ResponseWriter, r *http.Request) {
	id, err := caseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) startReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartReview)
}

func (h *Handler) approveCase(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) rejectCase(w http.ResponseWriter, r *http.Request) {
	id, err := caseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req rejectCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	c, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id domain.CaseID) (*models.Case, error)) {
	id, err := caseIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

func caseIDParam(r *http.Request) (domain.CaseID, error) {
	id, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		return domain.CaseID{}, dErrors.New(dErrors.CodeBadRequest, "invalid case id")
	}
	return id, nil
}
