package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
)

// ChecklistClient creates the onboarding checklist for a new case in the
// checklist service. Fire-and-observe; no compensation on failure.
type ChecklistClient struct {
	http *resty.Client
}

// NewChecklistClient builds a checklist client. Returns nil when baseURL is
// empty; callers treat a nil client as "step disabled".
func NewChecklistClient(baseURL string, timeout time.Duration) *ChecklistClient {
	if baseURL == "" {
		return nil
	}
	return &ChecklistClient{http: newCollaboratorClient(baseURL, timeout)}
}

type checklistRequest struct {
	CaseID    string `json:"caseId"`
	CaseType  string `json:"caseType"`
	PartnerID string `json:"partnerId"`
}

func (c *ChecklistClient) CreateChecklist(ctx context.Context, task Task) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(checklistRequest{
			CaseID:    task.CaseID.String(),
			CaseType:  task.CaseType.String(),
			PartnerID: task.PartnerID.String(),
		}).
		Post("/checklists")
	if err != nil {
		return fmt.Errorf("create checklist for case %s: %w", task.CaseID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("create checklist for case %s: status %d: %w", task.CaseID, resp.StatusCode(), sentinel.ErrUnavailable)
	}
	return nil
}

// NotificationClient dispatches best-effort "case created" notifications.
type NotificationClient struct {
	http *resty.Client
}

// NewNotificationClient builds a notification client. Returns nil when
// baseURL is empty.
func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	if baseURL == "" {
		return nil
	}
	return &NotificationClient{http: newCollaboratorClient(baseURL, timeout)}
}

type notificationRequest struct {
	Event      string `json:"event"`
	CaseID     string `json:"caseId"`
	CaseNumber string `json:"caseNumber"`
	PartnerID  string `json:"partnerId"`
}

func (c *NotificationClient) NotifyCaseCreated(ctx context.Context, task Task) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(notificationRequest{
			Event:      "case_created",
			CaseID:     task.CaseID.String(),
			CaseNumber: task.CaseNumber,
			PartnerID:  task.PartnerID.String(),
		}).
		Post("/notifications")
	if err != nil {
		return fmt.Errorf("notify case created %s: %w", task.CaseID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify case created %s: status %d: %w", task.CaseID, resp.StatusCode(), sentinel.ErrUnavailable)
	}
	return nil
}

func newCollaboratorClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}
