package service

import (
	"context"
	"time"

	"github.com/marcnyamweya/TaxApi/internal/model"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/pkg/apperr"
)

// AuditNotifier pushes committed audit entries to live observers. A nil
// notifier disables the feed.
type AuditNotifier interface {
	NotifyAudit(entry model.AuditLog)
}

type AuditLogResponse struct {
	ID              uint   `json:"id"`
	EventType       string `json:"event_type"`
	Action          string `json:"action"`
	PerformedBy     string `json:"performed_by"`
	TaxSubmissionID *uint  `json:"tax_submission_id"`
	Details         string `json:"details"`
	CreatedAt       string `json:"created_at"`
}

// AuditQuery filters the audit listing; zero values mean no filtering.
type AuditQuery struct {
	EventType    string
	SubmissionID uint
	Page         int
	Limit        int
}

type AuditService interface {
	// Record durably appends one entry. Callers must not report their
	// triggering operation complete until Record has returned nil.
	Record(ctx context.Context, eventType, action, performedBy string, submissionID *uint, details string) error
	List(ctx context.Context, q AuditQuery) ([]AuditLogResponse, int64, error)
	ListForSubmission(ctx context.Context, submissionID uint, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	subRepo   repository.SubmissionRepository
	notifier  AuditNotifier
}

func NewAuditService(auditRepo repository.AuditRepository, subRepo repository.SubmissionRepository, notifier AuditNotifier) AuditService {
	return &auditService{auditRepo: auditRepo, subRepo: subRepo, notifier: notifier}
}

func (s *auditService) Record(ctx context.Context, eventType, action, performedBy string, submissionID *uint, details string) error {
	entry := model.AuditLog{
		EventType:       eventType,
		Action:          action,
		PerformedBy:     performedBy,
		TaxSubmissionID: submissionID,
		Details:         details,
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyAudit(entry)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, q AuditQuery) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, repository.AuditFilter{
		EventType:    q.EventType,
		SubmissionID: q.SubmissionID,
		Page:         q.Page,
		Limit:        q.Limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return toAuditResponses(logs), total, nil
}

func (s *auditService) ListForSubmission(ctx context.Context, submissionID uint, page, limit int) ([]AuditLogResponse, int64, error) {
	exists, err := s.subRepo.Exists(ctx, submissionID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, &apperr.NotFoundError{Resource: "submission", ID: submissionID}
	}

	logs, total, err := s.auditRepo.List(ctx, repository.AuditFilter{
		SubmissionID: submissionID,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return toAuditResponses(logs), total, nil
}

func toAuditResponses(logs []model.AuditLog) []AuditLogResponse {
	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:              l.ID,
			EventType:       l.EventType,
			Action:          l.Action,
			PerformedBy:     l.PerformedBy,
			TaxSubmissionID: l.TaxSubmissionID,
			Details:         l.Details,
			CreatedAt:       l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res
}
