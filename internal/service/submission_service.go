package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marcnyamweya/TaxApi/internal/model"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/internal/taxcalc"
	"github.com/marcnyamweya/TaxApi/internal/validation"
	"github.com/marcnyamweya/TaxApi/internal/workflow"
	"github.com/marcnyamweya/TaxApi/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTaxSubmissionRequest struct {
	ClientID     uint             `json:"client_id" binding:"required"`
	TaxType      string           `json:"tax_type" binding:"required"`
	TaxYear      int              `json:"tax_year" binding:"required"`
	GrossIncome  decimal.Decimal  `json:"gross_income"`
	Deductions   decimal.Decimal  `json:"deductions"`
	VatableSales *decimal.Decimal `json:"vatable_sales"`
	VatRate      *decimal.Decimal `json:"vat_rate"`
}

type UpdateSubmissionStatusRequest struct {
	NewStatus     string `json:"new_status" binding:"required"`
	PerformedBy   string `json:"performed_by"`
	ReviewerNotes string `json:"reviewer_notes"`
}

type TaxSubmissionResponse struct {
	ID            uint    `json:"id"`
	ClientID      uint    `json:"client_id"`
	ClientName    string  `json:"client_name"`
	TaxType       string  `json:"tax_type"`
	TaxYear       int     `json:"tax_year"`
	GrossIncome   string  `json:"gross_income"`
	Deductions    string  `json:"deductions"`
	TaxableIncome string  `json:"taxable_income"`
	TaxLiability  string  `json:"tax_liability"`
	EffectiveRate string  `json:"effective_rate"`
	VatableSales  *string `json:"vatable_sales"`
	VatRate       *string `json:"vat_rate"`
	Status        string  `json:"status"`
	SubmittedAt   string  `json:"submitted_at"`
	ReviewedAt    *string `json:"reviewed_at"`
	ResolvedAt    *string `json:"resolved_at"`
	ReviewerNotes string  `json:"reviewer_notes"`
}

// --- Interface ---

type SubmissionService interface {
	CreateSubmission(ctx context.Context, req CreateTaxSubmissionRequest) (TaxSubmissionResponse, error)
	GetSubmission(ctx context.Context, id uint) (TaxSubmissionResponse, error)
	ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]TaxSubmissionResponse, int64, error)
	UpdateStatus(ctx context.Context, id uint, req UpdateSubmissionStatusRequest) (TaxSubmissionResponse, error)
	DeleteSubmission(ctx context.Context, id uint, performedBy string) error
}

type submissionService struct {
	subRepo    repository.SubmissionRepository
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	engine     *taxcalc.Engine
	machine    *workflow.Machine
	notifier   AuditNotifier
	now        func() time.Time
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	engine *taxcalc.Engine,
	machine *workflow.Machine,
	notifier AuditNotifier,
) SubmissionService {
	return &submissionService{
		subRepo:    subRepo,
		clientRepo: clientRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		engine:     engine,
		machine:    machine,
		notifier:   notifier,
		now:        time.Now,
	}
}

// --- Implementation ---

// CreateSubmission runs the intake pipeline: validate, calculate, persist,
// audit. A validation failure is itself durably audited before the caller
// hears about it.
func (s *submissionService) CreateSubmission(ctx context.Context, req CreateTaxSubmissionRequest) (TaxSubmissionResponse, error) {
	result := validation.Validate(validation.Input{
		TaxType:      req.TaxType,
		TaxYear:      req.TaxYear,
		GrossIncome:  req.GrossIncome,
		Deductions:   req.Deductions,
		VatableSales: req.VatableSales,
		VatRate:      req.VatRate,
	}, s.now().UTC().Year())

	if !result.Valid {
		details, _ := json.Marshal(result.Errors)
		entry := model.AuditLog{
			EventType:   model.EventValidationFailure,
			Action:      model.ActionSubmissionValidationFail,
			PerformedBy: strconv.FormatUint(uint64(req.ClientID), 10),
			Details:     string(details),
		}
		if err := s.auditRepo.Log(ctx, &entry); err != nil {
			return TaxSubmissionResponse{}, fmt.Errorf("failed to write audit log: %w", err)
		}
		s.notify(entry)
		return TaxSubmissionResponse{}, &apperr.ValidationError{Errors: result.Errors}
	}

	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaxSubmissionResponse{}, &apperr.NotFoundError{Resource: "client", ID: req.ClientID}
		}
		return TaxSubmissionResponse{}, fmt.Errorf("failed to fetch client: %w", err)
	}

	sub := model.TaxSubmission{
		ClientID:     client.ID,
		TaxType:      req.TaxType,
		TaxYear:      req.TaxYear,
		GrossIncome:  req.GrossIncome,
		Deductions:   req.Deductions,
		VatableSales: req.VatableSales,
		VatRate:      req.VatRate,
		Status:       model.StatusSubmitted,
		SubmittedAt:  s.now().UTC(),
	}

	liability, effectiveRate, err := s.engine.Calculate(&sub)
	if err != nil {
		return TaxSubmissionResponse{}, err
	}
	sub.TaxLiability = liability
	sub.EffectiveRate = effectiveRate

	var entries []model.AuditLog
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.subRepo.Create(txCtx, &sub); createErr != nil {
			return fmt.Errorf("failed to create submission: %w", createErr)
		}

		submissionEntry := model.AuditLog{
			EventType:       model.EventSubmission,
			Action:          model.ActionSubmissionCreated,
			PerformedBy:     strconv.FormatUint(uint64(client.ID), 10),
			TaxSubmissionID: &sub.ID,
			Details: fmt.Sprintf("Type=%s, Year=%d, Liability=%s",
				sub.TaxType, sub.TaxYear, liability.StringFixed(2)),
		}
		if auditErr := s.auditRepo.Log(txCtx, &submissionEntry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		calculationEntry := model.AuditLog{
			EventType:       model.EventCalculation,
			Action:          model.ActionLiabilityCalculated,
			PerformedBy:     "System",
			TaxSubmissionID: &sub.ID,
			Details: fmt.Sprintf("GrossIncome=%s, Deductions=%s, TaxableIncome=%s, Liability=%s, Rate=%s",
				sub.GrossIncome.StringFixed(2), sub.Deductions.StringFixed(2),
				sub.TaxableIncome().StringFixed(2), liability.StringFixed(2), effectiveRate.StringFixed(4)),
		}
		if auditErr := s.auditRepo.Log(txCtx, &calculationEntry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		entries = append(entries, submissionEntry, calculationEntry)
		return nil
	})
	if err != nil {
		return TaxSubmissionResponse{}, err
	}

	for _, entry := range entries {
		s.notify(entry)
	}

	sub.Client = client
	return toSubmissionResponse(sub), nil
}

func (s *submissionService) GetSubmission(ctx context.Context, id uint) (TaxSubmissionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaxSubmissionResponse{}, &apperr.NotFoundError{Resource: "submission", ID: id}
		}
		return TaxSubmissionResponse{}, fmt.Errorf("failed to fetch submission: %w", err)
	}
	return toSubmissionResponse(*sub), nil
}

func (s *submissionService) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]TaxSubmissionResponse, int64, error) {
	subs, total, err := s.subRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	res := make([]TaxSubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		res = append(res, toSubmissionResponse(sub))
	}
	return res, total, nil
}

// UpdateStatus moves a submission through the workflow. Illegal transitions
// leave the row untouched and are still audited; a losing concurrent writer
// gets a conflict and must retry against the committed state.
func (s *submissionService) UpdateStatus(ctx context.Context, id uint, req UpdateSubmissionStatusRequest) (TaxSubmissionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaxSubmissionResponse{}, &apperr.NotFoundError{Resource: "submission", ID: id}
		}
		return TaxSubmissionResponse{}, fmt.Errorf("failed to fetch submission: %w", err)
	}

	if !s.machine.CanTransition(sub.Status, req.NewStatus) {
		allowed := s.machine.AllowedNext(sub.Status)
		entry := model.AuditLog{
			EventType:       model.EventValidationFailure,
			Action:          model.ActionInvalidStatusTransition,
			PerformedBy:     req.PerformedBy,
			TaxSubmissionID: &sub.ID,
			Details: fmt.Sprintf("Attempted %s -> %s. Allowed: [%s]",
				sub.Status, req.NewStatus, strings.Join(allowed, ", ")),
		}
		if auditErr := s.auditRepo.Log(ctx, &entry); auditErr != nil {
			return TaxSubmissionResponse{}, fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		s.notify(entry)
		return TaxSubmissionResponse{}, &apperr.IllegalTransitionError{
			Current:   sub.Status,
			Requested: req.NewStatus,
			Allowed:   allowed,
		}
	}

	now := s.now().UTC()
	mut := repository.StatusMutation{Status: req.NewStatus}
	switch req.NewStatus {
	case model.StatusApproved, model.StatusRejected:
		mut.ReviewedAt = &now
		mut.ReviewerNotes = req.ReviewerNotes
	case model.StatusFiled:
		mut.ResolvedAt = &now
	}

	oldStatus := sub.Status
	var entry model.AuditLog
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		applied, txErr := s.subRepo.TransitionStatus(txCtx, id, oldStatus, mut)
		if txErr != nil {
			return fmt.Errorf("failed to update submission status: %w", txErr)
		}
		if !applied {
			return &apperr.ConflictError{Message: "submission status changed concurrently, retry with fresh state"}
		}

		notes := req.ReviewerNotes
		if notes == "" {
			notes = "none"
		}
		entry = model.AuditLog{
			EventType:       model.EventStatusChange,
			Action:          model.ActionStatusTransitioned,
			PerformedBy:     req.PerformedBy,
			TaxSubmissionID: &sub.ID,
			Details:         fmt.Sprintf("%s -> %s. Notes: %s", oldStatus, req.NewStatus, notes),
		}
		if auditErr := s.auditRepo.Log(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TaxSubmissionResponse{}, err
	}

	s.notify(entry)

	updated, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return TaxSubmissionResponse{}, fmt.Errorf("failed to reload submission: %w", err)
	}
	return toSubmissionResponse(*updated), nil
}

// DeleteSubmission removes a submission. Its audit trail survives with the
// submission reference nulled.
func (s *submissionService) DeleteSubmission(ctx context.Context, id uint, performedBy string) error {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Resource: "submission", ID: id}
		}
		return fmt.Errorf("failed to fetch submission: %w", err)
	}

	var entry model.AuditLog
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry = model.AuditLog{
			EventType:   model.EventSubmission,
			Action:      model.ActionSubmissionDeleted,
			PerformedBy: performedBy,
			Details: fmt.Sprintf("SubmissionId=%d, Type=%s, Year=%d, Status=%s",
				sub.ID, sub.TaxType, sub.TaxYear, sub.Status),
		}
		if auditErr := s.auditRepo.Log(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		if delErr := s.subRepo.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("failed to delete submission: %w", delErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(entry)
	return nil
}

func (s *submissionService) notify(entry model.AuditLog) {
	if s.notifier != nil {
		s.notifier.NotifyAudit(entry)
	}
}

// --- Helpers ---

func toSubmissionResponse(sub model.TaxSubmission) TaxSubmissionResponse {
	resp := TaxSubmissionResponse{
		ID:            sub.ID,
		ClientID:      sub.ClientID,
		TaxType:       sub.TaxType,
		TaxYear:       sub.TaxYear,
		GrossIncome:   sub.GrossIncome.StringFixed(2),
		Deductions:    sub.Deductions.StringFixed(2),
		TaxableIncome: sub.TaxableIncome().StringFixed(2),
		TaxLiability:  sub.TaxLiability.StringFixed(2),
		EffectiveRate: sub.EffectiveRate.StringFixed(4),
		Status:        sub.Status,
		SubmittedAt:   sub.SubmittedAt.Format(time.RFC3339),
		ReviewerNotes: sub.ReviewerNotes,
	}

	if sub.Client != nil {
		resp.ClientName = sub.Client.FullName
	}
	if sub.VatableSales != nil {
		v := sub.VatableSales.StringFixed(2)
		resp.VatableSales = &v
	}
	if sub.VatRate != nil {
		v := sub.VatRate.StringFixed(2)
		resp.VatRate = &v
	}
	if sub.ReviewedAt != nil {
		v := sub.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	if sub.ResolvedAt != nil {
		v := sub.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}
