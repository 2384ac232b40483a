package service

import (
	"context"
	"testing"
	"time"

	"github.com/marcnyamweya/TaxApi/internal/model"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/internal/taxcalc"
	"github.com/marcnyamweya/TaxApi/internal/workflow"
	"github.com/marcnyamweya/TaxApi/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	clients    ClientService
	subs       SubmissionService
	audits     AuditService
	clientRepo repository.ClientRepository
}

// capturingNotifier records every pushed audit entry so tests can assert
// that commits reach live observers.
type capturingNotifier struct {
	entries []model.AuditLog
}

func (n *capturingNotifier) NotifyAudit(entry model.AuditLog) {
	n.entries = append(n.entries, entry)
}

var testClock = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) (*testEnv, *capturingNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Client{}, &model.TaxSubmission{}, &model.AuditLog{}))

	clientRepo := repository.NewClientRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)
	notifier := &capturingNotifier{}

	subs := NewSubmissionService(
		subRepo, clientRepo, auditRepo, txManager,
		taxcalc.NewEngine(taxcalc.USFederal2024()),
		workflow.NewMachine(),
		notifier,
	)
	subs.(*submissionService).now = func() time.Time { return testClock }

	return &testEnv{
		db:         db,
		clients:    NewClientService(clientRepo, auditRepo, txManager, notifier),
		subs:       subs,
		audits:     NewAuditService(auditRepo, subRepo, notifier),
		clientRepo: clientRepo,
	}, notifier
}

func seedClient(t *testing.T, env *testEnv) model.Client {
	client := model.Client{
		FullName:                "Acme Holdings Ltd",
		Email:                   "finance@acme.example",
		TaxIdentificationNumber: "TIN-9001",
		ClientType:              model.ClientTypeCorporate,
	}
	require.NoError(t, env.db.Create(&client).Error)
	return client
}

func corporateRequest(clientID uint) CreateTaxSubmissionRequest {
	return CreateTaxSubmissionRequest{
		ClientID:    clientID,
		TaxType:     model.TaxTypeCorporate,
		TaxYear:     2024,
		GrossIncome: decimal.NewFromInt(50000),
		Deductions:  decimal.Zero,
	}
}

func TestCreateSubmission_CalculatesPersistsAndAudits(t *testing.T) {
	env, notifier := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	resp, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, client.ID, resp.ClientID)
	assert.Equal(t, "Acme Holdings Ltd", resp.ClientName)
	assert.Equal(t, "10500.00", resp.TaxLiability)
	assert.Equal(t, "0.2100", resp.EffectiveRate)
	assert.Equal(t, model.StatusSubmitted, resp.Status)
	assert.Equal(t, testClock.Format(time.RFC3339), resp.SubmittedAt)

	var logs []model.AuditLog
	require.NoError(t, env.db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)

	assert.Equal(t, model.EventSubmission, logs[0].EventType)
	assert.Equal(t, model.ActionSubmissionCreated, logs[0].Action)
	require.NotNil(t, logs[0].TaxSubmissionID)
	assert.Equal(t, resp.ID, *logs[0].TaxSubmissionID)
	assert.Contains(t, logs[0].Details, "Liability=10500.00")

	assert.Equal(t, model.EventCalculation, logs[1].EventType)
	assert.Equal(t, model.ActionLiabilityCalculated, logs[1].Action)
	assert.Equal(t, "System", logs[1].PerformedBy)
	assert.Contains(t, logs[1].Details, "TaxableIncome=50000.00")
	assert.Contains(t, logs[1].Details, "Rate=0.2100")

	assert.Len(t, notifier.entries, 2)
}

func TestCreateSubmission_ValidationFailureIsAuditedAndRejected(t *testing.T) {
	env, notifier := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	req := corporateRequest(client.ID)
	req.TaxYear = 1995
	req.Deductions = decimal.NewFromInt(60000)

	_, err := env.subs.CreateSubmission(ctx, req)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"Deductions cannot exceed GrossIncome.",
		"TaxYear must be between 2000 and 2026.",
		"Corporate deductions cannot exceed 90% of gross income.",
	}, verr.Errors)

	// No submission row, but the failure itself is on the record
	var count int64
	require.NoError(t, env.db.Model(&model.TaxSubmission{}).Count(&count).Error)
	assert.Zero(t, count)

	var logs []model.AuditLog
	require.NoError(t, env.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.EventValidationFailure, logs[0].EventType)
	assert.Equal(t, model.ActionSubmissionValidationFail, logs[0].Action)
	assert.Nil(t, logs[0].TaxSubmissionID)
	assert.Contains(t, logs[0].Details, "TaxYear must be between 2000 and 2026.")

	assert.Len(t, notifier.entries, 1)
}

func TestCreateSubmission_UnknownClient(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := env.subs.CreateSubmission(ctx, corporateRequest(42))

	var nfe *apperr.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "client", nfe.Resource)
	assert.EqualValues(t, 42, nfe.ID)
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	env, _ := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	created, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	resp, err := env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{
		NewStatus:   model.StatusUnderReview,
		PerformedBy: "reviewer-7",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, resp.Status)
	assert.Nil(t, resp.ReviewedAt)

	resp, err = env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{
		NewStatus:     model.StatusApproved,
		PerformedBy:   "reviewer-7",
		ReviewerNotes: "all figures reconciled",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Status)
	require.NotNil(t, resp.ReviewedAt)
	assert.Equal(t, "all figures reconciled", resp.ReviewerNotes)
	assert.Nil(t, resp.ResolvedAt)

	resp, err = env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{
		NewStatus:   model.StatusFiled,
		PerformedBy: "reviewer-7",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFiled, resp.Status)
	require.NotNil(t, resp.ResolvedAt)

	var logs []model.AuditLog
	require.NoError(t, env.db.Where("event_type = ?", model.EventStatusChange).Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0].Details, "SUBMITTED -> UNDER_REVIEW. Notes: none")
	assert.Contains(t, logs[1].Details, "UNDER_REVIEW -> APPROVED. Notes: all figures reconciled")
	assert.Contains(t, logs[2].Details, "APPROVED -> FILED. Notes: none")
	assert.Equal(t, "reviewer-7", logs[0].PerformedBy)
}

func TestUpdateStatus_IllegalTransitionAuditedWithoutMutation(t *testing.T) {
	env, _ := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	created, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	_, err = env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{
		NewStatus:   model.StatusApproved,
		PerformedBy: "reviewer-7",
	})

	var ite *apperr.IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, model.StatusSubmitted, ite.Current)
	assert.Equal(t, model.StatusApproved, ite.Requested)
	assert.Equal(t, []string{model.StatusUnderReview}, ite.Allowed)

	// Status untouched, attempt on the record
	reloaded, err := env.subs.GetSubmission(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, reloaded.Status)

	var logs []model.AuditLog
	require.NoError(t, env.db.Where("action = ?", model.ActionInvalidStatusTransition).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "Attempted SUBMITTED -> APPROVED. Allowed: [UNDER_REVIEW]")
}

func TestUpdateStatus_TerminalStateRejectsFurtherMoves(t *testing.T) {
	env, _ := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	created, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	for _, status := range []string{model.StatusUnderReview, model.StatusRejected} {
		_, err = env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{NewStatus: status})
		require.NoError(t, err)
	}

	_, err = env.subs.UpdateStatus(ctx, created.ID, UpdateSubmissionStatusRequest{NewStatus: model.StatusUnderReview})

	var ite *apperr.IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Empty(t, ite.Allowed)
}

func TestUpdateStatus_UnknownSubmission(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := env.subs.UpdateStatus(ctx, 99, UpdateSubmissionStatusRequest{NewStatus: model.StatusUnderReview})

	var nfe *apperr.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "submission", nfe.Resource)
}

func TestDeleteSubmission_PreservesAuditTrail(t *testing.T) {
	env, _ := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	created, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	require.NoError(t, env.subs.DeleteSubmission(ctx, created.ID, "admin"))

	_, err = env.subs.GetSubmission(ctx, created.ID)
	var nfe *apperr.NotFoundError
	require.ErrorAs(t, err, &nfe)

	// Creation entries survive with the reference nulled, plus a deletion entry
	var logs []model.AuditLog
	require.NoError(t, env.db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Nil(t, l.TaxSubmissionID)
	}
	assert.Equal(t, model.ActionSubmissionDeleted, logs[2].Action)
	assert.Equal(t, "admin", logs[2].PerformedBy)
	assert.Contains(t, logs[2].Details, "Status=SUBMITTED")
}

func TestCreateClient_DuplicateIdentityFields(t *testing.T) {
	env, notifier := newTestEnv(t)
	ctx := context.Background()

	req := CreateClientRequest{
		FullName:                "Jane Wanjiku",
		Email:                   "jane@example.com",
		TaxIdentificationNumber: "TIN-100",
		ClientType:              model.ClientTypeIndividual,
	}
	created, err := env.clients.CreateClient(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Len(t, notifier.entries, 1)
	assert.Equal(t, model.ActionClientCreated, notifier.entries[0].Action)

	dup := req
	dup.Email = "other@example.com"
	_, err = env.clients.CreateClient(ctx, dup)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "Tax Identification Number")

	dup = req
	dup.TaxIdentificationNumber = "TIN-101"
	_, err = env.clients.CreateClient(ctx, dup)
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "email")
}

func TestAuditService_ListForSubmission(t *testing.T) {
	env, _ := newTestEnv(t)
	client := seedClient(t, env)
	ctx := context.Background()

	created, err := env.subs.CreateSubmission(ctx, corporateRequest(client.ID))
	require.NoError(t, err)

	logs, total, err := env.audits.ListForSubmission(ctx, created.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, logs, 2)

	_, _, err = env.audits.ListForSubmission(ctx, created.ID+99, 1, 20)
	var nfe *apperr.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "submission", nfe.Resource)
}
