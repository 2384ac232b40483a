package model

import (
	"time"
)

// AuditEventType enum constants
const (
	EventSubmission        = "SUBMISSION"
	EventStatusChange      = "STATUS_CHANGE"
	EventValidationFailure = "VALIDATION_FAILURE"
	EventSystemError       = "SYSTEM_ERROR"
	EventCalculation       = "CALCULATION"
)

// Audit action labels
const (
	ActionClientCreated            = "ClientCreated"
	ActionSubmissionCreated        = "TaxSubmissionCreated"
	ActionSubmissionDeleted        = "TaxSubmissionDeleted"
	ActionLiabilityCalculated      = "TaxLiabilityCalculated"
	ActionStatusTransitioned       = "StatusTransitioned"
	ActionInvalidStatusTransition  = "InvalidStatusTransition"
	ActionSubmissionValidationFail = "SubmissionValidationFailed"
	ActionUnhandledError           = "UnhandledException"
)

// AuditLog is an append-only record of Who did What and When. Entries are
// never updated or deleted; when a submission is removed its entries survive
// with the reference nulled.
type AuditLog struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EventType       string         `gorm:"type:varchar(30);not null;index" json:"event_type"`
	Action          string         `gorm:"type:varchar(100);not null" json:"action"`
	PerformedBy     string         `gorm:"type:varchar(100)" json:"performed_by"`
	TaxSubmissionID *uint          `gorm:"index" json:"tax_submission_id"`
	TaxSubmission   *TaxSubmission `gorm:"foreignKey:TaxSubmissionID;constraint:OnDelete:SET NULL" json:"-"`
	Details         string         `gorm:"type:text" json:"details"` // serialized JSON payload
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}
