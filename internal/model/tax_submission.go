package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxType enum constants
const (
	TaxTypePersonalIncome = "PERSONAL_INCOME"
	TaxTypeCorporate      = "CORPORATE"
	TaxTypeVAT            = "VAT"
)

// SubmissionStatus enum constants
const (
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusFiled       = "FILED"
)

// TaxSubmission is a client's filing for one tax year. Financial fields and
// the calculated liability are fixed at creation; only the workflow fields
// (status, reviewed_at, resolved_at, reviewer_notes) change afterwards.
type TaxSubmission struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`

	TaxType string `gorm:"type:varchar(20);not null" json:"tax_type"` // PERSONAL_INCOME, CORPORATE, VAT
	TaxYear int    `gorm:"not null" json:"tax_year"`

	GrossIncome decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"gross_income"`
	Deductions  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"deductions"`

	// VAT-specific, nullable for other tax types
	VatableSales *decimal.Decimal `gorm:"type:decimal(18,2)" json:"vatable_sales"`
	VatRate      *decimal.Decimal `gorm:"type:decimal(5,2)" json:"vat_rate"` // percentage, 0-100

	// Populated once by the calculation engine before the first save
	TaxLiability  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_liability"`
	EffectiveRate decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"effective_rate"`

	Status        string     `gorm:"type:varchar(20);not null;default:'SUBMITTED';index" json:"status"`
	SubmittedAt   time.Time  `gorm:"not null" json:"submitted_at"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	ReviewerNotes string     `gorm:"type:text" json:"reviewer_notes"`

	AuditLogs []AuditLog `gorm:"foreignKey:TaxSubmissionID" json:"-"`
}

// TaxableIncome is always gross income minus deductions. It is derived on
// read and never stored as its own column.
func (s *TaxSubmission) TaxableIncome() decimal.Decimal {
	return s.GrossIncome.Sub(s.Deductions)
}
