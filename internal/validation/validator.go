// Package validation checks submission intake requests before any
// calculation or persistence happens. Every rule is evaluated so a caller
// sees all violations at once, in a fixed order.
package validation

import (
	"fmt"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"github.com/shopspring/decimal"
)

// MinTaxYear is the earliest tax year the system accepts.
const MinTaxYear = 2000

// Corporate deductions may not exceed 90% of gross income.
var maxCorporateDeductionRatio = decimal.NewFromFloat(0.90)

var hundred = decimal.NewFromInt(100)

// Input carries the financial fields of a create-submission request.
type Input struct {
	TaxType      string
	TaxYear      int
	GrossIncome  decimal.Decimal
	Deductions   decimal.Decimal
	VatableSales *decimal.Decimal
	VatRate      *decimal.Decimal
}

// Result reports whether the input passed and, if not, every violated rule.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate applies all intake rules to the input. currentYear bounds the tax
// year and is injected by the caller so validation stays deterministic.
func Validate(in Input, currentYear int) Result {
	var errs []string

	if in.GrossIncome.IsNegative() {
		errs = append(errs, "GrossIncome must be non-negative.")
	}

	if in.Deductions.IsNegative() {
		errs = append(errs, "Deductions must be non-negative.")
	}

	if in.Deductions.GreaterThan(in.GrossIncome) {
		errs = append(errs, "Deductions cannot exceed GrossIncome.")
	}

	if in.TaxYear < MinTaxYear || in.TaxYear > currentYear {
		errs = append(errs, fmt.Sprintf("TaxYear must be between %d and %d.", MinTaxYear, currentYear))
	}

	switch in.TaxType {
	case model.TaxTypePersonalIncome, model.TaxTypeCorporate, model.TaxTypeVAT:
	default:
		errs = append(errs, "Invalid TaxType specified.")
	}

	if in.TaxType == model.TaxTypeVAT && in.VatRate != nil {
		if in.VatRate.IsNegative() || in.VatRate.GreaterThan(hundred) {
			errs = append(errs, "VatRate must be between 0 and 100.")
		}
	}

	if in.TaxType == model.TaxTypeCorporate && in.GrossIncome.IsPositive() {
		ratio := in.Deductions.Div(in.GrossIncome)
		if ratio.GreaterThan(maxCorporateDeductionRatio) {
			errs = append(errs, "Corporate deductions cannot exceed 90% of gross income.")
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
