package validation

import (
	"testing"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentYear = 2026

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func validInput() Input {
	return Input{
		TaxType:     model.TaxTypePersonalIncome,
		TaxYear:     2024,
		GrossIncome: dec("100000"),
		Deductions:  dec("20000"),
	}
}

func TestValidate_ValidSubmission(t *testing.T) {
	res := Validate(validInput(), currentYear)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_SingleRuleViolations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{
			name:    "negative deductions",
			mutate:  func(in *Input) { in.Deductions = dec("-1") },
			wantErr: "Deductions must be non-negative.",
		},
		{
			name:    "deductions exceed gross income",
			mutate:  func(in *Input) { in.Deductions = dec("100001") },
			wantErr: "Deductions cannot exceed GrossIncome.",
		},
		{
			name:    "tax year before 2000",
			mutate:  func(in *Input) { in.TaxYear = 1999 },
			wantErr: "TaxYear must be between 2000 and 2026.",
		},
		{
			name:    "tax year in the future",
			mutate:  func(in *Input) { in.TaxYear = currentYear + 1 },
			wantErr: "TaxYear must be between 2000 and 2026.",
		},
		{
			name:    "unknown tax type",
			mutate:  func(in *Input) { in.TaxType = "PAYROLL" },
			wantErr: "Invalid TaxType specified.",
		},
		{
			name: "vat rate above 100",
			mutate: func(in *Input) {
				in.TaxType = model.TaxTypeVAT
				in.VatRate = decPtr("100.01")
			},
			wantErr: "VatRate must be between 0 and 100.",
		},
		{
			name: "negative vat rate",
			mutate: func(in *Input) {
				in.TaxType = model.TaxTypeVAT
				in.VatRate = decPtr("-5")
			},
			wantErr: "VatRate must be between 0 and 100.",
		},
		{
			name: "corporate deductions above 90 percent of gross",
			mutate: func(in *Input) {
				in.TaxType = model.TaxTypeCorporate
				in.Deductions = dec("90001")
			},
			wantErr: "Corporate deductions cannot exceed 90% of gross income.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			res := Validate(in, currentYear)

			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.wantErr, res.Errors[0])
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"tax year 2000", func(in *Input) { in.TaxYear = 2000 }},
		{"tax year equal to current year", func(in *Input) { in.TaxYear = currentYear }},
		{"zero gross income and deductions", func(in *Input) {
			in.GrossIncome = decimal.Zero
			in.Deductions = decimal.Zero
		}},
		{"deductions equal to gross income", func(in *Input) { in.Deductions = in.GrossIncome }},
		{"vat rate exactly 100", func(in *Input) {
			in.TaxType = model.TaxTypeVAT
			in.VatRate = decPtr("100")
		}},
		{"vat rate exactly 0", func(in *Input) {
			in.TaxType = model.TaxTypeVAT
			in.VatRate = decPtr("0")
		}},
		{"vat without a rate", func(in *Input) { in.TaxType = model.TaxTypeVAT }},
		{"corporate deductions at exactly 90 percent", func(in *Input) {
			in.TaxType = model.TaxTypeCorporate
			in.Deductions = dec("90000")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			res := Validate(in, currentYear)

			assert.True(t, res.Valid, "errors: %v", res.Errors)
		})
	}
}

// Every violated rule must be reported, in rule order, not just the first.
func TestValidate_ReportsAllViolationsInOrder(t *testing.T) {
	in := Input{
		TaxType:     "WEALTH",
		TaxYear:     1980,
		GrossIncome: dec("-100"),
		Deductions:  dec("-50"),
	}

	res := Validate(in, currentYear)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"GrossIncome must be non-negative.",
		"Deductions must be non-negative.",
		"TaxYear must be between 2000 and 2026.",
		"Invalid TaxType specified.",
	}, res.Errors)
}

func TestValidate_NegativeGrossWithLargerDeductions(t *testing.T) {
	in := validInput()
	in.GrossIncome = dec("-100")
	in.Deductions = dec("50")

	res := Validate(in, currentYear)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"GrossIncome must be non-negative.",
		"Deductions cannot exceed GrossIncome.",
	}, res.Errors)
}

// VAT rate bounds only apply to VAT submissions.
func TestValidate_VatRateIgnoredForOtherTaxTypes(t *testing.T) {
	in := validInput()
	in.VatRate = decPtr("500")

	res := Validate(in, currentYear)

	assert.True(t, res.Valid)
}
