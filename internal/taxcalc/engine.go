// Package taxcalc computes tax liability and effective rate for validated
// submissions. The engine is pure: it reads only the submission's own fields
// and the rule set it was built with.
package taxcalc

import (
	"fmt"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine calculates liability for one jurisdiction's rule set.
type Engine struct {
	rules RuleSet
}

func NewEngine(rules RuleSet) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rule set the engine was configured with.
func (e *Engine) Rules() RuleSet {
	return e.rules
}

// Calculate dispatches on the submission's tax type and returns the rounded
// liability (2 dp) and effective rate (4 dp). It assumes the submission has
// already passed validation; an unknown tax type is a programming error and
// comes back as an error, not a user-facing condition.
func (e *Engine) Calculate(sub *model.TaxSubmission) (liability, effectiveRate decimal.Decimal, err error) {
	switch sub.TaxType {
	case model.TaxTypePersonalIncome:
		liability, effectiveRate = e.calculatePersonalIncome(sub)
	case model.TaxTypeCorporate:
		liability, effectiveRate = e.calculateCorporate(sub)
	case model.TaxTypeVAT:
		liability, effectiveRate = e.calculateVat(sub)
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("unsupported tax type %q", sub.TaxType)
	}
	return liability, effectiveRate, nil
}

// calculatePersonalIncome walks the progressive brackets in ascending order,
// taxing each slice at its marginal rate, then subtracts the jurisdiction's
// flat relief (floored at zero). Rounding happens once, at the end.
func (e *Engine) calculatePersonalIncome(sub *model.TaxSubmission) (decimal.Decimal, decimal.Decimal) {
	income := sub.TaxableIncome()
	if !income.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	tax := decimal.Zero
	previous := decimal.Zero
	for _, b := range e.rules.PersonalBrackets {
		if income.LessThanOrEqual(previous) {
			break
		}

		bracketTop := income
		if b.UpTo != nil && b.UpTo.LessThan(income) {
			bracketTop = *b.UpTo
		}
		slice := bracketTop.Sub(previous)
		tax = tax.Add(slice.Mul(b.Rate))

		if b.UpTo == nil {
			break
		}
		previous = *b.UpTo
	}

	tax = tax.Sub(e.rules.PersonalRelief)
	if tax.IsNegative() {
		tax = decimal.Zero
	}

	return tax.Round(2), tax.Div(income).Round(4)
}

// calculateCorporate applies the flat corporate rate to taxable income.
func (e *Engine) calculateCorporate(sub *model.TaxSubmission) (decimal.Decimal, decimal.Decimal) {
	income := sub.TaxableIncome()
	if !income.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	return income.Mul(e.rules.CorporateRate).Round(2), e.rules.CorporateRate
}

// calculateVat taxes vatable sales, falling back to gross income when no
// sales figure was supplied. The submission's own rate (a percentage) wins
// over the jurisdiction default.
func (e *Engine) calculateVat(sub *model.TaxSubmission) (decimal.Decimal, decimal.Decimal) {
	base := sub.GrossIncome
	if sub.VatableSales != nil {
		base = *sub.VatableSales
	}

	vatRate := e.rules.DefaultVatRate
	if sub.VatRate != nil {
		vatRate = sub.VatRate.Div(hundred)
	}

	tax := base.Mul(vatRate)
	if !base.IsPositive() {
		return tax.Round(2), decimal.Zero
	}
	return tax.Round(2), tax.Div(base).Round(4)
}
