package taxcalc

import (
	"github.com/shopspring/decimal"
)

// Bracket is one progressive-rate band. UpTo is the band's inclusive upper
// bound on taxable income; nil means the band is open-ended.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal
}

// RuleSet is the injectable per-jurisdiction rate configuration the engine
// runs on. PersonalBrackets must be ordered ascending and end with an
// open-ended bracket; PersonalRelief is a flat amount subtracted from
// personal income tax (zero where the jurisdiction has none).
type RuleSet struct {
	Name             string
	PersonalBrackets []Bracket
	PersonalRelief   decimal.Decimal
	CorporateRate    decimal.Decimal
	DefaultVatRate   decimal.Decimal
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func rate(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// USFederal2024 returns the 2024 US federal rule set: IRS single-filer
// brackets, flat 21% corporate rate (TCJA 2017) and a 20% standard VAT
// default for VAT-type filings.
func USFederal2024() RuleSet {
	return RuleSet{
		Name: "US-2024",
		PersonalBrackets: []Bracket{
			{UpTo: bound(11_600), Rate: rate("0.10")},
			{UpTo: bound(47_150), Rate: rate("0.12")},
			{UpTo: bound(100_525), Rate: rate("0.22")},
			{UpTo: bound(191_950), Rate: rate("0.24")},
			{UpTo: bound(243_725), Rate: rate("0.32")},
			{UpTo: bound(609_350), Rate: rate("0.35")},
			{UpTo: nil, Rate: rate("0.37")},
		},
		PersonalRelief: decimal.Zero,
		CorporateRate:  rate("0.21"),
		DefaultVatRate: rate("0.20"),
	}
}

// Kenya2024 returns the 2024 KRA rule set: annual PAYE bands with the
// 28,800 KES personal relief, 30% corporate rate and 16% standard VAT.
func Kenya2024() RuleSet {
	return RuleSet{
		Name: "KE-2024",
		PersonalBrackets: []Bracket{
			{UpTo: bound(288_000), Rate: rate("0.10")},
			{UpTo: bound(388_000), Rate: rate("0.25")},
			{UpTo: bound(6_000_000), Rate: rate("0.30")},
			{UpTo: bound(9_600_000), Rate: rate("0.325")},
			{UpTo: nil, Rate: rate("0.35")},
		},
		PersonalRelief: decimal.NewFromInt(28_800),
		CorporateRate:  rate("0.30"),
		DefaultVatRate: rate("0.16"),
	}
}

// RuleSetFor maps a jurisdiction code to its rule set. Unknown codes fall
// back to the US federal rules.
func RuleSetFor(jurisdiction string) RuleSet {
	switch jurisdiction {
	case "KE":
		return Kenya2024()
	default:
		return USFederal2024()
	}
}
