package billing

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// TaxTreatment classifies a supply for GST purposes based on the
// registration states of the two parties.
type TaxTreatment string

const (
	// TaxTreatmentIntraState applies when buyer and seller are registered in
	// the same state: the nominal rate splits into equal CGST and SGST halves.
	TaxTreatmentIntraState TaxTreatment = "INTRA_STATE"
	// TaxTreatmentInterState applies when the registration states differ:
	// the full nominal rate is levied as IGST.
	TaxTreatmentInterState TaxTreatment = "INTER_STATE"
	// TaxTreatmentUnregistered applies when the buyer has no usable GSTIN.
	// Taxed like an inter-state supply: full IGST at the nominal rate.
	TaxTreatmentUnregistered TaxTreatment = "UNREGISTERED"
)

// IsValid checks if the treatment is a known TaxTreatment
func (t TaxTreatment) IsValid() bool {
	switch t {
	case TaxTreatmentIntraState, TaxTreatmentInterState, TaxTreatmentUnregistered:
		return true
	}
	return false
}

// String returns the string representation of TaxTreatment
func (t TaxTreatment) String() string {
	return string(t)
}

// stateCodePattern matches the two-digit state code prefix GSTINs carry
var stateCodePattern = regexp.MustCompile(`^[0-9]{2}$`)

// IsValidStateCode reports whether code is a well-formed two-digit GST state code
func IsValidStateCode(code string) bool {
	return stateCodePattern.MatchString(code)
}

// DetermineTaxTreatment decides the supply classification from the client's
// and seller's registration state codes. A missing or malformed client state
// code yields the explicit unregistered branch rather than a silent default.
func DetermineTaxTreatment(clientStateCode, sellerStateCode string) TaxTreatment {
	if !IsValidStateCode(clientStateCode) {
		return TaxTreatmentUnregistered
	}
	if clientStateCode == sellerStateCode {
		return TaxTreatmentIntraState
	}
	return TaxTreatmentInterState
}

// TaxBreakdown holds the GST components of an amount. Rates are percentages
// in [0,100]; amounts are kept at full precision until display rounding at
// the aggregation boundary.
type TaxBreakdown struct {
	CGSTRate   decimal.Decimal `json:"cgst_rate"`
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTRate   decimal.Decimal `json:"sgst_rate"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`
	IGSTRate   decimal.Decimal `json:"igst_rate"`
	IGSTAmount decimal.Decimal `json:"igst_amount"`
}

// ZeroTaxBreakdown returns a breakdown with all components zero
func ZeroTaxBreakdown() TaxBreakdown {
	return TaxBreakdown{
		CGSTRate:   decimal.Zero,
		CGSTAmount: decimal.Zero,
		SGSTRate:   decimal.Zero,
		SGSTAmount: decimal.Zero,
		IGSTRate:   decimal.Zero,
		IGSTAmount: decimal.Zero,
	}
}

// TotalAmount returns the sum of all tax component amounts
func (b TaxBreakdown) TotalAmount() decimal.Decimal {
	return b.CGSTAmount.Add(b.SGSTAmount).Add(b.IGSTAmount)
}

// Add returns a component-wise sum of two breakdowns
func (b TaxBreakdown) Add(other TaxBreakdown) TaxBreakdown {
	return TaxBreakdown{
		CGSTRate:   b.CGSTRate.Add(other.CGSTRate),
		CGSTAmount: b.CGSTAmount.Add(other.CGSTAmount),
		SGSTRate:   b.SGSTRate.Add(other.SGSTRate),
		SGSTAmount: b.SGSTAmount.Add(other.SGSTAmount),
		IGSTRate:   b.IGSTRate.Add(other.IGSTRate),
		IGSTAmount: b.IGSTAmount.Add(other.IGSTAmount),
	}
}

// Round returns the breakdown with amounts rounded half-up to the given
// number of decimal places. Rates are left untouched.
func (b TaxBreakdown) Round(places int32) TaxBreakdown {
	b.CGSTAmount = b.CGSTAmount.Round(places)
	b.SGSTAmount = b.SGSTAmount.Round(places)
	b.IGSTAmount = b.IGSTAmount.Round(places)
	return b
}

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// ResolveGST computes the GST breakdown for a taxable base under the given
// treatment and nominal rate. Intra-state supplies split the nominal rate
// into equal CGST and SGST halves; inter-state and unregistered supplies
// levy the full rate as IGST. No rounding is performed here.
func ResolveGST(treatment TaxTreatment, taxableBase, nominalRate decimal.Decimal) TaxBreakdown {
	breakdown := ZeroTaxBreakdown()
	if treatment == TaxTreatmentIntraState {
		half := nominalRate.Div(two)
		halfAmount := taxableBase.Mul(half).Div(hundred)
		breakdown.CGSTRate = half
		breakdown.SGSTRate = half
		breakdown.CGSTAmount = halfAmount
		breakdown.SGSTAmount = halfAmount
		return breakdown
	}
	breakdown.IGSTRate = nominalRate
	breakdown.IGSTAmount = taxableBase.Mul(nominalRate).Div(hundred)
	return breakdown
}
