package models

// DiscountPolicy computes a monetary discount from an order's
// subtotal. Policies are stateless per call and attached to exactly
// one order at a time; the order replaces a policy wholesale rather
// than mutating it.
type DiscountPolicy interface {
	ComputeDiscount(order *Order) float64
}

// NoDiscount applies no discount
type NoDiscount struct{}

func (NoDiscount) ComputeDiscount(order *Order) float64 {
	return 0.0
}

// PercentageCoupon applies a percentage discount over the order
// subtotal, e.g. a 10% coupon has Rate 0.10. The rate is not
// validated; out-of-range rates produce the discount they imply.
type PercentageCoupon struct {
	Rate float64
}

func (p PercentageCoupon) ComputeDiscount(order *Order) float64 {
	return order.Subtotal() * p.Rate
}

// MinimumSpend applies a fixed discount only when the subtotal
// reaches the threshold, e.g. 10.00 off orders of 100.00 or more.
type MinimumSpend struct {
	Threshold float64
	Amount    float64
}

func (m MinimumSpend) ComputeDiscount(order *Order) float64 {
	if order.Subtotal() >= m.Threshold {
		return m.Amount
	}
	return 0.0
}

// Discount request descriptor types, matched by PolicyFromSpec.
const (
	DiscountTypeNone         = "none"
	DiscountTypePercentage   = "percentage"
	DiscountTypeMinimumSpend = "minimum-spend"
)

// DiscountSpec is the wire descriptor for a discount selection. Fields
// irrelevant to the selected type are ignored; missing fields default
// to zero.
type DiscountSpec struct {
	Type      string  `json:"type"`
	Rate      float64 `json:"rate,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
}

// PolicyFromSpec builds a DiscountPolicy from a request descriptor.
// A nil spec or an unrecognized type yields NoDiscount; parameters are
// taken as-is without range validation.
func PolicyFromSpec(spec *DiscountSpec) DiscountPolicy {
	if spec == nil {
		return NoDiscount{}
	}
	switch spec.Type {
	case DiscountTypePercentage:
		return PercentageCoupon{Rate: spec.Rate}
	case DiscountTypeMinimumSpend:
		return MinimumSpend{Threshold: spec.Threshold, Amount: spec.Amount}
	default:
		return NoDiscount{}
	}
}

// SpecFromPolicy is the inverse of PolicyFromSpec, used to persist a
// policy as its wire descriptor.
func SpecFromPolicy(policy DiscountPolicy) DiscountSpec {
	switch p := policy.(type) {
	case PercentageCoupon:
		return DiscountSpec{Type: DiscountTypePercentage, Rate: p.Rate}
	case MinimumSpend:
		return DiscountSpec{Type: DiscountTypeMinimumSpend, Threshold: p.Threshold, Amount: p.Amount}
	default:
		return DiscountSpec{Type: DiscountTypeNone}
	}
}
