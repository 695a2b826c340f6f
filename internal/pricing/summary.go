package pricing

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Coupon is the pricing view of a discount. Percent wins when both are set;
// Discount is GST inclusive.
type Coupon struct {
	Code     string           `json:"code,omitempty"`
	Percent  *decimal.Decimal `json:"percent,omitempty"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
}

func PercentCoupon(code string, percent float64) *Coupon {
	p := decimal.NewFromFloat(percent)
	return &Coupon{Code: code, Percent: &p}
}

func FlatCoupon(code string, amount float64) *Coupon {
	d := decimal.NewFromFloat(amount)
	return &Coupon{Code: code, Discount: &d}
}

type CouponOutcome string

const (
	CouponNone    CouponOutcome = "none"
	CouponApplied CouponOutcome = "applied"
	CouponIgnored CouponOutcome = "ignored" // malformed shape, zero discount
)

type Summary struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalExGST   decimal.Decimal `json:"subtotal_ex_gst"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountExGST   decimal.Decimal `json:"discount_ex_gst"`
	DiscountedExGST decimal.Decimal `json:"discounted_ex_gst"`
	TotalGST        decimal.Decimal `json:"total_gst"`
	FinalTotal      decimal.Decimal `json:"final_total"`
	YouSaved        decimal.Decimal `json:"you_saved"`
	GSTPercent      decimal.Decimal `json:"gst_percent"`
	Coupon          CouponOutcome   `json:"coupon"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	DiscountClamped bool            `json:"discount_clamped,omitempty"`
}

// Summarize prices the items and applies the coupon before GST: the discount is taken
// off the exclusive subtotal and GST is added back on what remains.
func (c *Calculator) Summarize(items []models.LineItem, coupon *Coupon) Summary {
	s := Summary{GSTPercent: c.gstPercent, Coupon: CouponNone}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		incl, excl := c.UnitPrices(item)
		s.Subtotal = s.Subtotal.Add(incl.Mul(qty))
		s.SubtotalExGST = s.SubtotalExGST.Add(excl.Mul(qty))
	}

	if coupon != nil {
		s.CouponCode = coupon.Code
		discountExGST, ok := c.couponDiscount(s.SubtotalExGST, coupon)
		if ok {
			s.Coupon = CouponApplied
			if discountExGST.GreaterThan(s.SubtotalExGST) {
				discountExGST = s.SubtotalExGST
				s.DiscountClamped = true
			}
			s.DiscountExGST = discountExGST
		} else {
			s.Coupon = CouponIgnored
		}
	}

	s.Discount = c.WithGST(s.DiscountExGST)
	s.DiscountedExGST = s.SubtotalExGST.Sub(s.DiscountExGST)
	s.TotalGST = s.DiscountedExGST.Mul(c.gstPercent).Div(hundred)
	s.FinalTotal = c.WithGST(s.DiscountedExGST)
	s.YouSaved = s.Subtotal.Sub(s.FinalTotal)
	return s
}

func (c *Calculator) couponDiscount(subtotalExGST decimal.Decimal, coupon *Coupon) (decimal.Decimal, bool) {
	switch {
	case coupon.Percent != nil:
		p := *coupon.Percent
		if p.IsNegative() || p.GreaterThan(hundred) {
			return decimal.Zero, false
		}
		return subtotalExGST.Mul(p).Div(hundred), true
	case coupon.Discount != nil:
		d := *coupon.Discount
		if d.IsNegative() {
			return decimal.Zero, false
		}
		return c.ExGST(d), true
	}
	return decimal.Zero, false
}

// Rounded returns the summary with every amount rounded to paise.
func (s Summary) Rounded() Summary {
	r := s
	for _, f := range []*decimal.Decimal{
		&r.Subtotal, &r.SubtotalExGST, &r.Discount, &r.DiscountExGST,
		&r.DiscountedExGST, &r.TotalGST, &r.FinalTotal, &r.YouSaved,
	} {
		*f = f.Round(2)
	}
	return r
}
