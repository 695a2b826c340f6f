package pricing

import (
	"encoding/json"
	"testing"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got.Round(2)), "%s: want %s, got %s", field, want, got.Round(2))
}

func productLine(price string, qty int) models.LineItem {
	id := uint(1)
	return models.LineItem{
		Kind:      models.KindProduct,
		ProductID: &id,
		Name:      "Cold pressed oil",
		Price:     dec(price),
		Quantity:  qty,
	}
}

func TestSummarize_NoCoupon(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	s := calc.Summarize([]models.LineItem{productLine("1180", 2)}, nil)

	assert.Equal(t, CouponNone, s.Coupon)
	assertAmount(t, "2360", s.Subtotal, "subtotal")
	assertAmount(t, "2000", s.SubtotalExGST, "subtotalExGST")
	assertAmount(t, "0", s.Discount, "discount")
	assertAmount(t, "2000", s.DiscountedExGST, "discountedExGST")
	assertAmount(t, "360", s.TotalGST, "totalGST")
	assertAmount(t, "2360", s.FinalTotal, "finalTotal")
	assertAmount(t, "0", s.YouSaved, "youSaved")
}

func TestSummarize_PercentCoupon(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	s := calc.Summarize([]models.LineItem{productLine("1180", 2)}, PercentCoupon("SAVE10", 10))

	assert.Equal(t, CouponApplied, s.Coupon)
	assert.Equal(t, "SAVE10", s.CouponCode)
	assertAmount(t, "200", s.DiscountExGST, "discountExGST")
	assertAmount(t, "236", s.Discount, "discount")
	assertAmount(t, "1800", s.DiscountedExGST, "discountedExGST")
	assertAmount(t, "324", s.TotalGST, "totalGST")
	assertAmount(t, "2124", s.FinalTotal, "finalTotal")
	assertAmount(t, "236", s.YouSaved, "youSaved")
	assert.False(t, s.DiscountClamped)
}

func TestSummarize_PercentCouponProperty(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	items := []models.LineItem{productLine("999", 3), productLine("249.50", 1)}

	for _, p := range []float64{0, 5, 12.5, 33, 50, 100} {
		s := calc.Summarize(items, PercentCoupon("P", p))
		factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p).Div(hundred))

		assert.Truef(t, s.SubtotalExGST.Mul(factor).Round(6).Equal(s.DiscountedExGST.Round(6)),
			"percent %v: discounted %s", p, s.DiscountedExGST)
		assert.Truef(t, s.DiscountedExGST.Mul(dec("1.18")).Round(6).Equal(s.FinalTotal.Round(6)),
			"percent %v: final %s", p, s.FinalTotal)
	}
}

func TestSummarize_FlatCoupon(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	s := calc.Summarize([]models.LineItem{productLine("1180", 2)}, FlatCoupon("FLAT118", 118))

	assert.Equal(t, CouponApplied, s.Coupon)
	assertAmount(t, "100", s.DiscountExGST, "discountExGST")
	assertAmount(t, "118", s.Discount, "discount")
	assertAmount(t, "1900", s.DiscountedExGST, "discountedExGST")
	assertAmount(t, "2242", s.FinalTotal, "finalTotal")
	assertAmount(t, "118", s.YouSaved, "youSaved")
}

func TestSummarize_FlatCouponLargerThanSubtotalIsClamped(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	s := calc.Summarize([]models.LineItem{productLine("1180", 2)}, FlatCoupon("HUGE", 5000))

	assert.True(t, s.DiscountClamped)
	assertAmount(t, "2000", s.DiscountExGST, "discountExGST")
	assertAmount(t, "0", s.DiscountedExGST, "discountedExGST")
	assertAmount(t, "0", s.FinalTotal, "finalTotal")
	assertAmount(t, "2360", s.YouSaved, "youSaved")
	assert.False(t, s.DiscountedExGST.IsNegative())
}

func TestSummarize_MalformedCouponsAreIgnored(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	items := []models.LineItem{productLine("1180", 1)}

	cases := map[string]*Coupon{
		"empty":            {Code: "EMPTY"},
		"negative percent": {Code: "NEG", Percent: decPtr("-5")},
		"percent over 100": {Code: "OVER", Percent: decPtr("150")},
		"negative flat":    {Code: "NEGFLAT", Discount: decPtr("-100")},
	}
	for name, coupon := range cases {
		t.Run(name, func(t *testing.T) {
			s := calc.Summarize(items, coupon)
			assert.Equal(t, CouponIgnored, s.Coupon)
			assertAmount(t, "0", s.Discount, "discount")
			assertAmount(t, "1180", s.FinalTotal, "finalTotal")
			assertAmount(t, "0", s.YouSaved, "youSaved")
		})
	}
}

func TestSummarize_VariantPriceWinsOverItemPrice(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	item := productLine("500", 1)
	item.Variant = &models.VariantSelection{VariantID: 7, Label: "1 L", Price: decPtr("1180")}

	s := calc.Summarize([]models.LineItem{item}, nil)

	assertAmount(t, "1180", s.Subtotal, "subtotal")
	assertAmount(t, "1000", s.SubtotalExGST, "subtotalExGST")
}

func TestSummarize_ExplicitExGSTIsUsed(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	id := uint(3)
	kit := models.LineItem{Kind: models.KindKit, KitID: &id, Price: dec("999"), PriceExGST: decPtr("850"), Quantity: 2}

	s := calc.Summarize([]models.LineItem{kit}, nil)

	assertAmount(t, "1998", s.Subtotal, "subtotal")
	assertAmount(t, "1700", s.SubtotalExGST, "subtotalExGST")
}

func TestSummarize_ComboWithoutBundlePriceUsesParts(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	id := uint(4)
	combo := models.LineItem{
		Kind:     models.KindCombo,
		ComboID:  &id,
		Quantity: 1,
		IncludedProducts: []models.IncludedProduct{
			{ProductID: 1, Quantity: 2, Variant: models.VariantSelection{Label: "S", Price: decPtr("118")}},
			{ProductID: 2, Quantity: 1, Variant: models.VariantSelection{Label: "M", Price: decPtr("236")}},
			{ProductID: 3, Quantity: 1, Variant: models.VariantSelection{Label: models.DefaultVariantLabel}},
		},
	}

	s := calc.Summarize([]models.LineItem{combo}, nil)

	assertAmount(t, "472", s.Subtotal, "subtotal")
	assertAmount(t, "400", s.SubtotalExGST, "subtotalExGST")
}

func TestSummarize_MissingPricesDefaultToZero(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	item := models.LineItem{Kind: models.KindProduct, Quantity: 3}
	unknown := models.LineItem{Kind: "gift-card", Price: dec("100"), Quantity: 1}

	s := calc.Summarize([]models.LineItem{item, unknown}, PercentCoupon("P", 10))

	assertAmount(t, "0", s.Subtotal, "subtotal")
	assertAmount(t, "0", s.FinalTotal, "finalTotal")
}

func TestSummarize_IsIdempotent(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	items := []models.LineItem{productLine("999", 3), productLine("1180", 1)}
	coupon := FlatCoupon("FLAT", 250)

	first, err := json.Marshal(calc.Summarize(items, coupon))
	require.NoError(t, err)
	second, err := json.Marshal(calc.Summarize(items, coupon))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestBasePrice_KitWithoutExplicitValue(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	assertAmount(t, "846.61", calc.BasePrice(dec("999"), nil), "basePrice")
	assertAmount(t, "800", calc.BasePrice(dec("999"), decPtr("800")), "explicit basePrice")
}

func TestCalculator_CustomRate(t *testing.T) {
	calc := NewCalculator(decimal.NewFromInt(5))

	s := calc.Summarize([]models.LineItem{productLine("105", 1)}, PercentCoupon("P", 50))

	assertAmount(t, "100", s.SubtotalExGST, "subtotalExGST")
	assertAmount(t, "50", s.DiscountedExGST, "discountedExGST")
	assertAmount(t, "2.5", s.TotalGST, "totalGST")
	assertAmount(t, "52.5", s.FinalTotal, "finalTotal")
}

func TestSummary_Rounded(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	s := calc.Summarize([]models.LineItem{productLine("999", 1)}, nil).Rounded()

	assert.Equal(t, "846.61", s.SubtotalExGST.StringFixed(2))
	assert.Equal(t, "999.00", s.FinalTotal.StringFixed(2))
	assert.True(t, s.YouSaved.IsZero())
}

func TestPriced_UsesChargedUnitPrice(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	half := dec("649")
	item := productLine("1180", 2)
	item.Variant = &models.VariantSelection{VariantID: 2, Label: "500 ml", Price: &half}

	priced := calc.Priced(item)
	assertAmount(t, "649", priced.Price, "price")
	require.NotNil(t, priced.PriceExGST)
	assertAmount(t, "550", priced.PriceExGST.Round(2), "priceExGST")
	assertAmount(t, "1298", priced.TotalPrice(), "totalPrice")
	assertAmount(t, "1180", item.Price, "original untouched")

	oil, soap := dec("649"), dec("236")
	combo := models.LineItem{
		Kind:     models.KindCombo,
		Name:     "Combo",
		Quantity: 1,
		IncludedProducts: []models.IncludedProduct{
			{ProductID: 1, Quantity: 1, Variant: models.VariantSelection{Price: &oil}},
			{ProductID: 2, Quantity: 1, Variant: models.VariantSelection{Price: &soap}},
		},
	}
	pricedCombo := calc.Priced(combo)
	assertAmount(t, "885", pricedCombo.Price, "combo price")
	assertAmount(t, "750", pricedCombo.PriceExGST.Round(2), "combo priceExGST")

	// pricing twice is stable
	again := calc.Priced(pricedCombo)
	assertAmount(t, "885", again.Price, "combo price again")

	summary := calc.Summarize([]models.LineItem{priced, pricedCombo}, nil)
	assertAmount(t, "2183", summary.Subtotal, "subtotal")
}
