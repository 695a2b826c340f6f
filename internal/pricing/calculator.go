package pricing

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultGSTPercent is the flat Indian GST rate applied to every item.
var DefaultGSTPercent = decimal.NewFromInt(18)

var hundred = decimal.NewFromInt(100)

// Calculator holds the single GST rate used for every price conversion in the process.
type Calculator struct {
	gstPercent decimal.Decimal
	multiplier decimal.Decimal // 1 + rate
}

func NewCalculator(gstPercent decimal.Decimal) *Calculator {
	if gstPercent.IsNegative() {
		gstPercent = decimal.Zero
	}
	return &Calculator{
		gstPercent: gstPercent,
		multiplier: decimal.NewFromInt(1).Add(gstPercent.Div(hundred)),
	}
}

// ExGST strips GST from an inclusive price.
func (c *Calculator) ExGST(price decimal.Decimal) decimal.Decimal {
	return price.Div(c.multiplier)
}

// WithGST adds GST to an exclusive price.
func (c *Calculator) WithGST(base decimal.Decimal) decimal.Decimal {
	return base.Mul(c.multiplier)
}

// BasePrice returns the explicit exclusive price when one is set, otherwise derives it.
func (c *Calculator) BasePrice(price decimal.Decimal, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil && explicit.IsPositive() {
		return *explicit
	}
	return c.ExGST(price)
}

// UnitPrices resolves the GST-inclusive and GST-exclusive unit price of a line.
func (c *Calculator) UnitPrices(item models.LineItem) (incl, excl decimal.Decimal) {
	switch item.Kind {
	case models.KindProduct:
		if v := item.Variant; v != nil && v.Price != nil && v.Price.IsPositive() {
			return *v.Price, c.BasePrice(*v.Price, v.PriceExGST)
		}
		return nonNegative(item.Price), c.BasePrice(nonNegative(item.Price), item.PriceExGST)
	case models.KindKit, models.KindCombo:
		if item.Price.IsPositive() || len(item.IncludedProducts) == 0 {
			return nonNegative(item.Price), c.BasePrice(nonNegative(item.Price), item.PriceExGST)
		}
		// multi-variant bundles without a bundle price are priced from their parts
		for _, p := range item.IncludedProducts {
			if p.Variant.Price == nil || !p.Variant.Price.IsPositive() {
				continue
			}
			qty := decimal.NewFromInt(int64(max(p.Quantity, 1)))
			incl = incl.Add(p.Variant.Price.Mul(qty))
			excl = excl.Add(c.BasePrice(*p.Variant.Price, p.Variant.PriceExGST).Mul(qty))
		}
		return incl, excl
	}
	return decimal.Zero, decimal.Zero
}

// Priced returns a copy of item whose Price and PriceExGST carry the unit prices
// UnitPrices charges, so snapshots and ledgers agree with the summary.
func (c *Calculator) Priced(item models.LineItem) models.LineItem {
	incl, excl := c.UnitPrices(item)
	item.Price = incl
	item.PriceExGST = nil
	if excl.IsPositive() {
		item.PriceExGST = &excl
	}
	return item
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
