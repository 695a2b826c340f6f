package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errNoReference = errors.New("no reference")

type ProductLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

type BundleLookup interface {
	GetKit(ctx context.Context, id uint) (*models.Kit, error)
	GetCombo(ctx context.Context, id uint) (*models.Combo, error)
}

// SkippedRow is a cart row that could not be turned into a line item.
type SkippedRow struct {
	CartItemID uint   `json:"cart_item_id"`
	Reason     string `json:"reason"`
}

type TransformResult struct {
	Items   []models.LineItem `json:"items"`
	Skipped []SkippedRow      `json:"skipped,omitempty"`
}

// CartTransformer denormalizes cart rows into priced line items. It only reads.
type CartTransformer struct {
	products   ProductLookup
	bundles    BundleLookup
	calculator *pricing.Calculator
	log        *zap.Logger
}

func NewCartTransformer(products ProductLookup, bundles BundleLookup, calculator *pricing.Calculator, log *zap.Logger) *CartTransformer {
	return &CartTransformer{products: products, bundles: bundles, calculator: calculator, log: log}
}

// Transform never fails as a whole: rows whose records cannot be fetched are logged
// and reported in Skipped.
func (t *CartTransformer) Transform(ctx context.Context, rows []models.CartItem) TransformResult {
	result := TransformResult{Items: make([]models.LineItem, 0, len(rows))}

	for _, row := range rows {
		var (
			item *models.LineItem
			err  error
		)
		switch row.Kind() {
		case models.KindProduct:
			item, err = t.productItem(ctx, row)
		case models.KindKit:
			item, err = t.kitItem(ctx, row)
		case models.KindCombo:
			item, err = t.comboItem(ctx, row)
		default:
			err = errNoReference
		}

		if err != nil {
			t.log.Warn("skipping cart row",
				zap.Uint("cart_item_id", row.ID),
				zap.Uint("user_id", row.UserID),
				zap.Error(err))
			result.Skipped = append(result.Skipped, SkippedRow{CartItemID: row.ID, Reason: err.Error()})
			continue
		}
		result.Items = append(result.Items, t.calculator.Priced(*item))
	}

	return result
}

func (t *CartTransformer) productItem(ctx context.Context, row models.CartItem) (*models.LineItem, error) {
	product, err := t.products.GetByID(ctx, *row.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", *row.ProductID, err)
	}

	item := &models.LineItem{
		Kind:       models.KindProduct,
		CartItemID: row.ID,
		ProductID:  &product.ID,
		Name:       product.Name,
		Image:      product.Image,
		Price:      product.Price,
		PriceExGST: product.PriceExGST,
		Quantity:   row.Quantity,
	}

	blob := models.ParseVariantBlob(row.Variant)
	if blob.State == models.VariantUnparseable {
		t.log.Debug("unparseable variant selection",
			zap.Uint("cart_item_id", row.ID),
			zap.Error(blob.Err))
	}

	sel, ok := blob.First()
	if !ok {
		item.Variant = &models.VariantSelection{ProductID: product.ID, Label: models.DefaultVariantLabel}
		item.VariantFallback = true
		return item, nil
	}

	selection, fallback := resolveSelection(product, sel)
	item.Variant = &selection
	item.VariantFallback = fallback
	return item, nil
}

func (t *CartTransformer) kitItem(ctx context.Context, row models.CartItem) (*models.LineItem, error) {
	kit, err := t.bundles.GetKit(ctx, *row.KitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load kit %d: %w", *row.KitID, err)
	}

	parts := make([]bundlePart, 0, len(kit.Products))
	for _, p := range kit.Products {
		parts = append(parts, bundlePart{productID: p.ProductID, variantID: p.VariantID, quantity: p.Quantity, product: p.Product})
	}

	item := &models.LineItem{
		Kind:       models.KindKit,
		CartItemID: row.ID,
		KitID:      &kit.ID,
		Name:       kit.Name,
		Image:      kit.Image,
		Price:      kit.Price,
		PriceExGST: t.bundleBase(kit.Price, kit.PriceExGST),
		Quantity:   row.Quantity,
	}
	item.IncludedProducts = includedProducts(parts, models.ParseVariantBlob(row.Variant))
	return item, nil
}

func (t *CartTransformer) comboItem(ctx context.Context, row models.CartItem) (*models.LineItem, error) {
	combo, err := t.bundles.GetCombo(ctx, *row.ComboID)
	if err != nil {
		return nil, fmt.Errorf("failed to load combo %d: %w", *row.ComboID, err)
	}

	parts := make([]bundlePart, 0, len(combo.Products))
	for _, p := range combo.Products {
		parts = append(parts, bundlePart{productID: p.ProductID, variantID: p.VariantID, quantity: p.Quantity, product: p.Product})
	}

	item := &models.LineItem{
		Kind:       models.KindCombo,
		CartItemID: row.ID,
		ComboID:    &combo.ID,
		Name:       combo.Name,
		Image:      combo.Image,
		Price:      combo.Price,
		PriceExGST: t.bundleBase(combo.Price, combo.PriceExGST),
		Quantity:   row.Quantity,
	}
	item.IncludedProducts = includedProducts(parts, models.ParseVariantBlob(row.Variant))
	return item, nil
}

func (t *CartTransformer) bundleBase(price decimal.Decimal, explicit *decimal.Decimal) *decimal.Decimal {
	if !price.IsPositive() && (explicit == nil || !explicit.IsPositive()) {
		return nil
	}
	base := t.calculator.BasePrice(price, explicit)
	return &base
}

type bundlePart struct {
	productID uint
	variantID *uint
	quantity  int
	product   *models.Product
}

// includedProducts resolves each part's variant: the join row's fixed variant first,
// then the customer's selection for that product (by id, else by position).
func includedProducts(parts []bundlePart, blob models.VariantBlob) []models.IncludedProduct {
	included := make([]models.IncludedProduct, 0, len(parts))

	for i, part := range parts {
		ip := models.IncludedProduct{ProductID: part.productID, Quantity: max(part.quantity, 1)}
		product := part.product
		if product == nil {
			product = &models.Product{ID: part.productID}
		}
		ip.Name = product.Name
		ip.Image = product.Image

		var (
			selection models.VariantSelection
			fallback  = true
		)
		if part.variantID != nil {
			if v := product.FindVariant(*part.variantID, ""); v != nil {
				selection, fallback = variantSelection(product.ID, v), false
			}
		}
		if fallback {
			if sel, ok := blob.ForProduct(part.productID, i); ok {
				selection, fallback = resolveSelection(product, sel)
			}
		}
		if fallback && selection.Label == "" {
			selection = models.VariantSelection{ProductID: product.ID, Label: models.DefaultVariantLabel}
		}

		ip.Variant = selection
		ip.VariantFallback = fallback
		included = append(included, ip)
	}

	return included
}

// resolveSelection maps a stored selection onto the product's live variant. When no
// live variant matches, the stored label and price are kept and the result is marked
// as a fallback.
func resolveSelection(product *models.Product, sel models.VariantSelection) (models.VariantSelection, bool) {
	if v := product.FindVariant(sel.VariantID, sel.Label); v != nil {
		return variantSelection(product.ID, v), false
	}
	sel.ProductID = product.ID
	if sel.Label == "" {
		sel.Label = models.DefaultVariantLabel
	}
	return sel, true
}

func variantSelection(productID uint, v *models.ProductVariant) models.VariantSelection {
	price := v.Price
	return models.VariantSelection{
		VariantID:  v.ID,
		ProductID:  productID,
		Label:      v.Label,
		Price:      &price,
		PriceExGST: v.PriceExGST,
	}
}
