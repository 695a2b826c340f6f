package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultVariantLabel is shown whenever a stored selection cannot be resolved.
const DefaultVariantLabel = "Default"

var ErrUnparseableVariant = errors.New("unparseable variant selection")

type VariantSelection struct {
	VariantID  uint             `json:"variant_id,omitempty"`
	ProductID  uint             `json:"product_id,omitempty"`
	Label      string           `json:"label"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	PriceExGST *decimal.Decimal `json:"price_ex_gst,omitempty"`
}

type VariantState int

const (
	VariantEmpty VariantState = iota
	VariantSingle
	VariantMultiple
	VariantUnparseable
)

func (s VariantState) String() string {
	switch s {
	case VariantEmpty:
		return "empty"
	case VariantSingle:
		return "single"
	case VariantMultiple:
		return "multiple"
	}
	return "unparseable"
}

// VariantBlob is the typed form of a cart row's variant column.
type VariantBlob struct {
	State    VariantState
	Single   *VariantSelection
	Multiple []VariantSelection
	Raw      string
	Err      error
}

// Selections flattens the blob; a single selection becomes a one-element slice.
func (b VariantBlob) Selections() []VariantSelection {
	switch b.State {
	case VariantSingle:
		return []VariantSelection{*b.Single}
	case VariantMultiple:
		return b.Multiple
	}
	return nil
}

func (b VariantBlob) First() (VariantSelection, bool) {
	sel := b.Selections()
	if len(sel) == 0 {
		return VariantSelection{}, false
	}
	return sel[0], true
}

// ForProduct picks the selection for productID, falling back to position.
func (b VariantBlob) ForProduct(productID uint, position int) (VariantSelection, bool) {
	sel := b.Selections()
	for _, s := range sel {
		if s.ProductID != 0 && s.ProductID == productID {
			return s, true
		}
	}
	if position >= 0 && position < len(sel) && sel[position].ProductID == 0 {
		return sel[position], true
	}
	return VariantSelection{}, false
}

// ParseVariantBlob accepts an object, an array of objects, or a JSON string holding
// either of those. Anything else yields VariantUnparseable.
func ParseVariantBlob(raw string) VariantBlob {
	blob := VariantBlob{Raw: raw}
	data := []byte(strings.TrimSpace(raw))

	// one level of double encoding is common in stored rows
	for depth := 0; depth < 2 && len(data) > 0 && data[0] == '"'; depth++ {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return blob.unparseable(err)
		}
		data = []byte(strings.TrimSpace(inner))
	}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("{}")) {
		blob.State = VariantEmpty
		return blob
	}

	switch data[0] {
	case '{':
		var s rawSelection
		if err := json.Unmarshal(data, &s); err != nil {
			return blob.unparseable(err)
		}
		sel := s.selection()
		blob.State = VariantSingle
		blob.Single = &sel
	case '[':
		var list []rawSelection
		if err := json.Unmarshal(data, &list); err != nil {
			return blob.unparseable(err)
		}
		if len(list) == 0 {
			blob.State = VariantEmpty
			return blob
		}
		blob.State = VariantMultiple
		blob.Multiple = make([]VariantSelection, 0, len(list))
		for _, s := range list {
			blob.Multiple = append(blob.Multiple, s.selection())
		}
	default:
		return blob.unparseable(fmt.Errorf("unexpected leading %q", data[0]))
	}
	return blob
}

func (b VariantBlob) unparseable(cause error) VariantBlob {
	b.State = VariantUnparseable
	b.Err = fmt.Errorf("%w: %v", ErrUnparseableVariant, cause)
	return b
}

// rawSelection tolerates the key spellings the storefront has written over time.
type rawSelection struct {
	ID         flexUint         `json:"id"`
	VariantID  flexUint         `json:"variant_id"`
	ProductID  flexUint         `json:"product_id"`
	Label      string           `json:"label"`
	Name       string           `json:"name"`
	Size       string           `json:"size"`
	Price      *decimal.Decimal `json:"price"`
	PriceExGST *decimal.Decimal `json:"price_ex_gst"`
	BasePrice  *decimal.Decimal `json:"base_price"`
}

func (r rawSelection) selection() VariantSelection {
	sel := VariantSelection{
		VariantID: uint(r.VariantID),
		ProductID: uint(r.ProductID),
		Label:     r.Label,
		Price:     r.Price,
	}
	if sel.VariantID == 0 {
		sel.VariantID = uint(r.ID)
	}
	if sel.Label == "" {
		sel.Label = r.Name
	}
	if sel.Label == "" {
		sel.Label = r.Size
	}
	sel.PriceExGST = r.PriceExGST
	if sel.PriceExGST == nil {
		sel.PriceExGST = r.BasePrice
	}
	return sel
}

type flexUint uint

func (f *flexUint) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*f = flexUint(n)
	return nil
}
