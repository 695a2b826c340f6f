package models

import "time"

// CartItem references exactly one of a product, kit or combo. Variant holds the
// serialized selection: an object for products, an array for kits and combos.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ProductID *uint     `json:"product_id,omitempty"`
	KitID     *uint     `json:"kit_id,omitempty"`
	ComboID   *uint     `json:"combo_id,omitempty"`
	Variant   string    `json:"variant" gorm:"type:text"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CartItem) Kind() ItemKind {
	switch {
	case c.ProductID != nil:
		return KindProduct
	case c.KitID != nil:
		return KindKit
	case c.ComboID != nil:
		return KindCombo
	}
	return ""
}

// References counts how many of the three foreign keys are set.
func (c *CartItem) References() int {
	n := 0
	for _, id := range []*uint{c.ProductID, c.KitID, c.ComboID} {
		if id != nil {
			n++
		}
	}
	return n
}
