package repository

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	GetByID(ctx context.Context, id uint) (*models.CartItem, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.CartItem, error)
	FindMatching(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	return &item, nil
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, err
}

// FindMatching returns the row for the same user, reference and variant blob, if any.
func (r *cartRepository) FindMatching(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND variant = ?", item.UserID, item.Variant)
	switch item.Kind() {
	case models.KindProduct:
		q = q.Where("product_id = ?", *item.ProductID)
	case models.KindKit:
		q = q.Where("kit_id = ?", *item.KitID)
	case models.KindCombo:
		q = q.Where("combo_id = ?", *item.ComboID)
	default:
		return nil, ErrCartItemNotFound
	}

	var existing models.CartItem
	if err := q.First(&existing).Error; err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	return &existing, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	tx := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
