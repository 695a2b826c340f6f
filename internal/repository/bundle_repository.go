package repository

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type BundleRepository interface {
	CreateKit(ctx context.Context, kit *models.Kit) error
	CreateCombo(ctx context.Context, combo *models.Combo) error
	GetKit(ctx context.Context, id uint) (*models.Kit, error)
	GetCombo(ctx context.Context, id uint) (*models.Combo, error)
	KitComponents(ctx context.Context, kitID uint) ([]models.BundleComponent, error)
	ComboComponents(ctx context.Context, comboID uint) ([]models.BundleComponent, error)
}

type bundleRepository struct {
	db *gorm.DB
}

func NewBundleRepository(db *gorm.DB) BundleRepository {
	return &bundleRepository{db: db}
}

func (r *bundleRepository) CreateKit(ctx context.Context, kit *models.Kit) error {
	return r.db.WithContext(ctx).Create(kit).Error
}

func (r *bundleRepository) CreateCombo(ctx context.Context, combo *models.Combo) error {
	return r.db.WithContext(ctx).Create(combo).Error
}

func (r *bundleRepository) GetKit(ctx context.Context, id uint) (*models.Kit, error) {
	var kit models.Kit
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Product").
		Preload("Products.Product.Variants").
		First(&kit, id).Error
	if err != nil {
		return nil, notFound(err, ErrKitNotFound)
	}
	return &kit, nil
}

func (r *bundleRepository) GetCombo(ctx context.Context, id uint) (*models.Combo, error) {
	var combo models.Combo
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Product").
		Preload("Products.Product.Variants").
		First(&combo, id).Error
	if err != nil {
		return nil, notFound(err, ErrComboNotFound)
	}
	return &combo, nil
}

func (r *bundleRepository) KitComponents(ctx context.Context, kitID uint) ([]models.BundleComponent, error) {
	var rows []models.KitProduct
	if err := r.db.WithContext(ctx).Where("kit_id = ?", kitID).Find(&rows).Error; err != nil {
		return nil, err
	}
	components := make([]models.BundleComponent, 0, len(rows))
	for _, row := range rows {
		components = append(components, models.BundleComponent{
			ProductID: row.ProductID,
			VariantID: row.VariantID,
			Quantity:  row.Quantity,
		})
	}
	return components, nil
}

func (r *bundleRepository) ComboComponents(ctx context.Context, comboID uint) ([]models.BundleComponent, error) {
	var rows []models.ComboProduct
	if err := r.db.WithContext(ctx).Where("combo_id = ?", comboID).Find(&rows).Error; err != nil {
		return nil, err
	}
	components := make([]models.BundleComponent, 0, len(rows))
	for _, row := range rows {
		components = append(components, models.BundleComponent{
			ProductID: row.ProductID,
			VariantID: row.VariantID,
			Quantity:  row.Quantity,
		})
	}
	return components, nil
}
