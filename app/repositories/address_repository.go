package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Address, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Address, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	SetDefault(ctx context.Context, userID, addressID string) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, address *models.Address) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(address).Error
}

func (r *addressRepository) Update(ctx context.Context, address *models.Address) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(address).Error
}

func (r *addressRepository) Delete(ctx context.Context, id string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.Address{}, "id = ?", id).Error
}

func (r *addressRepository) FindByID(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&address, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) FindByUserID(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *addressRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SetDefault enforces the single-default invariant in one transaction:
// every other address loses the flag before the target gains it.
func (r *addressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ? AND id <> ?", userID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
