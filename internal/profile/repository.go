// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"strings"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByProviderUID(ctx context.Context, providerUID string) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	// SetApproval writes approved and status together in a single UPDATE so
	// the two signals can never be observed disagreeing.
	SetApproval(ctx context.Context, id uuid.UUID, approved bool, status string) error
	AddPoints(ctx context.Context, id uuid.UUID, delta int) error
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]Profile, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "unique constraint") ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new profile record into the database.
func (r *gormRepository) Create(ctx context.Context, profile *Profile) error {
	if profile.Email != nil {
		*profile.Email = strings.ToLower(strings.TrimSpace(*profile.Email))
	}
	err := r.db.WithContext(ctx).Create(profile).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A profile already exists for this identity.")
		}
		return err
	}
	return nil
}

// FindByProviderUID retrieves a profile by its identity provider UID.
func (r *gormRepository) FindByProviderUID(ctx context.Context, providerUID string) (*Profile, error) {
	var profileModel Profile
	err := r.db.WithContext(ctx).Where("provider_uid = ?", providerUID).First(&profileModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found for this identity.")
		}
		return nil, err
	}
	return &profileModel, nil
}

// FindByID retrieves a profile by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profileModel Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profileModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found with this ID.")
		}
		return nil, err
	}
	return &profileModel, nil
}

// Update modifies an existing profile record in the database.
func (r *gormRepository) Update(ctx context.Context, profile *Profile) error {
	if profile.Email != nil {
		*profile.Email = strings.ToLower(strings.TrimSpace(*profile.Email))
	}
	err := r.db.WithContext(ctx).Save(profile).Error
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed due to a conflict.")
		}
		return err
	}
	return nil
}

// SetApproval flips both approval signals atomically.
func (r *gormRepository) SetApproval(ctx context.Context, id uuid.UUID, approved bool, status string) error {
	result := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approved":   approved,
			"status":     status,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Profile not found with this ID.")
	}
	return nil
}

// AddPoints increments a profile's points balance.
func (r *gormRepository) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Profile not found with this ID.")
	}
	return nil
}

// ListByStatus returns a page of profiles with the given status, newest first.
func (r *gormRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]Profile, int64, error) {
	var profiles []Profile
	var total int64

	query := r.db.WithContext(ctx).Model(&Profile{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
