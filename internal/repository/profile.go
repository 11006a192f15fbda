package repository

import (
	"context"
	"errors"

	"devlink/internal/cache"
	"devlink/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles and their
// experience/education sub-lists. Lookups return (nil, nil) when no profile
// exists so handlers can shape the noProfile response.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	AddExperience(ctx context.Context, profile *models.Profile, exp *models.Experience) error
	RemoveExperience(ctx context.Context, profile *models.Profile, expID uint) error
	AddEducation(ctx context.Context, profile *models.Profile, edu *models.Education) error
	RemoveEducation(ctx context.Context, profile *models.Profile, eduID uint) error
	DeleteWithUser(ctx context.Context, userID uint) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// withDetails preloads the owning user and both history lists, most recent
// entry first. Profiles are public, so only the owner's public fields (name,
// avatar) are joined; the email stays private to the account endpoints.
func (r *profileRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "avatar")
		}).
		Preload("Experience", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Education", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		})
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileByUserKey(userID), &profile, cache.ProfileTTL, func() error {
		return r.withDetails(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileByHandleKey(handle), &profile, cache.ProfileTTL, func() error {
		return r.withDetails(r.db.WithContext(ctx)).Where("handle = ?", handle).First(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := r.withDetails(r.db.WithContext(ctx)).Order("created_at DESC").Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.FieldErrors{"handle": "That handle already exists"}
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	// A handle change must also drop the cache entry under the old handle.
	var prev models.Profile
	if err := r.db.WithContext(ctx).Select("handle").First(&prev, profile.ID).Error; err == nil &&
		prev.Handle != profile.Handle {
		cache.Invalidate(ctx, cache.ProfileByHandleKey(prev.Handle))
	}

	// Save without touching the history lists; those have dedicated paths.
	err := r.db.WithContext(ctx).
		Omit("Experience", "Education", "User").
		Save(profile).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.FieldErrors{"handle": "That handle already exists"}
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	return nil
}

func (r *profileRepository) AddExperience(ctx context.Context, profile *models.Profile, exp *models.Experience) error {
	exp.ProfileID = profile.ID
	if err := r.db.WithContext(ctx).Create(exp).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	return nil
}

func (r *profileRepository) RemoveExperience(ctx context.Context, profile *models.Profile, expID uint) error {
	// Scoped to the owning profile; removing an unknown id is a no-op.
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profile.ID).
		Delete(&models.Experience{}, expID).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	return nil
}

func (r *profileRepository) AddEducation(ctx context.Context, profile *models.Profile, edu *models.Education) error {
	edu.ProfileID = profile.ID
	if err := r.db.WithContext(ctx).Create(edu).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	return nil
}

func (r *profileRepository) RemoveEducation(ctx context.Context, profile *models.Profile, eduID uint) error {
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profile.ID).
		Delete(&models.Education{}, eduID).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID, profile.Handle)
	return nil
}

// DeleteWithUser removes the caller's profile (with its history entries) and
// then the user record in one transaction, closing the original's
// non-atomic two-step cascade.
func (r *profileRepository) DeleteWithUser(ctx context.Context, userID uint) error {
	var handle string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if err == nil {
			handle = profile.Handle
			if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.Experience{}).Error; err != nil {
				return err
			}
			if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.Education{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, userID, handle)
	cache.InvalidateUser(ctx, userID)
	return nil
}
