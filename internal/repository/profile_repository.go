package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"routine-planner/internal/model"
)

// ProfileRepository stores reward profiles.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ReadProfile returns the stored profile, or the default one if the user has none yet.
func (r *ProfileRepository) ReadProfile(ctx context.Context, userID uint) (model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.DefaultProfile(userID), nil
	default:
		return model.Profile{}, wrapErr("read", "profile", strconv.FormatUint(uint64(userID), 10), err)
	}
}

// WriteProfile inserts or replaces the profile of p.UserID.
func (r *ProfileRepository) WriteProfile(ctx context.Context, p model.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "level", "updated_at"}),
	}).Create(&p).Error
	return wrapErr("write", "profile", strconv.FormatUint(uint64(p.UserID), 10), err)
}
