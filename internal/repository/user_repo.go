package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// UserRepository loads accounts, api keys and fixed profile attributes.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByAPIKey(ctx context.Context, username, key string) (models.User, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
	GetProfile(ctx context.Context, userID uint) (models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	ProfilesByUserIDs(ctx context.Context, ids []uint) (map[uint]models.UserProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByAPIKey(ctx context.Context, username, key string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN api_keys ON api_keys.user_id = users.id").
		Where("users.username = ? AND api_keys.key = ?", username, key).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("email", email)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uint) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (r *userRepository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Omit("User").Save(profile).Error
}

func (r *userRepository) ProfilesByUserIDs(ctx context.Context, ids []uint) (map[uint]models.UserProfile, error) {
	result := make(map[uint]models.UserProfile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var profiles []models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		result[profile.UserID] = profile
	}
	return result, nil
}
