package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateUser is returned when the email is already registered.
var ErrDuplicateUser = errors.New("email already registered")

// System playlist copy, created with every account.
const (
	favoritesName        = "รายการโปรด"
	favoritesDescription = "รายการโปรดของคุณ"
	historyName          = "ประวัติการฟัง"
	historyDescription   = "ประวัติการฟังเสียงทั้งหมด"
)

// UserRepository is the data access interface for accounts.
type UserRepository interface {
	// CreateWithPlaylists inserts the user and provisions the DEFAULT and
	// HISTORY playlists in one transaction.
	CreateWithPlaylists(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDWithRole(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int, search string) ([]model.User, int64, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) CreateWithPlaylists(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUser
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		// Every account owns exactly one favorites and one history
		// playlist; they live and die with the user row.
		playlists := []model.Playlist{
			{
				Name:        favoritesName,
				Description: favoritesDescription,
				Slug:        uuid.NewString(),
				Type:        model.PlaylistTypeDefault,
				UserID:      user.ID,
				IsPrivate:   true,
			},
			{
				Name:        historyName,
				Description: historyDescription,
				Slug:        uuid.NewString(),
				Type:        model.PlaylistTypeHistory,
				UserID:      user.ID,
				IsPrivate:   true,
			},
		}
		return tx.Create(&playlists).Error
	})
}

func (r *gormUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByIDWithRole(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormUserRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (r *gormUserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Join rows first, then the playlists, then the user.
		var playlistIDs []int64
		if err := tx.Model(&model.Playlist{}).Where("user_id = ?", id).
			Pluck("id", &playlistIDs).Error; err != nil {
			return err
		}
		if len(playlistIDs) > 0 {
			if err := tx.Where("playlist_id IN ?", playlistIDs).
				Delete(&model.PlaylistAudio{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&model.Playlist{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.User{}, id).Error
	})
}

func (r *gormUserRepository) List(ctx context.Context, offset, limit int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(SearchAny(search, "first_name", "last_name", "email"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Role").
		Scopes(Paginate(offset, limit)).
		Order("updated_at DESC").
		Find(&users).Error
	return users, total, err
}
