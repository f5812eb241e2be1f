package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"gorm.io/gorm"
)

// AudioRepository is the data access interface for audio tracks.
type AudioRepository interface {
	Create(ctx context.Context, audio *model.Audio) error
	GetByID(ctx context.Context, id int64) (*model.Audio, error)
	// GetActiveByID returns nil when the audio is absent or inactive.
	GetActiveByID(ctx context.Context, id int64) (*model.Audio, error)
	Update(ctx context.Context, audio *model.Audio) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int, search string) ([]model.Audio, int64, error)
}

type gormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository creates a GORM-backed audio repository.
func NewGormAudioRepository(db *gorm.DB) AudioRepository {
	return &gormAudioRepository{db: db}
}

func (r *gormAudioRepository) Create(ctx context.Context, audio *model.Audio) error {
	return r.db.WithContext(ctx).Create(audio).Error
}

func (r *gormAudioRepository) GetByID(ctx context.Context, id int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).Preload("Album").First(&audio, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

func (r *gormAudioRepository) GetActiveByID(ctx context.Context, id int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&audio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

func (r *gormAudioRepository) Update(ctx context.Context, audio *model.Audio) error {
	return r.db.WithContext(ctx).Save(audio).Error
}

func (r *gormAudioRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("audio_id = ?", id).Delete(&model.PlaylistAudio{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Audio{}, id).Error
	})
}

func (r *gormAudioRepository) List(ctx context.Context, offset, limit int, search string) ([]model.Audio, int64, error) {
	var audios []model.Audio
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Audio{}).
		Scopes(SearchAny(search, "name"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Album").
		Scopes(Paginate(offset, limit)).
		Order("updated_at DESC").
		Find(&audios).Error
	return audios, total, err
}
