package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"gorm.io/gorm"
)

// PriestRepository is the data access interface for priests.
type PriestRepository interface {
	Create(ctx context.Context, priest *model.Priest) error
	GetByID(ctx context.Context, id int64) (*model.Priest, error)
	GetActiveBySlug(ctx context.Context, slug string) (*model.Priest, error)
	// GetActiveBySlugWithAlbums also loads the priest's active albums.
	GetActiveBySlugWithAlbums(ctx context.Context, slug string) (*model.Priest, error)
	Update(ctx context.Context, priest *model.Priest) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int, search string) ([]model.Priest, int64, error)
	ListActive(ctx context.Context) ([]model.Priest, error)
}

type gormPriestRepository struct {
	db *gorm.DB
}

// NewGormPriestRepository creates a GORM-backed priest repository.
func NewGormPriestRepository(db *gorm.DB) PriestRepository {
	return &gormPriestRepository{db: db}
}

func (r *gormPriestRepository) Create(ctx context.Context, priest *model.Priest) error {
	return r.db.WithContext(ctx).Create(priest).Error
}

func (r *gormPriestRepository) GetByID(ctx context.Context, id int64) (*model.Priest, error) {
	var priest model.Priest
	err := r.db.WithContext(ctx).First(&priest, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &priest, nil
}

func (r *gormPriestRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Priest, error) {
	var priest model.Priest
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&priest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &priest, nil
}

func (r *gormPriestRepository) GetActiveBySlugWithAlbums(ctx context.Context, slug string) (*model.Priest, error) {
	var priest model.Priest
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		Preload("Albums", "is_active = ?", true).
		First(&priest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &priest, nil
}

func (r *gormPriestRepository) Update(ctx context.Context, priest *model.Priest) error {
	return r.db.WithContext(ctx).Save(priest).Error
}

func (r *gormPriestRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Priest{}, id).Error
}

func (r *gormPriestRepository) List(ctx context.Context, offset, limit int, search string) ([]model.Priest, int64, error) {
	var priests []model.Priest
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Priest{}).
		Scopes(SearchAny(search, "full_name"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(offset, limit)).
		Order("updated_at DESC").
		Find(&priests).Error
	return priests, total, err
}

func (r *gormPriestRepository) ListActive(ctx context.Context) ([]model.Priest, error) {
	var priests []model.Priest
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&priests).Error
	return priests, err
}
