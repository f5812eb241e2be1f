package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"gorm.io/gorm"
)

// AlbumRepository is the data access interface for albums.
type AlbumRepository interface {
	Create(ctx context.Context, album *model.Album) error
	GetByID(ctx context.Context, id int64) (*model.Album, error)
	GetByName(ctx context.Context, name string) (*model.Album, error)
	// GetActiveBySlugWithAudios loads an album with its active audios and priest.
	GetActiveBySlugWithAudios(ctx context.Context, slug string) (*model.Album, error)
	Update(ctx context.Context, album *model.Album) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int, search string) ([]model.Album, int64, error)
	ListActive(ctx context.Context) ([]model.Album, error)
	SearchActive(ctx context.Context, term string) ([]model.Album, error)
	ListRecommended(ctx context.Context) ([]model.Album, error)
	ListByPriest(ctx context.Context, priestID int64, recommended bool) ([]model.Album, error)
}

type gormAlbumRepository struct {
	db *gorm.DB
}

// NewGormAlbumRepository creates a GORM-backed album repository.
func NewGormAlbumRepository(db *gorm.DB) AlbumRepository {
	return &gormAlbumRepository{db: db}
}

func (r *gormAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	return r.db.WithContext(ctx).Create(album).Error
}

func (r *gormAlbumRepository) GetByID(ctx context.Context, id int64) (*model.Album, error) {
	var album model.Album
	err := r.db.WithContext(ctx).Preload("Priest").First(&album, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

func (r *gormAlbumRepository) GetByName(ctx context.Context, name string) (*model.Album, error) {
	var album model.Album
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

func (r *gormAlbumRepository) GetActiveBySlugWithAudios(ctx context.Context, slug string) (*model.Album, error) {
	var album model.Album
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		Preload("Audios", "is_active = ?", true).
		Preload("Priest", "is_active = ?", true).
		First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

func (r *gormAlbumRepository) Update(ctx context.Context, album *model.Album) error {
	return r.db.WithContext(ctx).Save(album).Error
}

func (r *gormAlbumRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Album{}, id).Error
}

func (r *gormAlbumRepository) List(ctx context.Context, offset, limit int, search string) ([]model.Album, int64, error) {
	var albums []model.Album
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Album{}).
		Scopes(SearchAny(search, "name", "description"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Priest").
		Scopes(Paginate(offset, limit)).
		Order("updated_at DESC").
		Find(&albums).Error
	return albums, total, err
}

func (r *gormAlbumRepository) ListActive(ctx context.Context) ([]model.Album, error) {
	var albums []model.Album
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&albums).Error
	return albums, err
}

func (r *gormAlbumRepository) SearchActive(ctx context.Context, term string) ([]model.Album, error) {
	var albums []model.Album
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Scopes(SearchAny(term, "name", "description")).
		Find(&albums).Error
	return albums, err
}

func (r *gormAlbumRepository) ListRecommended(ctx context.Context) ([]model.Album, error) {
	var albums []model.Album
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_recommend = ?", true, true).
		Find(&albums).Error
	return albums, err
}

func (r *gormAlbumRepository) ListByPriest(ctx context.Context, priestID int64, recommended bool) ([]model.Album, error) {
	var albums []model.Album
	err := r.db.WithContext(ctx).
		Where("priest_id = ? AND is_active = ? AND is_recommend = ?", priestID, true, recommended).
		Find(&albums).Error
	return albums, err
}
