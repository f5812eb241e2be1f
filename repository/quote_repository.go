package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"gorm.io/gorm"
)

// QuoteRepository is the data access interface for quotes.
type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	BulkCreate(ctx context.Context, quotes []model.Quote) error
	GetByID(ctx context.Context, id int64) (*model.Quote, error)
	Update(ctx context.Context, quote *model.Quote) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]model.Quote, int64, error)
	ListActive(ctx context.Context) ([]model.Quote, error)
}

type gormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a GORM-backed quote repository.
func NewGormQuoteRepository(db *gorm.DB) QuoteRepository {
	return &gormQuoteRepository{db: db}
}

func (r *gormQuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *gormQuoteRepository) BulkCreate(ctx context.Context, quotes []model.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&quotes).Error
}

func (r *gormQuoteRepository) GetByID(ctx context.Context, id int64) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).First(&quote, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

func (r *gormQuoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *gormQuoteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Quote{}, id).Error
}

func (r *gormQuoteRepository) List(ctx context.Context, offset, limit int) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Quote{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(offset, limit)).
		Order("order_number ASC").
		Find(&quotes).Error
	return quotes, total, err
}

func (r *gormQuoteRepository) ListActive(ctx context.Context) ([]model.Quote, error) {
	var quotes []model.Quote
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("order_number ASC").
		Find(&quotes).Error
	return quotes, err
}
