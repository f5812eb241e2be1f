package repository

import (
	"context"
	"errors"

	"dhammasound/model"

	"gorm.io/gorm"
)

// ContactRepository is the data access interface for contact messages.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	UpdateReply(ctx context.Context, id int64, isReply bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]model.Contact, int64, error)
	CountUnreplied(ctx context.Context) (int64, error)
}

type gormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a GORM-backed contact repository.
func NewGormContactRepository(db *gorm.DB) ContactRepository {
	return &gormContactRepository{db: db}
}

func (r *gormContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *gormContactRepository) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).First(&contact, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *gormContactRepository) UpdateReply(ctx context.Context, id int64, isReply bool) error {
	return r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("id = ?", id).
		Update("is_reply", isReply).Error
}

func (r *gormContactRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Contact{}, id).Error
}

func (r *gormContactRepository) List(ctx context.Context, offset, limit int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Contact{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(offset, limit)).
		Order("created_at DESC").
		Find(&contacts).Error
	return contacts, total, err
}

func (r *gormContactRepository) CountUnreplied(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("is_active = ? AND is_reply = ?", true, false).
		Count(&count).Error
	return count, err
}
