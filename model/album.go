package model

import "time"

// DefaultAlbumCover is used when no cover image has been uploaded.
const DefaultAlbumCover = "/images/default/album-default.png"

// Album groups audio tracks under one priest.
type Album struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CoverImage  string    `json:"coverImage" gorm:"size:512;not null;default:'/images/default/album-default.png'"`
	Slug        string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	TotalView   int64     `json:"totalView" gorm:"default:0;not null"`
	PriestID    int64     `json:"priestId" gorm:"index;not null"`
	IsRecommend bool      `json:"isRecommend" gorm:"default:false;not null"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Priest *Priest `json:"priest,omitempty" gorm:"foreignKey:PriestID"`
	Audios []Audio `json:"audios,omitempty" gorm:"foreignKey:AlbumID"`
}

// TableName specifies the table name.
func (Album) TableName() string {
	return "albums"
}
