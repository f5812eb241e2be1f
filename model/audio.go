package model

import "time"

// Audio is a playable track belonging to one album. It is visible to
// members only while both it and its album are active.
type Audio struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber int       `json:"orderNumber" gorm:"default:0;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Source      string    `json:"source" gorm:"size:512;not null"` // public URL of the audio file
	TotalView   int64     `json:"totalView" gorm:"default:0;not null"`
	AlbumID     int64     `json:"albumId" gorm:"index;not null"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Album *Album `json:"album,omitempty" gorm:"foreignKey:AlbumID"`
}

// TableName specifies the table name.
func (Audio) TableName() string {
	return "audios"
}
