package model

import "time"

// DefaultPriestAvatar is used when no avatar has been uploaded.
const DefaultPriestAvatar = "/images/default/priest-default.png"

// Priest is a teacher whose recorded talks are published on the platform.
type Priest struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FullName    string    `json:"fullName" gorm:"size:255;not null"`
	Avatar      string    `json:"avatar" gorm:"size:512;not null;default:'/images/default/priest-default.png'"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Albums []Album `json:"albums,omitempty" gorm:"foreignKey:PriestID"`
}

// TableName specifies the table name.
func (Priest) TableName() string {
	return "priests"
}
