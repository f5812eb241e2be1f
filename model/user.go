package model

import "time"

// DefaultUserAvatar is used when no avatar has been uploaded.
const DefaultUserAvatar = "/images/default/user-default.png"

// User represents an account in the system.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName string    `json:"firstName" gorm:"size:100;not null"`
	LastName  string    `json:"lastName" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never serialized
	Avatar    string    `json:"avatar" gorm:"size:512;not null;default:'/images/default/user-default.png'"`
	RoleID    int64     `json:"roleId" gorm:"index"`
	IsActive  bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Role      *Role      `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Playlists []Playlist `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name.
func (User) TableName() string {
	return "users"
}
