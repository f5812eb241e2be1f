package model

import "time"

// Role names a permission bucket ("user", "admin").
type Role struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:255"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// RESTRICT: a role cannot be deleted while users reference it.
	Users []User `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name.
func (Role) TableName() string {
	return "roles"
}
