package model

import "time"

// Quote is a short dhamma saying shown on the home page.
type Quote struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber int       `json:"orderNumber" gorm:"default:0;not null"`
	Title       string    `json:"title" gorm:"size:512;not null"`
	Author      string    `json:"author" gorm:"size:255;not null"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Quote) TableName() string {
	return "quotes"
}
