package model

import "time"

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	FullName    string    `json:"fullName" gorm:"size:255;not null"`
	Email       string    `json:"email" gorm:"size:255;not null"`
	Phone       string    `json:"phone" gorm:"size:50"`
	UserID      *int64    `json:"userId,omitempty" gorm:"index"` // set when a logged-in member submits
	IsReply     bool      `json:"isReply" gorm:"default:false;not null"`
	IsActive    bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Contact) TableName() string {
	return "contacts"
}
