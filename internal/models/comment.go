package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to a post and an author; it is never edited in place.
// IsApproved gates visibility on the public thread. No workflow in this
// application sets it to true; moderation happens outside the request path.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	PostID     uint           `gorm:"not null;index" json:"post_id"`
	IsApproved bool           `gorm:"not null;default:false" json:"is_approved"`
	User       User           `gorm:"foreignKey:UserID" json:"user"`
	Post       Post           `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
