package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. The slug is derived from the title exactly once, at
// creation time; editing the title later never changes it.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Slug    string `gorm:"index;not null" json:"slug"`
	Content string `gorm:"type:text;not null" json:"content"`
	// FeaturedImage is a path relative to the upload directory, e.g.
	// "posts/7f3c....jpg". Empty when the post has no image.
	FeaturedImage string `json:"featured_image,omitempty"`
	IsPublished   bool   `gorm:"not null;default:false" json:"is_published"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	User          User   `gorm:"foreignKey:UserID" json:"user"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->" json:"comments_count"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
