// Package seed creates demo data for development environments.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options control how much demo data the seeder creates.
type Options struct {
	Users    int
	Posts    int
	MaxDays  int // spread of post timestamps into the past
	Password string
}

// DefaultOptions seeds a small but browsable blog.
func DefaultOptions() Options {
	return Options{Users: 10, Posts: 40, MaxDays: 90, Password: "password12"}
}

// Seeder populates the database with demo users, posts, and comments.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll wipes demo data. Hard deletes, including soft-deleted rows.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, then posts spread among them, then a comment thread on
// each published post. Roughly a quarter of the posts stay drafts, and most
// comments are approved so pages have something to show.
func (s *Seeder) Run() error {
	opts := s.factory.opts

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := s.factory.User()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	published := 0
	for i := 0; i < opts.Posts; i++ {
		author := users[rand.Intn(len(users))]
		isPublished := rand.Float64() > 0.25

		post, err := s.factory.Post(author, isPublished)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		if !isPublished {
			continue
		}
		published++

		for c := 0; c < rand.Intn(6); c++ {
			commenter := users[rand.Intn(len(users))]
			approved := rand.Float64() > 0.3
			if _, err := s.factory.Comment(commenter, post, approved); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d posts (%d published)", len(users), opts.Posts, published)
	return nil
}
