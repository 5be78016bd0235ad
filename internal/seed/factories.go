package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options

	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts}
}

// User creates a user with a fake identity. Every seeded user shares the
// configured password so any demo account can log in.
func (f *Factory) User() (*models.User, error) {
	if f.passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.opts.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		f.passwordHash = string(hash)
	}

	username := strings.ToLower(fmt.Sprintf("%s_%s%d",
		gofakeit.Adjective(), gofakeit.NounAbstract(), gofakeit.Number(1, 999)))
	user := &models.User{
		Username: username,
		Email:    username + "@" + gofakeit.DomainName(),
		Password: f.passwordHash,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Post creates a post for the user with a timestamp scattered into the past.
func (f *Factory) Post(user *models.User, published bool) (*models.Post, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 7)), ".")
	post := &models.Post{
		Title:       title,
		Slug:        service.Slugify(title),
		Content:     gofakeit.Paragraph(2, 4, 8, "\n\n"),
		UserID:      user.ID,
		IsPublished: published,
		CreatedAt:   f.pastTime(),
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Comment creates a comment on the post. Seed data may mark comments
// approved so pages render populated threads.
func (f *Factory) Comment(user *models.User, post *models.Post, approved bool) (*models.Comment, error) {
	createdAt := post.CreatedAt.Add(time.Duration(rand.Intn(72)) * time.Hour)
	comment := &models.Comment{
		Content:    gofakeit.Sentence(gofakeit.Number(5, 20)),
		UserID:     user.ID,
		PostID:     post.ID,
		IsApproved: approved,
		CreatedAt:  createdAt,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(rand.Intn(maxDays))*24*time.Hour +
		time.Duration(rand.Intn(24))*time.Hour +
		time.Duration(rand.Intn(60))*time.Minute
	return time.Now().Add(-back)
}
