// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// PostsPerPage is the page size for the published-post listing.
const PostsPerPage = 10

// PublishAction is the author's explicit choice when creating a post.
type PublishAction int

const (
	// PublishActionNone means neither button was pressed; the publish
	// checkbox decides.
	PublishActionNone PublishAction = iota
	PublishActionPublish
	PublishActionSaveDraft
)

// PublishActionFromForm maps the two submit buttons of the create form to an
// action. Publish wins if both values are somehow present.
func PublishActionFromForm(publish, saveDraft string) PublishAction {
	switch {
	case publish != "":
		return PublishActionPublish
	case saveDraft != "":
		return PublishActionSaveDraft
	default:
		return PublishActionNone
	}
}

// PostService handles post business logic.
type PostService struct {
	posts  repository.PostRepository
	images ImageStorage
}

// NewPostService creates a new PostService.
func NewPostService(posts repository.PostRepository, images ImageStorage) *PostService {
	return &PostService{posts: posts, images: images}
}

// CreatePostInput holds the fields for creating a post. PublishChecked is the
// form's publish checkbox; it only matters when neither submit button set an
// explicit Action.
type CreatePostInput struct {
	UserID         uint
	Title          string
	Content        string
	Action         PublishAction
	PublishChecked bool
	Image          *ImageUpload
}

// UpdatePostInput holds the fields for updating a post. Published reflects a
// checkbox, so an unchecked box unpublishes.
type UpdatePostInput struct {
	UserID    uint
	PostID    uint
	Title     string
	Content   string
	Published bool
	Image     *ImageUpload
}

func validatePostFields(title, content string) error {
	titleLen := utf8.RuneCountInString(strings.TrimSpace(title))
	if titleLen < 5 {
		return models.NewValidationError("title must be at least 5 characters", nil)
	}
	if titleLen > 255 {
		return models.NewValidationError("title must not exceed 255 characters", nil)
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content is required", nil)
	}
	return nil
}

// Create validates and persists a new post. The slug is derived from the
// title here and never changes afterwards.
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	slug := Slugify(title)
	if slug == "" {
		return nil, models.NewValidationError("title must contain letters or numbers", nil)
	}

	isPublished := input.Action == PublishActionPublish ||
		(input.Action == PublishActionNone && input.PublishChecked)

	post := &models.Post{
		Title:       title,
		Slug:        slug,
		Content:     input.Content,
		UserID:      input.UserID,
		IsPublished: isPublished,
	}

	if input.Image != nil {
		imagePath, err := s.images.Save(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = imagePath
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError("failed to create post", err)
	}
	return post, nil
}

// Update replaces a post's title, content, published flag, and optionally its
// image. Only the author may update; the slug keeps its original value.
func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	post, err := s.getByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyPost(input.UserID, post) {
		return nil, models.NewForbiddenError("you are not allowed to edit this post")
	}
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	post.IsPublished = input.Published

	if input.Image != nil {
		if post.FeaturedImage != "" {
			if err := s.images.Remove(ctx, post.FeaturedImage); err != nil {
				return nil, err
			}
		}
		imagePath, err := s.images.Save(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = imagePath
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError("failed to update post", err)
	}
	return post, nil
}

// Delete removes a post, its comments, and its image file. Only the author
// may delete.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.getByID(ctx, postID)
	if err != nil {
		return err
	}
	if !policy.CanModifyPost(userID, post) {
		return models.NewForbiddenError("you are not allowed to delete this post")
	}

	// Image file first; if removal fails the post row is still intact.
	if post.FeaturedImage != "" {
		if err := s.images.Remove(ctx, post.FeaturedImage); err != nil {
			return err
		}
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.NewInternalError("failed to delete post", err)
	}
	return nil
}

// GetBySlug returns a post by its slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, models.NewInternalError("failed to fetch post", err)
	}
	return post, nil
}

// GetByID returns a post by its primary key.
func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByID(ctx, id)
}

func (s *PostService) getByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError("failed to fetch post", err)
	}
	return post, nil
}

// ListPage returns one page of published posts, newest first, plus the total
// number of published posts.
func (s *PostService) ListPage(ctx context.Context, page int) ([]*models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PostsPerPage

	posts, err := s.posts.ListPublished(ctx, PostsPerPage, offset)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to list posts", err)
	}
	total, err := s.posts.CountPublished(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to count posts", err)
	}
	return posts, total, nil
}
