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

// CommentsPerPage is the page size for comment threads on a post page.
const CommentsPerPage = 20

// CommentService handles comment business logic.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// CreateCommentInput holds the fields for adding a comment to a post.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// Create validates and persists a new comment. New comments always start
// unapproved.
func (s *CommentService) Create(ctx context.Context, input CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if utf8.RuneCountInString(content) < 5 {
		return nil, models.NewValidationError("comment must be at least 5 characters", nil)
	}

	if _, err := s.posts.GetByID(ctx, input.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", input.PostID)
		}
		return nil, models.NewInternalError("failed to fetch post", err)
	}

	comment := &models.Comment{
		Content: content,
		UserID:  input.UserID,
		PostID:  input.PostID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError("failed to create comment", err)
	}
	return comment, nil
}

// Delete removes a comment. The comment's author and the post's author may
// delete; everyone else gets a forbidden error.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError("failed to fetch comment", err)
	}

	if !policy.CanDeleteComment(userID, comment, &comment.Post) {
		return models.NewForbiddenError("you are not allowed to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return models.NewInternalError("failed to delete comment", err)
	}
	return nil
}

// ListPage returns one page of approved comments for a post, newest first,
// plus the total approved count.
func (s *CommentService) ListPage(ctx context.Context, postID uint, page int) ([]*models.Comment, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * CommentsPerPage

	comments, err := s.comments.ListApprovedByPost(ctx, postID, CommentsPerPage, offset)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to list comments", err)
	}
	total, err := s.comments.CountApprovedByPost(ctx, postID)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to count comments", err)
	}
	return comments, total, nil
}
