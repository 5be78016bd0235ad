package server

import (
	"errors"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateComment handles the comment form on a post page. Validation failures
// come back as a flash message on the post rather than an error page.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetByID(c.UserContext(), postID)
	if err != nil {
		return err
	}

	userID := c.Locals("userID").(uint)
	_, err = s.commentService.Create(c.UserContext(), service.CreateCommentInput{
		UserID:  userID,
		PostID:  postID,
		Content: c.FormValue("content"),
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			s.flashError(c, appErrorMessage(err))
			return c.Redirect("/posts/"+post.Slug, fiber.StatusSeeOther)
		}
		return err
	}

	observability.CommentsCreated.Inc()
	middleware.Logger.InfoContext(c.UserContext(), "comment created", slog.Any("post_id", postID))

	s.flashSuccess(c, "Comment added successfully!")
	return c.Redirect("/posts/"+post.Slug, fiber.StatusSeeOther)
}

// DeleteComment removes a comment. A viewer without permission is sent back
// to the post with an error flash instead of an error page.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(c.UserContext(), commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError("failed to fetch comment", err)
	}
	backTo := "/posts/" + comment.Post.Slug

	userID := c.Locals("userID").(uint)
	if err := s.commentService.Delete(c.UserContext(), userID, commentID); err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			s.flashError(c, "You are not authorized to delete this comment.")
			return c.Redirect(backTo, fiber.StatusSeeOther)
		}
		return err
	}

	s.flashSuccess(c, "Comment deleted successfully!")
	return c.Redirect(backTo, fiber.StatusSeeOther)
}
