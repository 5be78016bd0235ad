package server

import (
	"io"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/policy"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index renders the published post listing, newest first.
func (s *Server) Index(c *fiber.Ctx) error {
	page := parsePage(c)
	posts, total, err := s.postService.ListPage(c.UserContext(), page)
	if err != nil {
		return err
	}

	data := s.viewData(c, "Inkwell")
	data["Posts"] = posts
	data["Pager"] = paginate(page, total, service.PostsPerPage)
	return c.Render("posts/index", data)
}

// NewPost renders the post creation form.
func (s *Server) NewPost(c *fiber.Ctx) error {
	data := s.viewData(c, "New Post")
	data["FormTitle"] = ""
	data["FormContent"] = ""
	data["FormPublished"] = false
	return c.Render("posts/create", data)
}

// CreatePost handles the post creation form submit.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	title := c.FormValue("title")
	content := c.FormValue("content")
	action := service.PublishActionFromForm(c.FormValue("publish"), c.FormValue("save_draft"))
	publishChecked := c.FormValue("is_published") != ""

	image, err := s.readImageUpload(c)
	if err != nil {
		return err
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID:         userID,
		Title:          title,
		Content:        content,
		Action:         action,
		PublishChecked: publishChecked,
		Image:          image,
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			data := s.viewData(c, "New Post")
			data["FormError"] = appErrorMessage(err)
			data["FormTitle"] = title
			data["FormContent"] = content
			data["FormPublished"] = publishChecked
			return c.Status(fiber.StatusUnprocessableEntity).Render("posts/create", data)
		}
		return err
	}

	state := "draft"
	message := "Post saved as draft successfully!"
	if post.IsPublished {
		state = "published"
		message = "Post published successfully!"
	}
	observability.PostsCreated.WithLabelValues(state).Inc()
	middleware.Logger.InfoContext(c.UserContext(), "post created",
		slog.Any("post_id", post.ID), slog.String("slug", post.Slug), slog.String("state", state))

	s.flashSuccess(c, message)
	return c.Redirect("/posts/"+post.Slug, fiber.StatusSeeOther)
}

// ShowPost renders a single post with its approved comments. Drafts stay off
// the listing but resolve by slug like any other post, with a draft badge.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	post, err := s.postService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	viewerID, _ := s.currentUser(c)
	page := parsePage(c)
	comments, total, err := s.commentService.ListPage(c.UserContext(), post.ID, page)
	if err != nil {
		return err
	}

	data := s.viewData(c, post.Title)
	data["Post"] = post
	data["CanModify"] = policy.CanModifyPost(viewerID, post)
	data["Comments"] = comments
	data["CommentsPager"] = paginate(page, total, service.CommentsPerPage)
	return c.Render("posts/show", data)
}

// EditPost renders the edit form. Only the author gets this far.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	userID := c.Locals("userID").(uint)
	if !policy.CanModifyPost(userID, post) {
		return models.NewForbiddenError("you are not allowed to edit this post")
	}

	data := s.viewData(c, "Edit Post")
	data["Post"] = post
	data["FormTitle"] = post.Title
	data["FormContent"] = post.Content
	data["FormPublished"] = post.IsPublished
	return c.Render("posts/edit", data)
}

// UpdatePost handles the edit form submit. The publish state follows the
// checkbox, so leaving it unchecked unpublishes.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := c.Locals("userID").(uint)
	title := c.FormValue("title")
	content := c.FormValue("content")
	published := c.FormValue("is_published") != ""

	image, err := s.readImageUpload(c)
	if err != nil {
		return err
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		UserID:    userID,
		PostID:    id,
		Title:     title,
		Content:   content,
		Published: published,
		Image:     image,
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			data := s.viewData(c, "Edit Post")
			data["FormError"] = appErrorMessage(err)
			data["Post"] = &models.Post{ID: id}
			data["FormTitle"] = title
			data["FormContent"] = content
			data["FormPublished"] = published
			return c.Status(fiber.StatusUnprocessableEntity).Render("posts/edit", data)
		}
		return err
	}

	s.flashSuccess(c, "Post updated successfully!")
	return c.Redirect("/posts/"+post.Slug, fiber.StatusSeeOther)
}

// DeletePost removes a post, its comments, and its image.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "post deleted", slog.Any("post_id", id))
	s.flashSuccess(c, "Post deleted successfully!")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// readImageUpload pulls the optional featured image out of the multipart
// form. A missing file field is not an error.
func (s *Server) readImageUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile("featured_image")
	if err != nil || fileHeader == nil || fileHeader.Size == 0 {
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, models.NewValidationError("unable to read uploaded file", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, models.NewValidationError("unable to read uploaded file", err)
	}

	observability.ImageUploadBytes.Observe(float64(len(content)))
	return &service.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
