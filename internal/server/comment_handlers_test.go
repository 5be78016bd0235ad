package server

import (
	"fmt"
	"net/url"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishPost(t *testing.T, b *browser, s *Server, title string) *models.Post {
	t.Helper()
	resp := b.postForm("/posts", url.Values{
		"title":   {title},
		"content": {"body"},
		"publish": {"1"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var post models.Post
	require.NoError(t, s.db.Where("title = ?", title).First(&post).Error)
	return &post
}

func TestCreateComment(t *testing.T) {
	t.Parallel()

	s, app := newTestServer(t)
	author := registerUser(t, s, "author")
	commenter := registerUser(t, s, "commenter")

	b := newBrowser(t, app)
	login(t, b, author.Email)
	post := publishPost(t, b, s, "A Post To Discuss")

	other := newBrowser(t, app)
	login(t, other, commenter.Email)

	t.Run("valid comment is stored unapproved", func(t *testing.T) {
		resp := other.postForm(fmt.Sprintf("/posts/%d/comments", post.ID), url.Values{
			"content": {"What a great post."},
		})
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/posts/"+post.Slug, resp.Header.Get("Location"))

		var comment models.Comment
		require.NoError(t, s.db.Where("post_id = ?", post.ID).First(&comment).Error)
		assert.Equal(t, commenter.ID, comment.UserID)
		assert.False(t, comment.IsApproved, "comments await approval")

		// Unapproved comments do not show on the page.
		assert.NotContains(t, readBody(t, other.get("/posts/"+post.Slug)), "What a great post.")
	})

	t.Run("short comment flashes an error and stores nothing", func(t *testing.T) {
		resp := other.postForm(fmt.Sprintf("/posts/%d/comments", post.ID), url.Values{
			"content": {"hi"},
		})
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/posts/"+post.Slug, resp.Header.Get("Location"))

		body := readBody(t, other.get("/posts/" + post.Slug))
		assert.Contains(t, body, "comment must be at least 5 characters")

		var count int64
		require.NoError(t, s.db.Model(&models.Comment{}).
			Where("post_id = ? AND content = ?", post.ID, "hi").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("comment on a missing post is a 404", func(t *testing.T) {
		resp := other.postForm("/posts/99999/comments", url.Values{
			"content": {"long enough comment"},
		})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteComment(t *testing.T) {
	t.Parallel()

	s, app := newTestServer(t)
	author := registerUser(t, s, "author")
	commenter := registerUser(t, s, "commenter")
	stranger := registerUser(t, s, "stranger")

	b := newBrowser(t, app)
	login(t, b, author.Email)
	post := publishPost(t, b, s, "Moderated Discussion")

	newComment := func(content string) *models.Comment {
		comment := &models.Comment{Content: content, UserID: commenter.ID, PostID: post.ID}
		require.NoError(t, s.db.Create(comment).Error)
		return comment
	}

	t.Run("stranger gets a flash, not an error page", func(t *testing.T) {
		comment := newComment("a comment to protect")

		other := newBrowser(t, app)
		login(t, other, stranger.Email)
		resp := other.postForm(fmt.Sprintf("/comments/%d", comment.ID), url.Values{"_method": {"DELETE"}})

		// Soft failure: redirect back with an error flash.
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/posts/"+post.Slug, resp.Header.Get("Location"))
		assert.Contains(t, readBody(t, other.get("/posts/"+post.Slug)),
			"You are not authorized to delete this comment.")

		var count int64
		require.NoError(t, s.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count, "the comment survives")
	})

	t.Run("comment author can delete", func(t *testing.T) {
		comment := newComment("my own words")

		other := newBrowser(t, app)
		login(t, other, commenter.Email)
		resp := other.postForm(fmt.Sprintf("/comments/%d", comment.ID), url.Values{"_method": {"DELETE"}})
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

		var count int64
		require.NoError(t, s.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("post author can moderate", func(t *testing.T) {
		comment := newComment("off topic noise")

		resp := b.postForm(fmt.Sprintf("/comments/%d", comment.ID), url.Values{"_method": {"DELETE"}})
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

		var count int64
		require.NoError(t, s.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
