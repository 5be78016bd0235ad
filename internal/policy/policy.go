// Package policy holds the ownership predicates used for authorization
// decisions. The functions are pure; callers decide how a false result maps
// onto an HTTP response.
package policy

import "inkwell/internal/models"

// CanModifyPost reports whether the acting user may edit, update, or delete
// the post. Only the author qualifies.
func CanModifyPost(userID uint, post *models.Post) bool {
	return post != nil && post.UserID == userID
}

// CanDeleteComment reports whether the acting user may delete the comment.
// Both the comment's author and the parent post's author qualify. There is no
// comment editing, so this is the only comment-level permission.
func CanDeleteComment(userID uint, comment *models.Comment, post *models.Post) bool {
	if comment == nil || post == nil {
		return false
	}
	return comment.UserID == userID || post.UserID == userID
}
