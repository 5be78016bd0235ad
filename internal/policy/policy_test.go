package policy

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanModifyPost(t *testing.T) {
	t.Parallel()

	post := &models.Post{ID: 1, UserID: 7}

	assert.True(t, CanModifyPost(7, post))
	assert.False(t, CanModifyPost(8, post))
	assert.False(t, CanModifyPost(0, post))
	assert.False(t, CanModifyPost(7, nil))
}

func TestCanDeleteComment(t *testing.T) {
	t.Parallel()

	post := &models.Post{ID: 1, UserID: 7}
	comment := &models.Comment{ID: 3, UserID: 5, PostID: 1}

	tests := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"comment author", 5, true},
		{"post author", 7, true},
		{"unrelated user", 9, false},
		{"zero user", 0, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CanDeleteComment(tc.userID, comment, post))
		})
	}

	assert.False(t, CanDeleteComment(5, nil, post))
	assert.False(t, CanDeleteComment(5, comment, nil))
}
