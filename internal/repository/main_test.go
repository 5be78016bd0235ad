package repository

import (
	"testing"

	"inkwell/internal/testutil"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}
