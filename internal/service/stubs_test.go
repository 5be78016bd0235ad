package service

import (
	"context"

	"inkwell/internal/models"
)

// Function-field stubs so each test wires only the calls it expects.

type stubPostRepo struct {
	createFn         func(ctx context.Context, post *models.Post) error
	getByIDFn        func(ctx context.Context, id uint) (*models.Post, error)
	getBySlugFn      func(ctx context.Context, slug string) (*models.Post, error)
	listPublishedFn  func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	countPublishedFn func(ctx context.Context) (int64, error)
	updateFn         func(ctx context.Context, post *models.Post) error
	deleteFn         func(ctx context.Context, id uint) error
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubPostRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}

func (s *stubPostRepo) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listPublishedFn(ctx, limit, offset)
}

func (s *stubPostRepo) CountPublished(ctx context.Context) (int64, error) {
	return s.countPublishedFn(ctx)
}

func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}

func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type stubCommentRepo struct {
	createFn              func(ctx context.Context, comment *models.Comment) error
	getByIDFn             func(ctx context.Context, id uint) (*models.Comment, error)
	listApprovedByPostFn  func(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	countApprovedByPostFn func(ctx context.Context, postID uint) (int64, error)
	deleteFn              func(ctx context.Context, id uint) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubCommentRepo) ListApprovedByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listApprovedByPostFn(ctx, postID, limit, offset)
}

func (s *stubCommentRepo) CountApprovedByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countApprovedByPostFn(ctx, postID)
}

func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type stubUserRepo struct {
	createFn        func(ctx context.Context, user *models.User) error
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

type stubImageStore struct {
	saveFn   func(ctx context.Context, upload *ImageUpload) (string, error)
	removeFn func(ctx context.Context, relPath string) error
}

func (s *stubImageStore) Save(ctx context.Context, upload *ImageUpload) (string, error) {
	return s.saveFn(ctx, upload)
}

func (s *stubImageStore) Remove(ctx context.Context, relPath string) error {
	return s.removeFn(ctx, relPath)
}
