package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func noUser(_ context.Context, _ string) (*models.User, error) { return nil, nil }

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("hashes the password and stores the user", func(t *testing.T) {
		t.Parallel()

		var created *models.User
		users := &stubUserRepo{
			getByEmailFn:    noUser,
			getByUsernameFn: noUser,
			createFn: func(_ context.Context, u *models.User) error {
				created = u
				u.ID = 1
				return nil
			},
		}
		svc := NewUserService(users)

		user, err := svc.Register(context.Background(), RegisterInput{
			Username: "writer", Email: "writer@example.com", Password: "password12",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, "password12", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password12")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		users := &stubUserRepo{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: 1}, nil
			},
		}
		svc := NewUserService(users)

		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "writer", Email: "taken@example.com", Password: "password12",
		})
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()

		users := &stubUserRepo{
			getByEmailFn: noUser,
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: 1}, nil
			},
		}
		svc := NewUserService(users)

		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "taken", Email: "writer@example.com", Password: "password12",
		})
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("invalid fields never reach the repository", func(t *testing.T) {
		t.Parallel()

		svc := NewUserService(&stubUserRepo{})
		tests := []RegisterInput{
			{Username: "x", Email: "writer@example.com", Password: "password12"},
			{Username: "writer", Email: "not-an-email", Password: "password12"},
			{Username: "writer", Email: "writer@example.com", Password: "short1"},
		}
		for _, input := range tests {
			_, err := svc.Register(context.Background(), input)
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation))
		}
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("password12"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 1, Email: "writer@example.com", Password: string(hash)}

	users := &stubUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, nil
		},
	}
	svc := NewUserService(users)

	t.Run("correct credentials", func(t *testing.T) {
		t.Parallel()
		user, err := svc.Authenticate(context.Background(), "writer@example.com", "password12")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Authenticate(context.Background(), "writer@example.com", "wrongpass1")
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "password12")
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})
}
