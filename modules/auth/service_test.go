package auth

import (
	"context"
	"strings"
	"testing"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	return NewAuthService(
		NewUserRepository(db),
		NewPasswordHasher(),
		NewJWTManager(testJWTConfig()),
	)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	t.Run("registers a user", func(t *testing.T) {
		user, err := svc.Register(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice@example.com", "password123")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Register(ctx, "not-an-email", "password123")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("overlong password", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", strings.Repeat("p", 73))
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	_, err := svc.Register(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	t.Run("valid credentials yield a token pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.Positive(t, pair.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	user, err := svc.Register(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	t.Run("access token resolves the caller", func(t *testing.T) {
		claims, err := svc.ValidateToken(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("refresh issues a new pair", func(t *testing.T) {
		fresh, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, fresh.AccessToken)

		claims, err := svc.ValidateToken(ctx, fresh.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, "garbage")
		assert.Error(t, err)
	})
}
