package auth

import (
	"context"
	"testing"

	"airport_service/pkg/database"
	"airport_service/pkg/domain"
	"airport_service/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect test database")
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		panic(err)
	}
	return db
}

func newTestService() *Service {
	s := NewService(setupTestDB(), newTestTokens())
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	user, err := s.Register(ctx, "  Alice@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	raw, err := s.Login(ctx, "ALICE@example.com", "correct-horse")
	require.NoError(t, err)
	claims, err := s.Tokens().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	got, err := s.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = s.User(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	_, err := s.Register(ctx, "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = s.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = s.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		fields   []string
	}{
		{"bad email", "not-an-email", "long-enough", []string{"email"}},
		{"empty email", "", "long-enough", []string{"email"}},
		{"short password", "carol@example.com", "short", []string{"password"}},
		{"both", "nope", "123", []string{"email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.email, tt.password)
			var verrs domain.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			fields := verrs.Fields()
			assert.Len(t, fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.Register(ctx, "dave@example.com", "password1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "DAVE@example.com", "password2")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"user with this email already exists."}, verrs.Fields()["email"])
}

func TestEnsureStaffIsIdempotent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	require.NoError(t, s.EnsureStaff(ctx, "admin@example.com", "admin-password", zap.NewNop()))
	require.NoError(t, s.EnsureStaff(ctx, "admin@example.com", "other-password", zap.NewNop()))

	var users []models.User
	require.NoError(t, s.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsStaff)

	_, err := s.Login(ctx, "admin@example.com", "admin-password")
	assert.NoError(t, err)
}
