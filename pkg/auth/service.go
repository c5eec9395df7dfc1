package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	cost   int
}

func NewService(db *gorm.DB, tokens *TokenManager) *Service {
	return &Service{db: db, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, email, password, false)
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}
	return s.tokens.Issue(user)
}

func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EnsureStaff creates the staff account unless the email is already taken.
func (s *Service) EnsureStaff(ctx context.Context, email, password string, log *zap.Logger) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", normalizeEmail(email)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := s.createUser(ctx, email, password, true); err != nil {
		return err
	}
	log.Info("staff user seeded", zap.String("email", normalizeEmail(email)))
	return nil
}

func (s *Service) createUser(ctx context.Context, email, password string, staff bool) (*models.User, error) {
	email = normalizeEmail(email)

	var errs domain.ValidationErrors
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "Enter a valid email address."})
	}
	if len(password) < minPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "Ensure this field has at least 8 characters."})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	user := models.User{Email: email, PasswordHash: string(hash), IsStaff: staff}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Invalid("email", "user with this email already exists.")
		}
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
