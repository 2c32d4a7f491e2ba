package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/models"
	"github.com/managerate/managerate/pkg/crypto"
	apperrors "github.com/managerate/managerate/pkg/errors"
	"github.com/managerate/managerate/pkg/metrics"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = apperrors.NewNotFound("User not found")

// DashboardStats summarises a user's reviewing activity.
type DashboardStats struct {
	TotalReviews    int64 `json:"total_reviews"`
	VerifiedReviews int64 `json:"verified_reviews"`
}

// Dashboard bundles everything the account page needs in one payload.
type Dashboard struct {
	User          *models.User              `json:"user"`
	Reviews       []ReviewWithManager       `json:"reviews"`
	Verifications []VerificationWithManager `json:"verifications"`
	Stats         DashboardStats            `json:"stats"`
}

// UserService manages account registration and authentication.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// SignUp registers a new account with a bcrypt-hashed password.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if len(password) < 6 {
		return nil, apperrors.NewBadRequest("password must be at least 6 characters")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := models.User{Email: email, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("Email already registered")
		}
		return nil, apperrors.Wrap(err, "failed to create user")
	}

	return &user, nil
}

// Authenticate verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "failed to look up user")
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// GetByID fetches a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to fetch user")
	}

	return &user, nil
}

// Dashboard assembles the user's reviews, verification attempts, and activity stats.
func (s *UserService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewWithManager, 0)
	err = s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("reviews.*, managers.name AS manager_name, managers.company AS manager_company").
		Joins("JOIN managers ON managers.id = reviews.manager_id").
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user reviews")
	}

	verifications := make([]VerificationWithManager, 0)
	err = s.db.WithContext(ctx).
		Model(&models.Verification{}).
		Select("verifications.*, managers.name AS manager_name, managers.company AS manager_company").
		Joins("JOIN managers ON managers.id = verifications.manager_id").
		Where("verifications.user_id = ?", userID).
		Order("verifications.created_at DESC").
		Find(&verifications).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user verifications")
	}

	stats := DashboardStats{TotalReviews: int64(len(reviews))}
	for _, review := range reviews {
		if review.IsVerified {
			stats.VerifiedReviews++
		}
	}

	return &Dashboard{
		User:          user,
		Reviews:       reviews,
		Verifications: verifications,
		Stats:         stats,
	}, nil
}
