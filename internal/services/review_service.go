package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/models"
	apperrors "github.com/managerate/managerate/pkg/errors"
	"github.com/managerate/managerate/pkg/metrics"
)

const (
	minTextReviewLength = 50
	maxTextReviewLength = 2000

	defaultReviewPageSize = 20
	maxReviewPageSize     = 100
)

// ErrDuplicateReview signals a second review for the same (user, manager) pair.
var ErrDuplicateReview = apperrors.NewConflict("You have already reviewed this manager")

// CreateReviewInput describes a review submission.
type CreateReviewInput struct {
	UserID    string
	ManagerID string

	OverallRating   int
	Communication   int
	Fairness        int
	GrowthSupport   int
	WorkLifeBalance int

	TextReview     string
	IsAnonymous    *bool
	WouldWorkAgain string
}

// ReviewWithReviewer is a review annotated with its author's email. The email
// is nil for anonymous reviews.
type ReviewWithReviewer struct {
	models.Review
	ReviewerEmail *string `json:"reviewer_email"`
}

// ReviewWithManager is a review annotated with the reviewed manager's identity,
// as shown on the user dashboard.
type ReviewWithManager struct {
	models.Review
	ManagerName    string `json:"manager_name"`
	ManagerCompany string `json:"manager_company"`
}

// ReviewService owns review submission and listing.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(db *gorm.DB) (*ReviewService, error) {
	if db == nil {
		return nil, errors.New("review service: db is required")
	}
	return &ReviewService{db: db}, nil
}

// Create submits a review. At most one review per (user, manager) pair is
// allowed; duplicates surface as a conflict via the database unique index.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	ctx = ensureContext(ctx)

	if err := validateReviewInput(&input); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	var manager models.Manager
	err := s.db.WithContext(ctx).Select("id").First(&manager, "id = ?", input.ManagerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ReviewSubmissions.WithLabelValues("rejected").Inc()
			return nil, ErrManagerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to fetch manager")
	}

	anonymous := true
	if input.IsAnonymous != nil {
		anonymous = *input.IsAnonymous
	}

	review := models.Review{
		UserID:          input.UserID,
		ManagerID:       input.ManagerID,
		OverallRating:   input.OverallRating,
		Communication:   input.Communication,
		Fairness:        input.Fairness,
		GrowthSupport:   input.GrowthSupport,
		WorkLifeBalance: input.WorkLifeBalance,
		TextReview:      strings.TrimSpace(input.TextReview),
		IsAnonymous:     anonymous,
		WouldWorkAgain:  input.WouldWorkAgain,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if isUniqueConstraintError(err) {
			metrics.ReviewSubmissions.WithLabelValues("conflict").Inc()
			return nil, ErrDuplicateReview
		}
		return nil, apperrors.Wrap(err, "failed to create review")
	}

	metrics.ReviewSubmissions.WithLabelValues("created").Inc()
	return &review, nil
}

// ListByManager pages through a manager's reviews, newest first. Author emails
// are withheld for anonymous reviews.
func (s *ReviewService) ListByManager(ctx context.Context, managerID string, limit, offset int) ([]ReviewWithReviewer, int64, error) {
	ctx = ensureContext(ctx)

	limit, offset = normalisePagination(limit, offset, defaultReviewPageSize, maxReviewPageSize)

	var manager models.Manager
	err := s.db.WithContext(ctx).Select("id").First(&manager, "id = ?", managerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrManagerNotFound
		}
		return nil, 0, apperrors.Wrap(err, "failed to fetch manager")
	}

	var total int64
	err = s.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("manager_id = ?", managerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count reviews")
	}

	reviews := make([]ReviewWithReviewer, 0)
	err = s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("reviews.*, users.email AS reviewer_email").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.manager_id = ?", managerID).
		Order("reviews.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list reviews")
	}

	for i := range reviews {
		if reviews[i].IsAnonymous {
			reviews[i].ReviewerEmail = nil
		}
	}
	return reviews, total, nil
}

// ListByUser lists a user's own reviews, newest first, with the reviewed
// manager's name and company joined in.
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]ReviewWithManager, error) {
	ctx = ensureContext(ctx)

	reviews := make([]ReviewWithManager, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("reviews.*, managers.name AS manager_name, managers.company AS manager_company").
		Joins("JOIN managers ON managers.id = reviews.manager_id").
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user reviews")
	}

	return reviews, nil
}

func validateReviewInput(input *CreateReviewInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return apperrors.NewBadRequest("user id is required")
	}
	if strings.TrimSpace(input.ManagerID) == "" {
		return apperrors.NewBadRequest("manager id is required")
	}

	for _, rating := range []int{
		input.OverallRating,
		input.Communication,
		input.Fairness,
		input.GrowthSupport,
		input.WorkLifeBalance,
	} {
		if rating < 1 || rating > 5 {
			return apperrors.NewBadRequest("ratings must be between 1 and 5")
		}
	}

	switch input.WouldWorkAgain {
	case models.WouldWorkAgainYes, models.WouldWorkAgainNo, models.WouldWorkAgainMaybe:
	default:
		return apperrors.NewBadRequest("would_work_again must be yes, no, or maybe")
	}

	if text := strings.TrimSpace(input.TextReview); text != "" {
		// Bounds are in characters, matching the rune-based handler validation.
		if length := utf8.RuneCountInString(text); length < minTextReviewLength || length > maxTextReviewLength {
			return apperrors.NewBadRequest("text review must be between 50 and 2000 characters")
		}
	}

	return nil
}
