package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/models"
	"github.com/managerate/managerate/pkg/crypto"
	apperrors "github.com/managerate/managerate/pkg/errors"
	"github.com/managerate/managerate/pkg/logger"
	"github.com/managerate/managerate/pkg/mail"
	"github.com/managerate/managerate/pkg/metrics"
)

// defaultVerificationExpiry bounds how long an issued code stays redeemable.
const defaultVerificationExpiry = 24 * time.Hour

// RequestVerificationInput describes a request for a new verification code.
type RequestVerificationInput struct {
	UserID    string
	ManagerID string
	WorkEmail string

	EmploymentStart *time.Time
	EmploymentEnd   *time.Time
}

// VerificationWithManager is a verification attempt annotated with the
// manager's identity, as shown on the user dashboard.
type VerificationWithManager struct {
	models.Verification
	ManagerName    string `json:"manager_name"`
	ManagerCompany string `json:"manager_company"`
}

// VerificationOption customises the VerificationService.
type VerificationOption func(*VerificationService)

// WithVerificationExpiry overrides the code lifetime.
func WithVerificationExpiry(d time.Duration) VerificationOption {
	return func(s *VerificationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationService manages employment verification codes: issuing them,
// confirming them, and flipping the verified badge on the pair's review.
type VerificationService struct {
	db     *gorm.DB
	mailer mail.Mailer
	expiry time.Duration
	now    func() time.Time
}

// NewVerificationService constructs a verification service with the provided dependencies.
func NewVerificationService(db *gorm.DB, mailer mail.Mailer, opts ...VerificationOption) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}

	service := &VerificationService{
		db:     db,
		mailer: mailer,
		expiry: defaultVerificationExpiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Request issues a fresh 6-digit code for the (user, manager) pair and emails
// it to the supplied work address. Mail delivery failure is logged but never
// fails the request; the code stays redeemable either way. Multiple
// unconfirmed codes for the same pair may coexist.
func (s *VerificationService) Request(ctx context.Context, input RequestVerificationInput) (*models.Verification, error) {
	ctx = ensureContext(ctx)

	workEmail := strings.ToLower(strings.TrimSpace(input.WorkEmail))
	if workEmail == "" {
		return nil, apperrors.NewBadRequest("work email is required")
	}

	var manager models.Manager
	err := s.db.WithContext(ctx).First(&manager, "id = ?", input.ManagerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to fetch manager")
	}

	code, err := crypto.VerificationCode()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate verification code")
	}

	verification := models.Verification{
		UserID:          input.UserID,
		ManagerID:       input.ManagerID,
		WorkEmail:       workEmail,
		Code:            code,
		ExpiresAt:       s.now().Add(s.expiry),
		EmploymentStart: input.EmploymentStart,
		EmploymentEnd:   input.EmploymentEnd,
	}
	if err := s.db.WithContext(ctx).Create(&verification).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create verification")
	}

	metrics.VerificationRequests.Inc()

	if s.mailer != nil {
		msg := mail.Message{
			To:      []string{workEmail},
			Subject: "Your employment verification code",
			Body: fmt.Sprintf(
				"Your verification code for %s (%s) is: %s\n\nThe code expires in %d hours.\n",
				manager.Name, manager.Company, code, int(s.expiry.Hours()),
			),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			logger.WithModule("verification").Warn("failed to send verification email",
				zap.String("verification_id", verification.ID),
				zap.Error(err))
		}
	}

	return &verification, nil
}

// Confirm redeems a code for the (user, manager) pair. The redemption is a
// single conditional UPDATE so racing confirms of the same code cannot both
// succeed. On success the pair's review, if one exists already, is marked
// verified; a review submitted later stays unverified.
func (s *VerificationService) Confirm(ctx context.Context, userID, managerID, code string) error {
	ctx = ensureContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		metrics.VerificationOutcomes.WithLabelValues("invalid_code").Inc()
		return apperrors.ErrInvalidCode
	}

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Verification{}).
		Where("user_id = ? AND manager_id = ? AND code = ?", userID, managerID, code).
		Where("verified_at IS NULL AND expires_at > ?", now).
		Update("verified_at", now)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to confirm verification")
	}
	if result.RowsAffected == 0 {
		metrics.VerificationOutcomes.WithLabelValues("invalid_code").Inc()
		return apperrors.ErrInvalidCode
	}

	err := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND manager_id = ?", userID, managerID).
		Update("is_verified", true).Error
	if err != nil {
		return apperrors.Wrap(err, "failed to mark review verified")
	}

	metrics.VerificationOutcomes.WithLabelValues("confirmed").Inc()
	return nil
}

// ListByUser lists a user's verification attempts, newest first, with the
// manager's identity joined in.
func (s *VerificationService) ListByUser(ctx context.Context, userID string) ([]VerificationWithManager, error) {
	ctx = ensureContext(ctx)

	verifications := make([]VerificationWithManager, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Verification{}).
		Select("verifications.*, managers.name AS manager_name, managers.company AS manager_company").
		Joins("JOIN managers ON managers.id = verifications.manager_id").
		Where("verifications.user_id = ?", userID).
		Order("verifications.created_at DESC").
		Find(&verifications).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verifications")
	}

	return verifications, nil
}

// PurgeExpired deletes expired codes that were never confirmed. Confirmed
// rows are kept as the user's verification history.
func (s *VerificationService) PurgeExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("verified_at IS NULL AND expires_at <= ?", s.now()).
		Delete(&models.Verification{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "failed to purge expired verifications")
	}

	return result.RowsAffected, nil
}
