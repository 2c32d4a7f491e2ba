package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/models"
	apperrors "github.com/managerate/managerate/pkg/errors"
)

const (
	// trendingWindow is the recency window a review must fall in to count
	// towards a manager's trending rank.
	trendingWindow = 30 * 24 * time.Hour

	defaultTrendingLimit = 5
	maxTrendingLimit     = 100
)

// ErrManagerNotFound indicates the requested manager does not exist.
var ErrManagerNotFound = apperrors.NewNotFound("Manager not found")

// CreateManagerInput describes the fields accepted when creating a manager profile.
type CreateManagerInput struct {
	Name       string
	Company    string
	Department string
	Title      string
}

// ManagerStats carries the aggregates computed over a manager's reviews.
// Averages are nil when the manager has no reviews yet.
type ManagerStats struct {
	ReviewCount        int64    `json:"review_count"`
	AvgRating          *float64 `json:"avg_rating"`
	AvgCommunication   *float64 `json:"avg_communication"`
	AvgFairness        *float64 `json:"avg_fairness"`
	AvgGrowthSupport   *float64 `json:"avg_growth_support"`
	AvgWorkLifeBalance *float64 `json:"avg_work_life_balance"`
	VerifiedCount      int64    `json:"verified_count"`

	WouldWorkAgainYes   int64 `json:"would_work_again_yes"`
	WouldWorkAgainNo    int64 `json:"would_work_again_no"`
	WouldWorkAgainMaybe int64 `json:"would_work_again_maybe"`
}

// ManagerDetail is a manager profile together with its review aggregates.
type ManagerDetail struct {
	models.Manager
	Stats ManagerStats `json:"stats"`
}

// ManagerSummary annotates a manager row with its lifetime review count and
// average overall rating, as returned by search listings.
type ManagerSummary struct {
	models.Manager
	ReviewCount int64    `json:"review_count"`
	AvgRating   *float64 `json:"avg_rating"`
}

// TrendingManager is a manager ranked by review activity inside the trending
// window, annotated like a search result.
type TrendingManager struct {
	models.Manager
	ReviewCount int64    `json:"review_count"`
	AvgRating   *float64 `json:"avg_rating"`
}

// ManagerOption customises the ManagerService.
type ManagerOption func(*ManagerService)

// WithManagerClock injects a custom time source.
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(s *ManagerService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ManagerService owns manager profiles and the aggregation query layer above reviews.
type ManagerService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewManagerService constructs a ManagerService instance.
func NewManagerService(db *gorm.DB, opts ...ManagerOption) (*ManagerService, error) {
	if db == nil {
		return nil, errors.New("manager service: db is required")
	}

	service := &ManagerService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Create registers a new manager profile. Profiles are append-only.
func (s *ManagerService) Create(ctx context.Context, input CreateManagerInput) (*models.Manager, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	company := strings.TrimSpace(input.Company)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if company == "" {
		return nil, apperrors.NewBadRequest("company is required")
	}

	manager := models.Manager{
		Name:       name,
		Company:    company,
		Department: strings.TrimSpace(input.Department),
		Title:      strings.TrimSpace(input.Title),
	}
	if err := s.db.WithContext(ctx).Create(&manager).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create manager")
	}

	return &manager, nil
}

// GetByID fetches a manager together with its review aggregates.
func (s *ManagerService) GetByID(ctx context.Context, id string) (*ManagerDetail, error) {
	ctx = ensureContext(ctx)

	var manager models.Manager
	err := s.db.WithContext(ctx).First(&manager, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to fetch manager")
	}

	var agg struct {
		ReviewCount        int64
		AvgRating          *float64
		AvgCommunication   *float64
		AvgFairness        *float64
		AvgGrowthSupport   *float64
		AvgWorkLifeBalance *float64
		VerifiedCount      int64
		YesCount           int64
		NoCount            int64
		MaybeCount         int64
	}
	err = s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select(`COUNT(*) AS review_count,
			AVG(overall_rating) AS avg_rating,
			AVG(communication) AS avg_communication,
			AVG(fairness) AS avg_fairness,
			AVG(growth_support) AS avg_growth_support,
			AVG(work_life_balance) AS avg_work_life_balance,
			SUM(CASE WHEN is_verified THEN 1 ELSE 0 END) AS verified_count,
			SUM(CASE WHEN would_work_again = 'yes' THEN 1 ELSE 0 END) AS yes_count,
			SUM(CASE WHEN would_work_again = 'no' THEN 1 ELSE 0 END) AS no_count,
			SUM(CASE WHEN would_work_again = 'maybe' THEN 1 ELSE 0 END) AS maybe_count`).
		Where("manager_id = ?", id).
		Scan(&agg).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to aggregate reviews")
	}

	detail := &ManagerDetail{
		Manager: manager,
		Stats: ManagerStats{
			ReviewCount:         agg.ReviewCount,
			AvgRating:           roundRating(agg.AvgRating),
			AvgCommunication:    roundRating(agg.AvgCommunication),
			AvgFairness:         roundRating(agg.AvgFairness),
			AvgGrowthSupport:    roundRating(agg.AvgGrowthSupport),
			AvgWorkLifeBalance:  roundRating(agg.AvgWorkLifeBalance),
			VerifiedCount:       agg.VerifiedCount,
			WouldWorkAgainYes:   agg.YesCount,
			WouldWorkAgainNo:    agg.NoCount,
			WouldWorkAgainMaybe: agg.MaybeCount,
		},
	}
	return detail, nil
}

// Search lists managers matching an optional case-insensitive name/company
// substring and an optional exact company, most reviewed first.
func (s *ManagerService) Search(ctx context.Context, query, company string) ([]ManagerSummary, error) {
	ctx = ensureContext(ctx)

	tx := s.db.WithContext(ctx).
		Model(&models.Manager{}).
		Select("managers.*, COUNT(reviews.id) AS review_count, AVG(reviews.overall_rating) AS avg_rating").
		Joins("LEFT JOIN reviews ON reviews.manager_id = managers.id").
		Group("managers.id")

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(managers.name) LIKE ? OR LOWER(managers.company) LIKE ?", pattern, pattern)
	}
	if c := strings.TrimSpace(company); c != "" {
		tx = tx.Where("managers.company = ?", c)
	}

	results := make([]ManagerSummary, 0)
	err := tx.Order("review_count DESC, avg_rating DESC, managers.created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search managers")
	}

	for i := range results {
		results[i].AvgRating = roundRating(results[i].AvgRating)
	}
	return results, nil
}

// Trending lists managers with at least one review inside the trending window,
// ranked by recent review count.
func (s *ManagerService) Trending(ctx context.Context, limit int) ([]TrendingManager, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	cutoff := s.now().Add(-trendingWindow)

	results := make([]TrendingManager, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Manager{}).
		Select("managers.*, COUNT(reviews.id) AS review_count, AVG(reviews.overall_rating) AS avg_rating").
		Joins("JOIN reviews ON reviews.manager_id = managers.id AND reviews.created_at >= ?", cutoff).
		Group("managers.id").
		Order("review_count DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trending managers")
	}

	for i := range results {
		results[i].AvgRating = roundRating(results[i].AvgRating)
	}
	return results, nil
}

// Companies lists the distinct companies represented by manager profiles.
func (s *ManagerService) Companies(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)

	companies := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Manager{}).
		Distinct("company").
		Order("company ASC").
		Pluck("company", &companies).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list companies")
	}

	return companies, nil
}

// roundRating rounds an average to one decimal place, half away from zero.
func roundRating(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := math.Round(*v*10) / 10
	return &rounded
}
