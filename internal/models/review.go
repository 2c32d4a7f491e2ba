package models

// WouldWorkAgain enumerates the three-valued sentiment captured per review,
// distinct from the numeric rating dimensions.
const (
	WouldWorkAgainYes   = "yes"
	WouldWorkAgainNo    = "no"
	WouldWorkAgainMaybe = "maybe"
)

// Review holds a single user's rating of a single manager. The composite
// unique index enforces at most one review per (user, manager) pair at the
// database level so duplicate submissions surface as constraint violations
// rather than racing read-then-write checks.
type Review struct {
	BaseModel

	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_manager" json:"user_id"`
	ManagerID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_manager;index" json:"manager_id"`

	OverallRating   int `gorm:"not null" json:"overall_rating"`
	Communication   int `gorm:"not null" json:"communication"`
	Fairness        int `gorm:"not null" json:"fairness"`
	GrowthSupport   int `gorm:"not null" json:"growth_support"`
	WorkLifeBalance int `gorm:"not null" json:"work_life_balance"`

	TextReview string `json:"text_review,omitempty"`
	// No gorm default on purpose: a default tag makes gorm drop the zero
	// value from inserts, so an explicit "not anonymous" would be lost.
	IsAnonymous    bool   `gorm:"not null" json:"is_anonymous"`
	WouldWorkAgain string `gorm:"not null" json:"would_work_again"`
	IsVerified     bool   `gorm:"not null;default:false" json:"is_verified"`
}
