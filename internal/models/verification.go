package models

import "time"

// Verification is one employment-verification attempt for a (user, manager)
// pair. Multiple rows per pair may coexist (retries); a row is consumable
// while VerifiedAt is null and ExpiresAt is in the future.
type Verification struct {
	BaseModel

	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	ManagerID string `gorm:"type:uuid;not null;index" json:"manager_id"`

	WorkEmail string `gorm:"not null" json:"work_email"`
	Code      string `gorm:"not null;index" json:"-"`

	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	EmploymentStart *time.Time `json:"employment_start,omitempty"`
	EmploymentEnd   *time.Time `json:"employment_end,omitempty"`
}
