package models

// User is a registered account. Accounts are identified by email only;
// display identity never appears on anonymous reviews.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Reviews       []Review       `gorm:"foreignKey:UserID" json:"-"`
	Verifications []Verification `gorm:"foreignKey:UserID" json:"-"`
}
