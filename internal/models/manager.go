package models

// Manager is the subject being rated. Rows are shared between users and
// append-only: once created a profile is never edited or removed.
type Manager struct {
	BaseModel

	Name       string `gorm:"not null;index" json:"name"`
	Company    string `gorm:"not null;index" json:"company"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`

	Reviews []Review `gorm:"foreignKey:ManagerID" json:"-"`
}
