package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"not null;default:user"`
	Department   string    `gorm:"not null;index"`
	IsDisabled   bool      `gorm:"column:is_disabled;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`

	Violations []Violation `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// Violation marks the user as the flagged author of one escalated issue.
type Violation struct {
	UserID  int64 `gorm:"column:user_id;primaryKey"`
	IssueID int64 `gorm:"column:issue_id;primaryKey"`
}

func (Violation) TableName() string {
	return "user_violations"
}
