package image

import "time"

const (
	StatusPending = "pending"
	StatusLinked  = "linked"
)

// Image is uploaded and owned by a user before any issue exists; linking to an
// issue is a second phase. Status tracks that phase so a crash between the two
// writes leaves detectable pending rows instead of silently orphaned ones.
type Image struct {
	ID        string    `gorm:"primaryKey"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index"`
	IssueID   *int64    `gorm:"column:issue_id;index"`
	URL       string    `gorm:"not null"`
	Filename  string    `gorm:"not null"`
	Status    string    `gorm:"not null;default:pending"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Image) TableName() string {
	return "images"
}
