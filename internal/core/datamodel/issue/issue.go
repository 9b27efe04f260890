package issue

import "time"

// Issue is the persistence shape of a reported issue. Collections (comments,
// solutions, upvoter/reporter sets) live in child tables keyed by issue id.
type Issue struct {
	ID              int64     `gorm:"primaryKey"`
	Title           string    `gorm:"not null"`
	Description     string    `gorm:"not null"`
	Section         string    `gorm:"not null"`
	Scope           string    `gorm:"not null;default:DEPARTMENT"`
	Department      string    `gorm:"not null;index"`
	CreatedBy       int64     `gorm:"column:created_by;not null;index"`
	Upvotes         int       `gorm:"not null;default:0"`
	IsResolved      bool      `gorm:"column:is_resolved;not null;default:false"`
	IsInappropriate bool      `gorm:"column:is_inappropriate;not null;default:false"`
	IsEdited        bool      `gorm:"column:is_edited;not null;default:false"`
	IsDeleted       bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;default:now()"`

	Comments  []Comment  `gorm:"foreignKey:IssueID"`
	Solutions []Solution `gorm:"foreignKey:IssueID"`
	Upvoters  []Upvoter  `gorm:"foreignKey:IssueID"`
	Reporters []Reporter `gorm:"foreignKey:IssueID"`
}

func (Issue) TableName() string {
	return "issues"
}

type Comment struct {
	ID        int64     `gorm:"primaryKey"`
	IssueID   int64     `gorm:"column:issue_id;not null;index"`
	AuthorID  int64     `gorm:"column:author_id;not null"`
	Body      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Comment) TableName() string {
	return "issue_comments"
}

type Solution struct {
	ID        int64     `gorm:"primaryKey"`
	IssueID   int64     `gorm:"column:issue_id;not null;index"`
	PostedBy  int64     `gorm:"column:posted_by;not null"`
	Body      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Solution) TableName() string {
	return "issue_solutions"
}

// Upvoter is one membership row of the upvoter set. The (issue_id, user_id)
// pair is unique so a double insert cannot break the upvote count invariant.
type Upvoter struct {
	IssueID int64 `gorm:"column:issue_id;primaryKey"`
	UserID  int64 `gorm:"column:user_id;primaryKey"`
}

func (Upvoter) TableName() string {
	return "issue_upvoters"
}

type Reporter struct {
	IssueID int64 `gorm:"column:issue_id;primaryKey"`
	UserID  int64 `gorm:"column:user_id;primaryKey"`
}

func (Reporter) TableName() string {
	return "issue_reporters"
}
