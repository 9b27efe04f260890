package user

import (
	"time"

	"github.com/frahmantamala/issue-management/internal/auth"
	userDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/user"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Department   string    `json:"department"`
	Violations   []int64   `json:"violations,omitempty"`
	IsDisabled   bool      `json:"is_disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) HasViolation(issueID int64) bool {
	for _, id := range u.Violations {
		if id == issueID {
			return true
		}
	}
	return false
}

// AddViolation records the issue against the user. Idempotent: adding an
// already-recorded issue id is a no-op and returns false.
func (u *User) AddViolation(issueID int64) bool {
	if u.HasViolation(issueID) {
		return false
	}
	u.Violations = append(u.Violations, issueID)
	return true
}

func (u *User) RemoveViolation(issueID int64) bool {
	for i, id := range u.Violations {
		if id == issueID {
			u.Violations = append(u.Violations[:i], u.Violations[i+1:]...)
			return true
		}
	}
	return false
}

// RecomputeDisabled rederives the suspension flag from the current violation
// set, so redundant invocations are self-correcting.
func (u *User) RecomputeDisabled(threshold int) {
	u.IsDisabled = len(u.Violations) >= threshold
}

func ToDataModel(u *User) *userDatamodel.User {
	violations := make([]userDatamodel.Violation, len(u.Violations))
	for i, issueID := range u.Violations {
		violations[i] = userDatamodel.Violation{UserID: u.ID, IssueID: issueID}
	}
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Department:   u.Department,
		IsDisabled:   u.IsDisabled,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Violations:   violations,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	violations := make([]int64, len(u.Violations))
	for i, v := range u.Violations {
		violations[i] = v.IssueID
	}
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         auth.Role(u.Role),
		Department:   u.Department,
		Violations:   violations,
		IsDisabled:   u.IsDisabled,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
