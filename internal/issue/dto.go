package issue

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/core/common/validation"
)

type CreateIssueDTO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Section     string   `json:"section"`
	Scope       string   `json:"scope"`
	Images      []string `json:"images,omitempty"`
}

func (dto CreateIssueDTO) Validate() *errors.AppError {
	if err := validation.ValidateIssueTitle(dto.Title); err != nil {
		return err
	}
	if err := validation.ValidateIssueDescription(dto.Description); err != nil {
		return err
	}
	if err := validation.ValidateSection(dto.Section); err != nil {
		return err
	}
	if err := validation.ValidateScope(dto.Scope, Scopes()); err != nil {
		return err
	}
	return validation.ValidateImageRefs(dto.Images)
}

// UpdateIssueDTO carries the creator's edits; at least one field must be
// present and non-blank.
type UpdateIssueDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (dto UpdateIssueDTO) Validate() *errors.AppError {
	if dto.Title == nil && dto.Description == nil {
		return errors.NewValidationError("at least one of title or description is required", errors.ErrCodeNothingToUpdate)
	}
	if dto.Title != nil {
		if err := validation.ValidateIssueTitle(*dto.Title); err != nil {
			return err
		}
	}
	if dto.Description != nil {
		if err := validation.ValidateIssueDescription(*dto.Description); err != nil {
			return err
		}
	}
	return nil
}

type PostTextDTO struct {
	Body string `json:"body"`
}

func (dto PostTextDTO) Validate() *errors.AppError {
	if strings.TrimSpace(dto.Body) == "" {
		return errors.NewValidationError("body must not be blank", errors.ErrCodeInvalidBody)
	}
	return nil
}

// IssueView is the actor-facing projection. Reporter and upvoter identities
// only appear in the full-detail view.
type IssueView struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Section         string     `json:"section"`
	Scope           Scope      `json:"scope"`
	Department      string     `json:"department"`
	CreatedBy       int64      `json:"created_by"`
	Images          []ImageRef `json:"images"`
	Comments        []Comment  `json:"comments"`
	Solutions       []Solution `json:"solutions"`
	Upvotes         int        `json:"upvotes"`
	HasUpvoted      bool       `json:"has_upvoted"`
	HasReported     bool       `json:"has_reported"`
	IsResolved      bool       `json:"is_resolved"`
	IsInappropriate bool       `json:"is_inappropriate"`
	IsEdited        bool       `json:"is_edited"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// full-detail fields
	Upvoters    []int64 `json:"upvoters,omitempty"`
	Reporters   []int64 `json:"reporters,omitempty"`
	ReportCount int     `json:"report_count,omitempty"`
	IsDeleted   *bool   `json:"is_deleted,omitempty"`
}

func NewIssueView(i *Issue, actor Actor) *IssueView {
	view := &IssueView{
		ID:              i.ID,
		Title:           i.Title,
		Description:     i.Description,
		Section:         i.Section,
		Scope:           i.Scope,
		Department:      i.Department,
		CreatedBy:       i.CreatedBy,
		Images:          i.Images,
		Comments:        i.Comments,
		Solutions:       i.Solutions,
		Upvotes:         i.Upvotes,
		HasUpvoted:      i.HasUpvoted(actor.ID),
		HasReported:     i.HasReported(actor.ID),
		IsResolved:      i.IsResolved,
		IsInappropriate: i.IsInappropriate,
		IsEdited:        i.IsEdited,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}

	if SeesFullDetail(actor, i) {
		view.Upvoters = i.Upvoters
		view.Reporters = i.Reporters
		view.ReportCount = len(i.Reporters)
		deleted := i.IsDeleted
		view.IsDeleted = &deleted
	}

	return view
}

func NewIssueViews(issues []*Issue, actor Actor) []*IssueView {
	views := make([]*IssueView, len(issues))
	for idx, i := range issues {
		views[idx] = NewIssueView(i, actor)
	}
	return views
}

// IssuePage is the pagination envelope every listing operation returns.
type IssuePage struct {
	Issues          []*IssueView `json:"issues"`
	Page            int          `json:"page"`
	Limit           int          `json:"limit"`
	HasNextPage     bool         `json:"has_next_page"`
	HasPreviousPage bool         `json:"has_previous_page"`
}
