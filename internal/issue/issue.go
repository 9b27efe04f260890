package issue

import (
	"time"

	issueDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/issue"
)

// Scope controls cross-department visibility of an issue.
type Scope string

const (
	ScopeDepartment   Scope = "DEPARTMENT"
	ScopeOrganization Scope = "ORGANIZATION"
)

func Scopes() []string {
	return []string{string(ScopeDepartment), string(ScopeOrganization)}
}

// StatusFilter selects which resolution states a listing returns.
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterResolved   StatusFilter = "resolved"
	FilterUnresolved StatusFilter = "unresolved"
)

func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterResolved, FilterUnresolved:
		return true
	}
	return false
}

type Comment struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Solution struct {
	ID        int64     `json:"id"`
	PostedBy  int64     `json:"posted_by"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageRef is an image already registered by its uploader and linked to this
// issue in the second phase of creation.
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Issue struct {
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
	Upvoters        []int64    `json:"upvoters,omitempty"`
	Reporters       []int64    `json:"reporters,omitempty"`
	IsResolved      bool       `json:"is_resolved"`
	IsInappropriate bool       `json:"is_inappropriate"`
	IsEdited        bool       `json:"is_edited"`
	IsDeleted       bool       `json:"is_deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (i *Issue) HasUpvoted(userID int64) bool {
	for _, id := range i.Upvoters {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleUpvote flips the user's membership in the upvoter set and adjusts the
// count in the same step, keeping upvotes == |upvoters|. Returns the new
// upvoted state for the user.
func (i *Issue) ToggleUpvote(userID int64) bool {
	for idx, id := range i.Upvoters {
		if id == userID {
			i.Upvoters = append(i.Upvoters[:idx], i.Upvoters[idx+1:]...)
			i.Upvotes--
			return false
		}
	}
	i.Upvoters = append(i.Upvoters, userID)
	i.Upvotes++
	return true
}

func (i *Issue) HasReported(userID int64) bool {
	for _, id := range i.Reporters {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleReport flips the user's membership in the reporter set and returns
// the new reported state. The inappropriate flag is rederived afterwards from
// the set size, never from the flip itself.
func (i *Issue) ToggleReport(userID int64) bool {
	for idx, id := range i.Reporters {
		if id == userID {
			i.Reporters = append(i.Reporters[:idx], i.Reporters[idx+1:]...)
			return false
		}
	}
	i.Reporters = append(i.Reporters, userID)
	return true
}

// RecomputeInappropriate rederives the suppression flag from the current
// reporter count.
func (i *Issue) RecomputeInappropriate(threshold int) {
	i.IsInappropriate = len(i.Reporters) >= threshold
}

func (i *Issue) AddComment(authorID int64, body string) {
	i.Comments = append(i.Comments, Comment{
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func (i *Issue) AddSolution(postedBy int64, body string) {
	i.Solutions = append(i.Solutions, Solution{
		PostedBy:  postedBy,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func ToDataModel(i *Issue) *issueDatamodel.Issue {
	row := &issueDatamodel.Issue{
		ID:              i.ID,
		Title:           i.Title,
		Description:     i.Description,
		Section:         i.Section,
		Scope:           string(i.Scope),
		Department:      i.Department,
		CreatedBy:       i.CreatedBy,
		Upvotes:         i.Upvotes,
		IsResolved:      i.IsResolved,
		IsInappropriate: i.IsInappropriate,
		IsEdited:        i.IsEdited,
		IsDeleted:       i.IsDeleted,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	for _, c := range i.Comments {
		row.Comments = append(row.Comments, issueDatamodel.Comment{
			ID:        c.ID,
			IssueID:   i.ID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, s := range i.Solutions {
		row.Solutions = append(row.Solutions, issueDatamodel.Solution{
			ID:        s.ID,
			IssueID:   i.ID,
			PostedBy:  s.PostedBy,
			Body:      s.Body,
			CreatedAt: s.CreatedAt,
		})
	}
	for _, u := range i.Upvoters {
		row.Upvoters = append(row.Upvoters, issueDatamodel.Upvoter{IssueID: i.ID, UserID: u})
	}
	for _, r := range i.Reporters {
		row.Reporters = append(row.Reporters, issueDatamodel.Reporter{IssueID: i.ID, UserID: r})
	}
	return row
}

func FromDataModel(row *issueDatamodel.Issue) *Issue {
	i := &Issue{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description,
		Section:         row.Section,
		Scope:           Scope(row.Scope),
		Department:      row.Department,
		CreatedBy:       row.CreatedBy,
		Upvotes:         row.Upvotes,
		IsResolved:      row.IsResolved,
		IsInappropriate: row.IsInappropriate,
		IsEdited:        row.IsEdited,
		IsDeleted:       row.IsDeleted,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	for _, c := range row.Comments {
		i.Comments = append(i.Comments, Comment{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, s := range row.Solutions {
		i.Solutions = append(i.Solutions, Solution{
			ID:        s.ID,
			PostedBy:  s.PostedBy,
			Body:      s.Body,
			CreatedAt: s.CreatedAt,
		})
	}
	for _, u := range row.Upvoters {
		i.Upvoters = append(i.Upvoters, u.UserID)
	}
	for _, r := range row.Reporters {
		i.Reporters = append(i.Reporters, r.UserID)
	}
	return i
}

func FromDataModelSlice(rows []*issueDatamodel.Issue) []*Issue {
	result := make([]*Issue, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
