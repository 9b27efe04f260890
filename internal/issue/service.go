package issue

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/auth"
	"github.com/frahmantamala/issue-management/internal/core/events"
	"github.com/frahmantamala/issue-management/internal/user"
)

// Repository defines the data access methods for issues. Listing methods
// exclude soft-deleted issues; GetByID keeps them addressable for audit.
type Repository interface {
	Create(ctx context.Context, i *Issue) error
	GetByID(ctx context.Context, id int64) (*Issue, error)
	Save(ctx context.Context, i *Issue) error
	// SaveWithAuthor persists the issue and its author in one transaction so
	// report escalation cannot leave the pair half-written.
	SaveWithAuthor(ctx context.Context, i *Issue, author *user.User) error
	ListByDepartment(ctx context.Context, department string, status StatusFilter, limit, offset int) ([]*Issue, error)
	ListAll(ctx context.Context, status StatusFilter, limit, offset int) ([]*Issue, error)
	ListByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]*Issue, error)
	// SearchByPhrase matches title or description. A non-empty department
	// restricts results to that department plus organization-scoped issues;
	// an empty department searches everything.
	SearchByPhrase(ctx context.Context, phrase, department string, limit, offset int) ([]*Issue, error)
}

// UserStore is the violation-bookkeeping view of the user store.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// ImageStore links pre-uploaded images to a freshly created issue.
type ImageStore interface {
	LinkToIssue(ctx context.Context, issueID, ownerID int64, imageIDs []string) ([]ImageRef, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Thresholds are the escalation knobs, injected so tests and deployments can
// tune them independently.
type Thresholds struct {
	IssueReports   int
	UserViolations int
}

const (
	defaultPage  = 1
	defaultLimit = 5
	minLimit     = 5

	lockStripes = 64
)

// Service is the issue moderation and visibility engine.
type Service struct {
	repo       Repository
	users      UserStore
	images     ImageStore
	bus        Publisher
	thresholds Thresholds
	logger     *slog.Logger

	// striped per-issue locks serialize read-modify-save sequences so
	// concurrent toggles cannot lose updates.
	locks [lockStripes]sync.Mutex
}

func NewService(repo Repository, users UserStore, images ImageStore, bus Publisher, thresholds Thresholds, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		images:     images,
		bus:        bus,
		thresholds: thresholds,
		logger:     logger,
	}
}

func (s *Service) lockFor(issueID int64) *sync.Mutex {
	return &s.locks[issueID%lockStripes]
}

func normalizePage(page int) int {
	if page < 1 {
		return defaultPage
	}
	return page
}

func normalizeLimit(limit int) int {
	if limit < minLimit {
		return defaultLimit
	}
	return limit
}

// buildPage implements the over-fetch pagination contract: the store was
// asked for 2*limit rows, the first limit are returned and the surplus only
// signals hasNextPage. The boundary heuristic is part of the contract.
func buildPage(issues []*Issue, actor Actor, page, limit int) *IssuePage {
	hasNext := len(issues) > limit
	if hasNext {
		issues = issues[:limit]
	}
	return &IssuePage{
		Issues:          NewIssueViews(issues, actor),
		Page:            page,
		Limit:           limit,
		HasNextPage:     hasNext,
		HasPreviousPage: page > 1,
	}
}

// ListIssues returns the actor's department slice of the issue stream;
// top-level authorities see every department.
func (s *Service) ListIssues(ctx context.Context, actor Actor, page, limit int, filter StatusFilter) (*IssuePage, error) {
	if !filter.Valid() {
		filter = FilterAll
	}
	page = normalizePage(page)
	limit = normalizeLimit(limit)
	offset := (page - 1) * limit

	var (
		issues []*Issue
		err    error
	)
	if actor.Role == auth.RoleAuthLevelThree {
		issues, err = s.repo.ListAll(ctx, filter, 2*limit, offset)
	} else {
		issues, err = s.repo.ListByDepartment(ctx, actor.Department, filter, 2*limit, offset)
	}
	if err != nil {
		s.logger.Error("failed to list issues", "error", err, "actor_id", actor.ID)
		return nil, internal.NewInternalError("failed to list issues", err)
	}

	return buildPage(issues, actor, page, limit), nil
}

// SearchIssues is deliberately scoped differently from plain listing: besides
// the actor's department it also surfaces organization-scoped issues.
func (s *Service) SearchIssues(ctx context.Context, actor Actor, phrase string, page, limit int) (*IssuePage, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, internal.NewValidationError("search phrase must not be blank", internal.ErrCodeEmptyPhrase)
	}
	page = normalizePage(page)
	limit = normalizeLimit(limit)
	offset := (page - 1) * limit

	department := actor.Department
	if actor.Role == auth.RoleAuthLevelThree {
		department = ""
	}

	issues, err := s.repo.SearchByPhrase(ctx, phrase, department, 2*limit, offset)
	if err != nil {
		s.logger.Error("failed to search issues", "error", err, "actor_id", actor.ID, "phrase", phrase)
		return nil, internal.NewInternalError("failed to search issues", err)
	}

	return buildPage(issues, actor, page, limit), nil
}

// GetIssue returns the issue when the actor is in scope; out-of-scope actors
// get FORBIDDEN, which reveals existence. That is the established contract
// and is kept as-is.
func (s *Service) GetIssue(ctx context.Context, actor Actor, issueID int64) (*IssueView, error) {
	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, i) {
		s.logger.Warn("issue fetch denied", "issue_id", issueID, "actor_id", actor.ID, "actor_department", actor.Department)
		return nil, internal.ErrIssueOutOfScope
	}
	return NewIssueView(i, actor), nil
}

func (s *Service) ListIssuesByUser(ctx context.Context, actor Actor, userID int64, page, limit int) (*IssuePage, error) {
	page = normalizePage(page)
	limit = normalizeLimit(limit)
	offset := (page - 1) * limit

	issues, err := s.repo.ListByCreator(ctx, userID, 2*limit, offset)
	if err != nil {
		s.logger.Error("failed to list issues by user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list issues", err)
	}

	return buildPage(issues, actor, page, limit), nil
}

// CreateIssue persists the issue first and links the pre-uploaded images
// afterwards. A failed link leaves the issue without its images; that window
// is accepted, not transactional.
func (s *Service) CreateIssue(ctx context.Context, actor Actor, dto CreateIssueDTO) (*IssueView, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("issue validation failed", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	now := time.Now()
	i := &Issue{
		Title:       dto.Title,
		Description: dto.Description,
		Section:     dto.Section,
		Scope:       Scope(dto.Scope),
		Department:  actor.Department,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, i); err != nil {
		s.logger.Error("failed to create issue", "error", err, "actor_id", actor.ID)
		return nil, internal.NewInternalError("failed to create issue", err)
	}

	if len(dto.Images) > 0 {
		refs, err := s.images.LinkToIssue(ctx, i.ID, actor.ID, dto.Images)
		if err != nil {
			s.logger.Error("issue created but image linking failed",
				"error", err,
				"issue_id", i.ID,
				"actor_id", actor.ID,
				"image_ids", dto.Images)
		} else {
			i.Images = refs
		}
	}

	s.logger.Info("issue created",
		"issue_id", i.ID,
		"actor_id", actor.ID,
		"department", i.Department,
		"scope", i.Scope)

	return NewIssueView(i, actor), nil
}

func (s *Service) UpdateIssue(ctx context.Context, actor Actor, issueID int64, dto UpdateIssueDTO) (*IssueView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !CanUpdate(actor, i) {
		s.logger.Warn("issue update denied", "issue_id", issueID, "actor_id", actor.ID)
		return nil, internal.ErrNotIssueCreator
	}

	if dto.Title != nil {
		i.Title = *dto.Title
	}
	if dto.Description != nil {
		i.Description = *dto.Description
	}
	i.IsEdited = true
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save issue update", "error", err, "issue_id", issueID)
		return nil, internal.NewInternalError("failed to update issue", err)
	}

	return NewIssueView(i, actor), nil
}

func (s *Service) ToggleResolve(ctx context.Context, actor Actor, issueID int64) (bool, error) {
	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return false, err
	}
	if !CanResolve(actor, i) {
		s.logger.Warn("resolve toggle denied", "issue_id", issueID, "actor_id", actor.ID)
		return false, internal.ErrCannotModerate
	}

	i.IsResolved = !i.IsResolved
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save resolve toggle", "error", err, "issue_id", issueID)
		return false, internal.NewInternalError("failed to toggle resolve", err)
	}

	return i.IsResolved, nil
}

// ToggleUpvote flips the actor's upvote. The set flip and the count
// adjustment happen in one save, and re-toggling restores the prior state
// exactly.
func (s *Service) ToggleUpvote(ctx context.Context, actor Actor, issueID int64) (bool, error) {
	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return false, err
	}
	if !CanUpvote(actor, i) {
		s.logger.Warn("upvote denied", "issue_id", issueID, "actor_id", actor.ID)
		return false, internal.ErrIssueOutOfScope
	}

	upvoted := i.ToggleUpvote(actor.ID)
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save upvote toggle", "error", err, "issue_id", issueID)
		return false, internal.NewInternalError("failed to toggle upvote", err)
	}

	return upvoted, nil
}

// ToggleInappropriate flips the actor's report and then rederives both
// escalation flags from current set sizes, so the operation is
// self-correcting when invoked redundantly. The issue and its author are
// persisted together.
func (s *Service) ToggleInappropriate(ctx context.Context, actor Actor, issueID int64) (bool, error) {
	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return false, err
	}
	if !CanReport(actor, i) {
		s.logger.Warn("report denied", "issue_id", issueID, "actor_id", actor.ID)
		return false, internal.ErrCannotReport
	}

	reported := i.ToggleReport(actor.ID)

	wasInappropriate := i.IsInappropriate
	i.RecomputeInappropriate(s.thresholds.IssueReports)
	i.UpdatedAt = time.Now()

	author, err := s.users.GetByID(ctx, i.CreatedBy)
	if err != nil {
		s.logger.Error("failed to load issue author", "error", err, "issue_id", issueID, "author_id", i.CreatedBy)
		return false, internal.NewInternalError("failed to load issue author", err)
	}

	if i.IsInappropriate {
		author.AddViolation(i.ID)
	} else {
		author.RemoveViolation(i.ID)
	}
	wasDisabled := author.IsDisabled
	author.RecomputeDisabled(s.thresholds.UserViolations)

	if err := s.repo.SaveWithAuthor(ctx, i, author); err != nil {
		s.logger.Error("failed to persist report escalation",
			"error", err,
			"issue_id", issueID,
			"author_id", author.ID)
		return false, internal.NewInternalError("failed to toggle report", err)
	}

	s.publishEscalation(ctx, i, author, wasInappropriate, wasDisabled)

	return reported, nil
}

func (s *Service) publishEscalation(ctx context.Context, i *Issue, author *user.User, wasInappropriate, wasDisabled bool) {
	if s.bus == nil {
		return
	}

	if i.IsInappropriate && !wasInappropriate {
		s.bus.Publish(ctx, events.NewIssueFlaggedEvent(i.ID, author.ID, len(i.Reporters)))
	} else if !i.IsInappropriate && wasInappropriate {
		s.bus.Publish(ctx, events.NewIssueClearedEvent(i.ID, author.ID, len(i.Reporters)))
	}

	if author.IsDisabled && !wasDisabled {
		s.bus.Publish(ctx, events.NewUserSuspendedEvent(author.ID, len(author.Violations)))
	} else if !author.IsDisabled && wasDisabled {
		s.bus.Publish(ctx, events.NewUserReinstatedEvent(author.ID, len(author.Violations)))
	}
}

func (s *Service) PostComment(ctx context.Context, actor Actor, issueID int64, dto PostTextDTO) (*IssueView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !CanComment(actor, i) {
		s.logger.Warn("comment denied", "issue_id", issueID, "actor_id", actor.ID)
		return nil, internal.ErrIssueOutOfScope
	}

	i.AddComment(actor.ID, dto.Body)
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save comment", "error", err, "issue_id", issueID)
		return nil, internal.NewInternalError("failed to post comment", err)
	}

	return NewIssueView(i, actor), nil
}

func (s *Service) PostSolution(ctx context.Context, actor Actor, issueID int64, dto PostTextDTO) (*IssueView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !CanPostSolution(actor, i) {
		s.logger.Warn("solution denied", "issue_id", issueID, "actor_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrCannotSolve
	}

	i.AddSolution(actor.ID, dto.Body)
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save solution", "error", err, "issue_id", issueID)
		return nil, internal.NewInternalError("failed to post solution", err)
	}

	return NewIssueView(i, actor), nil
}

// DeleteIssue is a soft delete: the issue disappears from listings but stays
// addressable by id.
func (s *Service) DeleteIssue(ctx context.Context, actor Actor, issueID int64) error {
	mu := s.lockFor(issueID)
	mu.Lock()
	defer mu.Unlock()

	i, err := s.getIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if !CanDelete(actor, i) {
		s.logger.Warn("delete denied", "issue_id", issueID, "actor_id", actor.ID)
		return internal.ErrCannotModerate
	}

	i.IsDeleted = true
	i.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, i); err != nil {
		s.logger.Error("failed to save delete", "error", err, "issue_id", issueID)
		return internal.NewInternalError("failed to delete issue", err)
	}

	s.logger.Info("issue soft-deleted", "issue_id", issueID, "actor_id", actor.ID)
	return nil
}

// getIssue loads by id for a mutating or fetch operation. Soft-deleted
// issues are treated as absent for mutation; GetIssue relies on the same
// lookup, so deleted issues surface as NOT_FOUND everywhere except audit
// listings at the store level.
func (s *Service) getIssue(ctx context.Context, issueID int64) (*Issue, error) {
	i, err := s.repo.GetByID(ctx, issueID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to load issue", "error", err, "issue_id", issueID)
		return nil, internal.NewInternalError("failed to load issue", err)
	}
	if i.IsDeleted {
		return nil, internal.ErrIssueNotFound
	}
	return i, nil
}
