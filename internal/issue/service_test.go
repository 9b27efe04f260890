package issue_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/auth"
	"github.com/frahmantamala/issue-management/internal/core/events"
	"github.com/frahmantamala/issue-management/internal/issue"
	"github.com/frahmantamala/issue-management/internal/user"
)

// Mock repository for testing
type mockIssueRepository struct {
	issues      map[int64]*issue.Issue
	nextID      int64
	createError error
	saveError   error

	savedAuthors []*user.User
}

func newMockIssueRepository() *mockIssueRepository {
	return &mockIssueRepository{
		issues: make(map[int64]*issue.Issue),
		nextID: 1,
	}
}

func (m *mockIssueRepository) Create(_ context.Context, i *issue.Issue) error {
	if m.createError != nil {
		return m.createError
	}
	i.ID = m.nextID
	m.nextID++
	m.issues[i.ID] = i
	return nil
}

func (m *mockIssueRepository) GetByID(_ context.Context, id int64) (*issue.Issue, error) {
	i, ok := m.issues[id]
	if !ok {
		return nil, internal.ErrIssueNotFound
	}
	return i, nil
}

func (m *mockIssueRepository) Save(_ context.Context, i *issue.Issue) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.issues[i.ID] = i
	return nil
}

func (m *mockIssueRepository) SaveWithAuthor(_ context.Context, i *issue.Issue, author *user.User) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.issues[i.ID] = i
	m.savedAuthors = append(m.savedAuthors, author)
	return nil
}

func (m *mockIssueRepository) all() []*issue.Issue {
	out := make([]*issue.Issue, 0, len(m.issues))
	for _, i := range m.issues {
		if !i.IsDeleted {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func paginate(issues []*issue.Issue, limit, offset int) []*issue.Issue {
	if offset >= len(issues) {
		return nil
	}
	issues = issues[offset:]
	if len(issues) > limit {
		issues = issues[:limit]
	}
	return issues
}

func matchesFilter(i *issue.Issue, status issue.StatusFilter) bool {
	switch status {
	case issue.FilterResolved:
		return i.IsResolved
	case issue.FilterUnresolved:
		return !i.IsResolved
	}
	return true
}

func (m *mockIssueRepository) ListByDepartment(_ context.Context, department string, status issue.StatusFilter, limit, offset int) ([]*issue.Issue, error) {
	var out []*issue.Issue
	for _, i := range m.all() {
		if i.Department == department && matchesFilter(i, status) {
			out = append(out, i)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *mockIssueRepository) ListAll(_ context.Context, status issue.StatusFilter, limit, offset int) ([]*issue.Issue, error) {
	var out []*issue.Issue
	for _, i := range m.all() {
		if matchesFilter(i, status) {
			out = append(out, i)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *mockIssueRepository) ListByCreator(_ context.Context, creatorID int64, limit, offset int) ([]*issue.Issue, error) {
	var out []*issue.Issue
	for _, i := range m.all() {
		if i.CreatedBy == creatorID {
			out = append(out, i)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *mockIssueRepository) SearchByPhrase(_ context.Context, phrase, department string, limit, offset int) ([]*issue.Issue, error) {
	var out []*issue.Issue
	for _, i := range m.all() {
		if !containsFold(i.Title, phrase) && !containsFold(i.Description, phrase) {
			continue
		}
		if department != "" && i.Department != department && i.Scope != issue.ScopeOrganization {
			continue
		}
		out = append(out, i)
	}
	return paginate(out, limit, offset), nil
}

func containsFold(haystack, needle string) bool {
	h := []rune(haystack)
	n := []rune(needle)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			a, b := h[i+j], n[j]
			if a >= 'A' && a <= 'Z' {
				a += 32
			}
			if b >= 'A' && b <= 'Z' {
				b += 32
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

type mockUserStore struct {
	users    map[int64]*user.User
	getError error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[int64]*user.User)}
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

type mockImageStore struct {
	linkError error
	linked    map[int64][]string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{linked: make(map[int64][]string)}
}

func (m *mockImageStore) LinkToIssue(_ context.Context, issueID, _ int64, imageIDs []string) ([]issue.ImageRef, error) {
	if m.linkError != nil {
		return nil, m.linkError
	}
	m.linked[issueID] = imageIDs
	refs := make([]issue.ImageRef, len(imageIDs))
	for i, id := range imageIDs {
		refs[i] = issue.ImageRef{ID: id, URL: "https://cdn.example.com/" + id}
	}
	return refs, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) error {
	m.published = append(m.published, e)
	return nil
}

func (m *mockPublisher) eventTypes() []string {
	out := make([]string, len(m.published))
	for i, e := range m.published {
		out[i] = e.EventType()
	}
	return out
}

var _ = Describe("IssueService", func() {
	var (
		repo      *mockIssueRepository
		users     *mockUserStore
		images    *mockImageStore
		publisher *mockPublisher
		svc       *issue.Service
		ctx       context.Context

		engineering = issue.Actor{ID: 1, Role: auth.RoleUser, Department: "engineering"}
		facilities  = issue.Actor{ID: 2, Role: auth.RoleUser, Department: "facilities"}
		moderator   = issue.Actor{ID: 3, Role: auth.RoleModerator, Department: "engineering"}
		levelOne    = issue.Actor{ID: 4, Role: auth.RoleAuthLevelOne, Department: "engineering"}
		levelTwo    = issue.Actor{ID: 5, Role: auth.RoleAuthLevelTwo, Department: "facilities"}
		levelThree  = issue.Actor{ID: 6, Role: auth.RoleAuthLevelThree, Department: "operations"}
	)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	newIssue := func(creator issue.Actor, scope issue.Scope, title string) *issue.Issue {
		i := &issue.Issue{
			Title:       title,
			Description: "something is broken",
			Section:     "building-a",
			Scope:       scope,
			Department:  creator.Department,
			CreatedBy:   creator.ID,
			CreatedAt:   time.Now().Add(time.Duration(repo.nextID) * time.Second),
			UpdatedAt:   time.Now(),
		}
		Expect(repo.Create(ctx, i)).To(Succeed())
		return i
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockIssueRepository()
		users = newMockUserStore()
		images = newMockImageStore()
		publisher = &mockPublisher{}
		svc = issue.NewService(repo, users, images, publisher, issue.Thresholds{
			IssueReports:   3,
			UserViolations: 2,
		}, logger)

		users.users[engineering.ID] = &user.User{ID: engineering.ID, Role: auth.RoleUser, Department: "engineering"}
		users.users[facilities.ID] = &user.User{ID: facilities.ID, Role: auth.RoleUser, Department: "facilities"}
	})

	Describe("CreateIssue", func() {
		It("creates an issue in the actor's department", func() {
			view, err := svc.CreateIssue(ctx, engineering, issue.CreateIssueDTO{
				Title:       "Broken elevator",
				Description: "The east elevator is stuck on floor 3",
				Section:     "building-a",
				Scope:       string(issue.ScopeDepartment),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.ID).To(Equal(int64(1)))
			Expect(view.Department).To(Equal("engineering"))
			Expect(view.CreatedBy).To(Equal(engineering.ID))
		})

		It("links pre-uploaded images after creation", func() {
			view, err := svc.CreateIssue(ctx, engineering, issue.CreateIssueDTO{
				Title:       "Water leak",
				Description: "Leak under the sink",
				Section:     "building-b",
				Scope:       string(issue.ScopeDepartment),
				Images:      []string{"3f6f9c1e-0f6e-4df0-9f34-1a2b3c4d5e6f"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Images).To(HaveLen(1))
			Expect(images.linked[view.ID]).To(HaveLen(1))
		})

		It("still returns the issue when image linking fails", func() {
			images.linkError = errors.New("images table unavailable")
			view, err := svc.CreateIssue(ctx, engineering, issue.CreateIssueDTO{
				Title:       "Water leak",
				Description: "Leak under the sink",
				Section:     "building-b",
				Scope:       string(issue.ScopeDepartment),
				Images:      []string{"3f6f9c1e-0f6e-4df0-9f34-1a2b3c4d5e6f"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Images).To(BeEmpty())
		})

		It("rejects a malformed image reference", func() {
			_, err := svc.CreateIssue(ctx, engineering, issue.CreateIssueDTO{
				Title:       "Water leak",
				Description: "Leak under the sink",
				Section:     "building-b",
				Scope:       string(issue.ScopeDepartment),
				Images:      []string{"not-a-uuid"},
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects an invalid scope", func() {
			_, err := svc.CreateIssue(ctx, engineering, issue.CreateIssueDTO{
				Title:       "Water leak",
				Description: "Leak under the sink",
				Section:     "building-b",
				Scope:       "GLOBAL",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListIssues pagination", func() {
		BeforeEach(func() {
			for n := 0; n < 6; n++ {
				newIssue(engineering, issue.ScopeDepartment, fmt.Sprintf("issue %d", n))
			}
		})

		It("returns the first page with a next-page signal", func() {
			page, err := svc.ListIssues(ctx, engineering, 1, 5, issue.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(5))
			Expect(page.HasNextPage).To(BeTrue())
			Expect(page.HasPreviousPage).To(BeFalse())
		})

		It("returns the remainder on the second page", func() {
			page, err := svc.ListIssues(ctx, engineering, 2, 5, issue.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(1))
			Expect(page.HasNextPage).To(BeFalse())
			Expect(page.HasPreviousPage).To(BeTrue())
		})

		It("clamps page and limit to their minimums", func() {
			page, err := svc.ListIssues(ctx, engineering, 0, 2, issue.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Page).To(Equal(1))
			Expect(page.Limit).To(Equal(5))
		})

		It("hides issues from other departments", func() {
			newIssue(facilities, issue.ScopeDepartment, "facilities only")
			page, err := svc.ListIssues(ctx, engineering, 1, 10, issue.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range page.Issues {
				Expect(v.Department).To(Equal("engineering"))
			}
		})

		It("shows every department to a top-level authority", func() {
			newIssue(facilities, issue.ScopeDepartment, "facilities only")
			page, err := svc.ListIssues(ctx, levelThree, 1, 10, issue.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(7))
		})

		It("filters by resolution state", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "to resolve")
			i.IsResolved = true
			page, err := svc.ListIssues(ctx, engineering, 1, 10, issue.FilterResolved)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(1))
			Expect(page.Issues[0].Title).To(Equal("to resolve"))
		})
	})

	Describe("SearchIssues", func() {
		It("rejects a blank phrase", func() {
			_, err := svc.SearchIssues(ctx, engineering, "   ", 1, 5)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyPhrase))
		})

		It("includes organization-scoped issues from other departments", func() {
			newIssue(facilities, issue.ScopeOrganization, "parking garage flooding")
			newIssue(facilities, issue.ScopeDepartment, "parking permit backlog")

			page, err := svc.SearchIssues(ctx, engineering, "parking", 1, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(1))
			Expect(page.Issues[0].Title).To(Equal("parking garage flooding"))
		})

		It("searches every department for a top-level authority", func() {
			newIssue(facilities, issue.ScopeDepartment, "parking permit backlog")
			page, err := svc.SearchIssues(ctx, levelThree, "parking", 1, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Issues).To(HaveLen(1))
		})
	})

	Describe("GetIssue", func() {
		It("denies an actor outside the issue's department", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "private to engineering")
			_, err := svc.GetIssue(ctx, facilities, i.ID)
			Expect(err).To(MatchError(internal.ErrIssueOutOfScope))
		})

		It("allows any department for organization-scoped issues", func() {
			i := newIssue(engineering, issue.ScopeOrganization, "org wide")
			view, err := svc.GetIssue(ctx, facilities, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.ID).To(Equal(i.ID))
		})

		It("treats soft-deleted issues as absent", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "gone")
			i.IsDeleted = true
			_, err := svc.GetIssue(ctx, engineering, i.ID)
			Expect(err).To(MatchError(internal.ErrIssueNotFound))
		})

		It("hides reporter identities from a plain non-creator", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "reported issue")
			i.Reporters = []int64{7, 8}

			otherEngineer := issue.Actor{ID: 99, Role: auth.RoleUser, Department: "engineering"}
			view, err := svc.GetIssue(ctx, otherEngineer, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Reporters).To(BeNil())

			full, err := svc.GetIssue(ctx, moderator, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(full.Reporters).To(HaveLen(2))
		})

		It("tells each actor whether they reported the issue themselves", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "reported by one engineer")
			i.Reporters = []int64{engineering.ID}

			view, err := svc.GetIssue(ctx, engineering, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.HasReported).To(BeTrue())

			otherEngineer := issue.Actor{ID: 99, Role: auth.RoleUser, Department: "engineering"}
			other, err := svc.GetIssue(ctx, otherEngineer, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(other.HasReported).To(BeFalse())
		})
	})

	Describe("ToggleUpvote", func() {
		It("flips the vote and keeps the count in step with the set", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "upvotable")

			upvoted, err := svc.ToggleUpvote(ctx, engineering, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(upvoted).To(BeTrue())
			Expect(i.Upvotes).To(Equal(len(i.Upvoters)))
			Expect(i.Upvotes).To(Equal(1))

			upvoted, err = svc.ToggleUpvote(ctx, engineering, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(upvoted).To(BeFalse())
			Expect(i.Upvotes).To(Equal(0))
			Expect(i.Upvoters).To(BeEmpty())
		})

		It("denies upvotes from outside the issue's scope", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "dept only")
			_, err := svc.ToggleUpvote(ctx, facilities, i.ID)
			Expect(err).To(MatchError(internal.ErrIssueOutOfScope))
		})
	})

	Describe("ToggleInappropriate", func() {
		var target *issue.Issue

		BeforeEach(func() {
			target = newIssue(engineering, issue.ScopeDepartment, "questionable")
		})

		reportBy := func(id int64) {
			actor := issue.Actor{ID: id, Role: auth.RoleUser, Department: "engineering"}
			reported, err := svc.ToggleInappropriate(ctx, actor, target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reported).To(BeTrue())
		}

		It("stays clean below the report threshold", func() {
			reportBy(10)
			reportBy(11)
			Expect(target.IsInappropriate).To(BeFalse())
			Expect(users.users[engineering.ID].Violations).To(BeEmpty())
		})

		It("flags the issue and records a violation at the threshold", func() {
			reportBy(10)
			reportBy(11)
			reportBy(12)

			Expect(target.IsInappropriate).To(BeTrue())
			Expect(users.users[engineering.ID].HasViolation(target.ID)).To(BeTrue())
			Expect(publisher.eventTypes()).To(ContainElement(events.EventTypeIssueFlagged))
		})

		It("clears the flag and the violation when a report is withdrawn", func() {
			reportBy(10)
			reportBy(11)
			reportBy(12)
			Expect(target.IsInappropriate).To(BeTrue())

			withdrawer := issue.Actor{ID: 12, Role: auth.RoleUser, Department: "engineering"}
			reported, err := svc.ToggleInappropriate(ctx, withdrawer, target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reported).To(BeFalse())

			Expect(target.IsInappropriate).To(BeFalse())
			Expect(users.users[engineering.ID].HasViolation(target.ID)).To(BeFalse())
			Expect(publisher.eventTypes()).To(ContainElement(events.EventTypeIssueCleared))
		})

		It("suspends the author when violations reach their threshold", func() {
			second := newIssue(engineering, issue.ScopeDepartment, "also questionable")

			reportBy(10)
			reportBy(11)
			reportBy(12)

			for _, id := range []int64{10, 11, 12} {
				actor := issue.Actor{ID: id, Role: auth.RoleUser, Department: "engineering"}
				_, err := svc.ToggleInappropriate(ctx, actor, second.ID)
				Expect(err).NotTo(HaveOccurred())
			}

			author := users.users[engineering.ID]
			Expect(author.Violations).To(HaveLen(2))
			Expect(author.IsDisabled).To(BeTrue())
			Expect(publisher.eventTypes()).To(ContainElement(events.EventTypeUserSuspended))
		})

		It("reinstates the author when a violation is cleared", func() {
			second := newIssue(engineering, issue.ScopeDepartment, "also questionable")
			reportBy(10)
			reportBy(11)
			reportBy(12)
			for _, id := range []int64{10, 11, 12} {
				actor := issue.Actor{ID: id, Role: auth.RoleUser, Department: "engineering"}
				_, err := svc.ToggleInappropriate(ctx, actor, second.ID)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(users.users[engineering.ID].IsDisabled).To(BeTrue())

			withdrawer := issue.Actor{ID: 12, Role: auth.RoleUser, Department: "engineering"}
			_, err := svc.ToggleInappropriate(ctx, withdrawer, second.ID)
			Expect(err).NotTo(HaveOccurred())

			author := users.users[engineering.ID]
			Expect(author.IsDisabled).To(BeFalse())
			Expect(publisher.eventTypes()).To(ContainElement(events.EventTypeUserReinstated))
		})

		It("persists issue and author together", func() {
			reportBy(10)
			Expect(repo.savedAuthors).To(HaveLen(1))
		})

		It("denies reports from a plain user in another department", func() {
			_, err := svc.ToggleInappropriate(ctx, facilities, target.ID)
			Expect(err).To(MatchError(internal.ErrCannotReport))
		})

		It("allows cross-department reports from a level-two authority", func() {
			reported, err := svc.ToggleInappropriate(ctx, levelTwo, target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reported).To(BeTrue())
		})
	})

	Describe("PostSolution", func() {
		dto := issue.PostTextDTO{Body: "replace the valve"}

		It("denies plain users and moderators", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "needs solving")
			_, err := svc.PostSolution(ctx, engineering, i.ID, dto)
			Expect(err).To(MatchError(internal.ErrCannotSolve))
			_, err = svc.PostSolution(ctx, moderator, i.ID, dto)
			Expect(err).To(MatchError(internal.ErrCannotSolve))
		})

		It("restricts level-one authorities to their own department", func() {
			home := newIssue(engineering, issue.ScopeDepartment, "in department")
			away := newIssue(facilities, issue.ScopeDepartment, "out of department")

			view, err := svc.PostSolution(ctx, levelOne, home.ID, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Solutions).To(HaveLen(1))

			_, err = svc.PostSolution(ctx, levelOne, away.ID, dto)
			Expect(err).To(MatchError(internal.ErrCannotSolve))
		})

		It("lets level-two authorities solve anywhere", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "cross department")
			view, err := svc.PostSolution(ctx, levelTwo, i.ID, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Solutions).To(HaveLen(1))
			Expect(view.Solutions[0].PostedBy).To(Equal(levelTwo.ID))
		})
	})

	Describe("PostComment", func() {
		It("appends a comment for an in-scope actor", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "commentable")
			view, err := svc.PostComment(ctx, engineering, i.ID, issue.PostTextDTO{Body: "same here"})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Comments).To(HaveLen(1))
		})

		It("rejects a blank body", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "commentable")
			_, err := svc.PostComment(ctx, engineering, i.ID, issue.PostTextDTO{Body: "  "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateIssue", func() {
		It("lets only the creator edit and marks the issue edited", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "editable")
			newTitle := "clearer title"

			view, err := svc.UpdateIssue(ctx, engineering, i.ID, issue.UpdateIssueDTO{Title: &newTitle})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Title).To(Equal(newTitle))
			Expect(view.IsEdited).To(BeTrue())

			_, err = svc.UpdateIssue(ctx, moderator, i.ID, issue.UpdateIssueDTO{Title: &newTitle})
			Expect(err).To(MatchError(internal.ErrNotIssueCreator))
		})

		It("rejects an empty update", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "editable")
			_, err := svc.UpdateIssue(ctx, engineering, i.ID, issue.UpdateIssueDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ToggleResolve", func() {
		It("round-trips the resolved state for the creator", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "resolvable")

			resolved, err := svc.ToggleResolve(ctx, engineering, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeTrue())

			resolved, err = svc.ToggleResolve(ctx, engineering, i.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(BeFalse())
		})

		It("denies a non-creator plain user", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "resolvable")
			other := issue.Actor{ID: 42, Role: auth.RoleUser, Department: "engineering"}
			_, err := svc.ToggleResolve(ctx, other, i.ID)
			Expect(err).To(MatchError(internal.ErrCannotModerate))
		})
	})

	Describe("DeleteIssue", func() {
		It("soft-deletes for a moderator and hides the issue afterwards", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "deletable")

			Expect(svc.DeleteIssue(ctx, moderator, i.ID)).To(Succeed())
			Expect(i.IsDeleted).To(BeTrue())

			_, err := svc.GetIssue(ctx, engineering, i.ID)
			Expect(err).To(MatchError(internal.ErrIssueNotFound))
		})

		It("denies a plain non-creator", func() {
			i := newIssue(engineering, issue.ScopeDepartment, "deletable")
			other := issue.Actor{ID: 42, Role: auth.RoleUser, Department: "engineering"}
			Expect(svc.DeleteIssue(ctx, other, i.ID)).To(MatchError(internal.ErrCannotModerate))
		})
	})
})
