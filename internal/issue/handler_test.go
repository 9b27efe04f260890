package issue_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-chi/chi"

	"github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/auth"
	"github.com/frahmantamala/issue-management/internal/issue"
)

type mockIssueService struct {
	getErr    error
	createErr error
	toggleErr error

	lastActor   issue.Actor
	lastIssueID int64
	view        *issue.IssueView
	page        *issue.IssuePage
	upvoted     bool
}

func (m *mockIssueService) ListIssues(_ context.Context, actor issue.Actor, page, limit int, filter issue.StatusFilter) (*issue.IssuePage, error) {
	m.lastActor = actor
	return m.page, nil
}

func (m *mockIssueService) SearchIssues(_ context.Context, actor issue.Actor, phrase string, page, limit int) (*issue.IssuePage, error) {
	if phrase == "" {
		return nil, internal.NewValidationError("search phrase must not be blank", internal.ErrCodeEmptyPhrase)
	}
	m.lastActor = actor
	return m.page, nil
}

func (m *mockIssueService) GetIssue(_ context.Context, actor issue.Actor, issueID int64) (*issue.IssueView, error) {
	m.lastActor = actor
	m.lastIssueID = issueID
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.view, nil
}

func (m *mockIssueService) ListIssuesByUser(_ context.Context, actor issue.Actor, userID int64, page, limit int) (*issue.IssuePage, error) {
	return m.page, nil
}

func (m *mockIssueService) CreateIssue(_ context.Context, actor issue.Actor, dto issue.CreateIssueDTO) (*issue.IssueView, error) {
	m.lastActor = actor
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.view, nil
}

func (m *mockIssueService) UpdateIssue(_ context.Context, actor issue.Actor, issueID int64, dto issue.UpdateIssueDTO) (*issue.IssueView, error) {
	m.lastIssueID = issueID
	return m.view, nil
}

func (m *mockIssueService) ToggleResolve(_ context.Context, actor issue.Actor, issueID int64) (bool, error) {
	return true, nil
}

func (m *mockIssueService) ToggleUpvote(_ context.Context, actor issue.Actor, issueID int64) (bool, error) {
	m.lastIssueID = issueID
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	return m.upvoted, nil
}

func (m *mockIssueService) ToggleInappropriate(_ context.Context, actor issue.Actor, issueID int64) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	return true, nil
}

func (m *mockIssueService) PostComment(_ context.Context, actor issue.Actor, issueID int64, dto issue.PostTextDTO) (*issue.IssueView, error) {
	return m.view, nil
}

func (m *mockIssueService) PostSolution(_ context.Context, actor issue.Actor, issueID int64, dto issue.PostTextDTO) (*issue.IssueView, error) {
	return m.view, nil
}

func (m *mockIssueService) DeleteIssue(_ context.Context, actor issue.Actor, issueID int64) error {
	m.lastIssueID = issueID
	return nil
}

var _ = Describe("IssueHandler", func() {
	var (
		svc     *mockIssueService
		handler *issue.Handler
		router  *chi.Mux
	)

	actorUser := &auth.User{ID: 1, Email: "ana@mail.com", Role: auth.RoleUser, Department: "engineering"}

	withUser := func(r *http.Request) *http.Request {
		return r.WithContext(auth.ContextWithUser(r.Context(), actorUser))
	}

	BeforeEach(func() {
		svc = &mockIssueService{
			view: &issue.IssueView{ID: 7, Title: "broken door", Department: "engineering"},
			page: &issue.IssuePage{Issues: nil, Page: 1, Limit: 5},
		}
		handler = issue.NewHandler(svc)

		router = chi.NewRouter()
		router.Get("/issues/{id}", handler.GetIssue)
		router.Post("/issues", handler.CreateIssue)
		router.Patch("/issues/{id}/upvote", handler.ToggleUpvote)
		router.Get("/issues", handler.ListIssues)
		router.Get("/issues/search", handler.SearchIssues)
	})

	Describe("GetIssue", func() {
		It("returns the issue as JSON", func() {
			req := withUser(httptest.NewRequest(http.MethodGet, "/issues/7", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body issue.IssueView
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.ID).To(Equal(int64(7)))
			Expect(svc.lastIssueID).To(Equal(int64(7)))
			Expect(svc.lastActor.Department).To(Equal("engineering"))
		})

		It("maps out-of-scope to 403", func() {
			svc.getErr = internal.ErrIssueOutOfScope
			req := withUser(httptest.NewRequest(http.MethodGet, "/issues/7", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("maps not-found to 404", func() {
			svc.getErr = internal.ErrIssueNotFound
			req := withUser(httptest.NewRequest(http.MethodGet, "/issues/7", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a non-numeric id", func() {
			req := withUser(httptest.NewRequest(http.MethodGet, "/issues/abc", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects unauthenticated requests", func() {
			req := httptest.NewRequest(http.MethodGet, "/issues/7", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("CreateIssue", func() {
		It("returns 201 with the created issue", func() {
			payload, _ := json.Marshal(map[string]any{
				"title":       "broken door",
				"description": "hinge snapped",
				"section":     "building-a",
				"scope":       "DEPARTMENT",
			})
			req := withUser(httptest.NewRequest(http.MethodPost, "/issues", bytes.NewReader(payload)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("maps validation failures to 400", func() {
			svc.createErr = internal.NewValidationError("title is required", internal.ErrCodeInvalidTitle)
			req := withUser(httptest.NewRequest(http.MethodPost, "/issues", bytes.NewReader([]byte(`{}`))))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects malformed JSON", func() {
			req := withUser(httptest.NewRequest(http.MethodPost, "/issues", bytes.NewReader([]byte(`{`))))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ToggleUpvote", func() {
		It("returns the new upvote state", func() {
			svc.upvoted = true
			req := withUser(httptest.NewRequest(http.MethodPatch, "/issues/7/upvote", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]bool
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["upvoted"]).To(BeTrue())
		})
	})

	Describe("SearchIssues", func() {
		It("maps a blank phrase to 400", func() {
			req := withUser(httptest.NewRequest(http.MethodGet, "/issues/search", nil))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
