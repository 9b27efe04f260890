package issue

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/issue-management/internal/auth"
	"github.com/frahmantamala/issue-management/internal/transport"
	"github.com/frahmantamala/issue-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListIssues(ctx context.Context, actor Actor, page, limit int, filter StatusFilter) (*IssuePage, error)
	SearchIssues(ctx context.Context, actor Actor, phrase string, page, limit int) (*IssuePage, error)
	GetIssue(ctx context.Context, actor Actor, issueID int64) (*IssueView, error)
	ListIssuesByUser(ctx context.Context, actor Actor, userID int64, page, limit int) (*IssuePage, error)
	CreateIssue(ctx context.Context, actor Actor, dto CreateIssueDTO) (*IssueView, error)
	UpdateIssue(ctx context.Context, actor Actor, issueID int64, dto UpdateIssueDTO) (*IssueView, error)
	ToggleResolve(ctx context.Context, actor Actor, issueID int64) (bool, error)
	ToggleUpvote(ctx context.Context, actor Actor, issueID int64) (bool, error)
	ToggleInappropriate(ctx context.Context, actor Actor, issueID int64) (bool, error)
	PostComment(ctx context.Context, actor Actor, issueID int64, dto PostTextDTO) (*IssueView, error)
	PostSolution(ctx context.Context, actor Actor, issueID int64, dto PostTextDTO) (*IssueView, error)
	DeleteIssue(ctx context.Context, actor Actor, issueID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) actorFromRequest(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.Logger.Error("user not found in request context", "path", r.URL.Path)
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return Actor{}, false
	}
	return ActorFromUser(u), true
}

func (h *Handler) issueIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid issue id")
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (page, limit int) {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = l
	}
	return page, limit
}

func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	filter := StatusFilter(r.URL.Query().Get("status"))

	result, err := h.Service.ListIssues(r.Context(), actor, page, limit, filter)
	if err != nil {
		h.Logger.Error("ListIssues: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) SearchIssues(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	phrase := r.URL.Query().Get("q")

	result, err := h.Service.SearchIssues(r.Context(), actor, phrase, page, limit)
	if err != nil {
		h.Logger.Error("SearchIssues: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.Service.GetIssue(r.Context(), actor, issueID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ListIssuesByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}

	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	page, limit := pageParams(r)

	result, err := h.Service.ListIssuesByUser(r.Context(), actor, userID, page, limit)
	if err != nil {
		h.Logger.Error("ListIssuesByUser: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}

	var dto CreateIssueDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateIssue: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.CreateIssue(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateIssue: issue created",
		"issue_id", view.ID,
		"user_id", actor.ID,
		"scope", view.Scope)

	h.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	var dto UpdateIssueDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateIssue: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.UpdateIssue(r.Context(), actor, issueID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ToggleResolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	resolved, err := h.Service.ToggleResolve(r.Context(), actor, issueID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"is_resolved": resolved})
}

func (h *Handler) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	upvoted, err := h.Service.ToggleUpvote(r.Context(), actor, issueID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"upvoted": upvoted})
}

func (h *Handler) ToggleInappropriate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	reported, err := h.Service.ToggleInappropriate(r.Context(), actor, issueID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"reported": reported})
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	var dto PostTextDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("PostComment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.PostComment(r.Context(), actor, issueID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) PostSolution(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	var dto PostTextDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("PostSolution: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.PostSolution(r.Context(), actor, issueID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromRequest(w, r)
	if !ok {
		return
	}
	issueID, ok := h.issueIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteIssue(r.Context(), actor, issueID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "issue deleted"})
}
