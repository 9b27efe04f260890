package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/issue-management/internal"
	imageDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/image"
	issueDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/issue"
	"github.com/frahmantamala/issue-management/internal/issue"
	"github.com/frahmantamala/issue-management/internal/user"
	userPostgres "github.com/frahmantamala/issue-management/internal/user/postgres"
)

// IssueRepository implements the issue.Repository interface using GORM
type IssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new issue repository
func NewIssueRepository(db *gorm.DB) issue.Repository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, i *issue.Issue) error {
	row := issue.ToDataModel(i)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	i.ID = row.ID
	return nil
}

func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*issue.Issue, error) {
	var row issueDatamodel.Issue
	err := r.db.WithContext(ctx).
		Preload("Comments").
		Preload("Solutions").
		Preload("Upvoters").
		Preload("Reporters").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrIssueNotFound
		}
		return nil, err
	}

	i := issue.FromDataModel(&row)
	refs, err := r.linkedImages(ctx, id)
	if err != nil {
		return nil, err
	}
	i.Images = refs
	return i, nil
}

func (r *IssueRepository) Save(ctx context.Context, i *issue.Issue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveIssueTx(tx, i)
	})
}

// SaveWithAuthor persists the issue and its author atomically. Report
// escalation flips flags on both records, so a partial write would desync
// the reporter set from the author's violation set.
func (r *IssueRepository) SaveWithAuthor(ctx context.Context, i *issue.Issue, author *user.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveIssueTx(tx, i); err != nil {
			return err
		}
		return userPostgres.SaveUserTx(tx, author)
	})
}

// saveIssueTx writes the issue row and reconciles its child sets. The
// upvoter and reporter sets are replaced wholesale; comments and solutions
// are append-only, so only rows without an id are inserted.
func saveIssueTx(tx *gorm.DB, i *issue.Issue) error {
	row := issue.ToDataModel(i)
	if err := tx.Omit("Comments", "Solutions", "Upvoters", "Reporters").Save(row).Error; err != nil {
		return err
	}

	if err := tx.Where("issue_id = ?", i.ID).Delete(&issueDatamodel.Upvoter{}).Error; err != nil {
		return err
	}
	if len(row.Upvoters) > 0 {
		if err := tx.Create(&row.Upvoters).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("issue_id = ?", i.ID).Delete(&issueDatamodel.Reporter{}).Error; err != nil {
		return err
	}
	if len(row.Reporters) > 0 {
		if err := tx.Create(&row.Reporters).Error; err != nil {
			return err
		}
	}

	for idx := range row.Comments {
		if row.Comments[idx].ID != 0 {
			continue
		}
		if err := tx.Create(&row.Comments[idx]).Error; err != nil {
			return err
		}
	}
	for idx := range row.Solutions {
		if row.Solutions[idx].ID != 0 {
			continue
		}
		if err := tx.Create(&row.Solutions[idx]).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *IssueRepository) ListByDepartment(ctx context.Context, department string, status issue.StatusFilter, limit, offset int) ([]*issue.Issue, error) {
	q := r.listQuery(ctx, status).Where("department = ?", department)
	return r.fetchList(q, limit, offset)
}

func (r *IssueRepository) ListAll(ctx context.Context, status issue.StatusFilter, limit, offset int) ([]*issue.Issue, error) {
	return r.fetchList(r.listQuery(ctx, status), limit, offset)
}

func (r *IssueRepository) ListByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]*issue.Issue, error) {
	q := r.db.WithContext(ctx).
		Model(&issueDatamodel.Issue{}).
		Where("is_deleted = ?", false).
		Where("created_by = ?", creatorID)
	return r.fetchList(q, limit, offset)
}

// SearchByPhrase matches the phrase against title and description. With a
// department the scope is that department plus organization-wide issues,
// which is intentionally wider than plain listing.
func (r *IssueRepository) SearchByPhrase(ctx context.Context, phrase, department string, limit, offset int) ([]*issue.Issue, error) {
	pattern := "%" + strings.ToLower(phrase) + "%"
	q := r.db.WithContext(ctx).
		Model(&issueDatamodel.Issue{}).
		Where("is_deleted = ?", false).
		Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	if department != "" {
		q = q.Where("(department = ? OR scope = ?)", department, string(issue.ScopeOrganization))
	}
	return r.fetchList(q, limit, offset)
}

func (r *IssueRepository) listQuery(ctx context.Context, status issue.StatusFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&issueDatamodel.Issue{}).
		Where("is_deleted = ?", false)
	switch status {
	case issue.FilterResolved:
		q = q.Where("is_resolved = ?", true)
	case issue.FilterUnresolved:
		q = q.Where("is_resolved = ?", false)
	}
	return q
}

func (r *IssueRepository) fetchList(q *gorm.DB, limit, offset int) ([]*issue.Issue, error) {
	var rows []*issueDatamodel.Issue
	err := q.
		Preload("Comments").
		Preload("Solutions").
		Preload("Upvoters").
		Preload("Reporters").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return issue.FromDataModelSlice(rows), nil
}

func (r *IssueRepository) linkedImages(ctx context.Context, issueID int64) ([]issue.ImageRef, error) {
	var imgs []imageDatamodel.Image
	err := r.db.WithContext(ctx).
		Where("issue_id = ? AND status = ?", issueID, imageDatamodel.StatusLinked).
		Find(&imgs).Error
	if err != nil {
		return nil, err
	}
	refs := make([]issue.ImageRef, 0, len(imgs))
	for _, img := range imgs {
		refs = append(refs, issue.ImageRef{ID: img.ID, URL: img.URL})
	}
	return refs, nil
}
