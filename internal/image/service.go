package image

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/issue-management/internal"
)

type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByIDs(ctx context.Context, ids []string) ([]*Image, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*Image, error)
	// Link stamps issue_id and flips status to linked for the given images
	// in one transaction.
	Link(ctx context.Context, issueID int64, ids []string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterUpload records image metadata ahead of issue creation. The image
// stays pending until an issue claims it.
func (s *Service) RegisterUpload(ctx context.Context, ownerID int64, dto RegisterUploadDTO) (*Image, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	img := &Image{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		URL:       dto.URL,
		Filename:  dto.Filename,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, img); err != nil {
		s.logger.Error("failed to register upload", "error", err, "owner_id", ownerID)
		return nil, internal.NewInternalError("failed to register upload", err)
	}

	s.logger.Info("image upload registered", "image_id", img.ID, "owner_id", ownerID)
	return img, nil
}

// LinkToIssue claims pending images for an issue. Every referenced image must
// exist, belong to the caller, and still be pending; a reference to someone
// else's image reads as not found rather than forbidden.
func (s *Service) LinkToIssue(ctx context.Context, issueID, ownerID int64, imageIDs []string) ([]*Image, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}

	imgs, err := s.repo.GetByIDs(ctx, imageIDs)
	if err != nil {
		s.logger.Error("failed to load images for linking", "error", err, "issue_id", issueID)
		return nil, internal.NewInternalError("failed to load images", err)
	}

	byID := make(map[string]*Image, len(imgs))
	for _, img := range imgs {
		byID[img.ID] = img
	}

	for _, id := range imageIDs {
		img, ok := byID[id]
		if !ok || img.OwnerID != ownerID {
			return nil, internal.ErrImageNotFound
		}
		if !img.IsPending() {
			return nil, internal.ErrImageNotPending
		}
	}

	if err := s.repo.Link(ctx, issueID, imageIDs); err != nil {
		s.logger.Error("failed to link images", "error", err, "issue_id", issueID, "image_ids", imageIDs)
		return nil, internal.NewInternalError("failed to link images", err)
	}

	linked := make([]*Image, 0, len(imageIDs))
	for _, id := range imageIDs {
		img := byID[id]
		img.IssueID = &issueID
		img.Status = StatusLinked
		linked = append(linked, img)
	}

	s.logger.Info("images linked to issue", "issue_id", issueID, "count", len(linked))
	return linked, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*Image, error) {
	imgs, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list images", "error", err, "owner_id", ownerID)
		return nil, internal.NewInternalError("failed to list images", err)
	}
	return imgs, nil
}
