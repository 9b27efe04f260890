package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	imageDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/image"
	"github.com/frahmantamala/issue-management/internal/image"
)

// ImageRepository implements the image.Repository interface using GORM
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *gorm.DB) image.Repository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, img *image.Image) error {
	return r.db.WithContext(ctx).Create(image.ToDataModel(img)).Error
}

func (r *ImageRepository) GetByIDs(ctx context.Context, ids []string) ([]*image.Image, error) {
	var rows []*imageDatamodel.Image
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	imgs := make([]*image.Image, len(rows))
	for i, row := range rows {
		imgs[i] = image.FromDataModel(row)
	}
	return imgs, nil
}

func (r *ImageRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*image.Image, error) {
	var rows []*imageDatamodel.Image
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	imgs := make([]*image.Image, len(rows))
	for i, row := range rows {
		imgs[i] = image.FromDataModel(row)
	}
	return imgs, nil
}

func (r *ImageRepository) Link(ctx context.Context, issueID int64, ids []string) error {
	return r.db.WithContext(ctx).
		Model(&imageDatamodel.Image{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"issue_id":   issueID,
			"status":     imageDatamodel.StatusLinked,
			"updated_at": time.Now(),
		}).Error
}
