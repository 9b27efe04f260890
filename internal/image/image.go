package image

import (
	"time"

	imageDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/image"
)

const (
	StatusPending = imageDatamodel.StatusPending
	StatusLinked  = imageDatamodel.StatusLinked
)

// Image is an upload registered ahead of issue creation. It stays pending
// until an issue claims it.
type Image struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	IssueID   *int64    `json:"issue_id,omitempty"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Image) IsPending() bool {
	return i.Status == StatusPending
}

func ToDataModel(i *Image) *imageDatamodel.Image {
	return &imageDatamodel.Image{
		ID:        i.ID,
		OwnerID:   i.OwnerID,
		IssueID:   i.IssueID,
		URL:       i.URL,
		Filename:  i.Filename,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func FromDataModel(row *imageDatamodel.Image) *Image {
	return &Image{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		IssueID:   row.IssueID,
		URL:       row.URL,
		Filename:  row.Filename,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
