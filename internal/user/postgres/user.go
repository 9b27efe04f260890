package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/issue-management/internal"
	userDatamodel "github.com/frahmantamala/issue-management/internal/core/datamodel/user"
	"github.com/frahmantamala/issue-management/internal/user"
)

// UserRepository implements the user.Repository interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Violations").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Violations").
		Where("email = ?", email).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

// Save persists the user row and replaces the violation set in one
// transaction so the is_disabled flag and the set never drift apart.
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	return SaveUserTx(r.db.WithContext(ctx), u)
}

// SaveUserTx is shared with the issue repository, which persists an issue and
// its author inside a single transaction during report escalation.
func SaveUserTx(tx *gorm.DB, u *user.User) error {
	row := user.ToDataModel(u)
	row.UpdatedAt = time.Now()

	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Violations").Save(row).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", row.ID).Delete(&userDatamodel.Violation{}).Error; err != nil {
			return err
		}
		if len(row.Violations) > 0 {
			if err := tx.Create(&row.Violations).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
