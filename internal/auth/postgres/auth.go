package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/issue-management/internal"
	"github.com/frahmantamala/issue-management/internal/auth"
)

// AuthRepository reads identity columns with sqlx; it never touches the
// violation bookkeeping, which belongs to the user repository.
type AuthRepository struct {
	db *sqlx.DB
}

func NewAuthRepository(db *sqlx.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(ctx context.Context, email string) (string, int64, error) {
	var row struct {
		ID           int64  `db:"id"`
		PasswordHash string `db:"password_hash"`
	}
	err := r.db.GetContext(ctx, &row,
		"SELECT id, password_hash FROM users WHERE email = $1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", 0, internal.ErrUserNotFound
		}
		return "", 0, err
	}
	return row.PasswordHash, row.ID, nil
}

func (r *AuthRepository) GetUser(ctx context.Context, userID int64) (*auth.User, error) {
	var row struct {
		ID         int64  `db:"id"`
		Email      string `db:"email"`
		Name       string `db:"name"`
		Role       string `db:"role"`
		Department string `db:"department"`
		IsDisabled bool   `db:"is_disabled"`
	}
	err := r.db.GetContext(ctx, &row,
		"SELECT id, email, name, role, department, is_disabled FROM users WHERE id = $1", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.User{
		ID:         row.ID,
		Email:      row.Email,
		Name:       row.Name,
		Role:       auth.Role(row.Role),
		Department: row.Department,
		IsDisabled: row.IsDisabled,
	}, nil
}
