package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository"
)

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	a := &domain.Admin{}
	query := `SELECT id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, ''), role FROM admins WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
