package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coopfin/loan-engine/internal/domain"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByMemberNumber(ctx context.Context, memberNumber int64) (*domain.User, error) {
	query := `
		SELECT id, full_name, member_number, email, role, created_at
		FROM users
		WHERE member_number = $1
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, memberNumber); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, full_name, member_number, email, role, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}
