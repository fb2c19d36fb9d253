package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// StaffRepository handles persistence for staff profiles.
type StaffRepository interface {
	Create(ctx context.Context, profile *domain.StaffProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.StaffProfile, error)
}

type staffRepository struct {
	db DB
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, profile *domain.StaffProfile) error {
	const query = `
        INSERT INTO staff (user_id, position, department_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	err := executor(ctx, r.db).QueryRow(ctx, query,
		profile.UserID,
		profile.Position,
		profile.DepartmentID,
	).Scan(&profile.ID, &profile.CreatedAt)
	return mapError(err)
}

func (r *staffRepository) GetByUserID(ctx context.Context, userID string) (*domain.StaffProfile, error) {
	if !validID(userID) {
		return nil, pgx.ErrNoRows
	}
	const query = `
        SELECT id, user_id, position, department_id, created_at
        FROM staff WHERE user_id=$1`

	var profile domain.StaffProfile
	if err := executor(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Position,
		&profile.DepartmentID,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
