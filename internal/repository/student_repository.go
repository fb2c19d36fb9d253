package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// StudentRepository handles persistence for student profiles.
type StudentRepository interface {
	Create(ctx context.Context, profile *domain.StudentProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.StudentProfile, error)
	ExistsByStudentCode(ctx context.Context, code string) (bool, error)
}

type studentRepository struct {
	db DB
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, profile *domain.StudentProfile) error {
	const query = `
        INSERT INTO students (user_id, student_code, class_name)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	err := executor(ctx, r.db).QueryRow(ctx, query,
		profile.UserID,
		profile.StudentCode,
		profile.ClassName,
	).Scan(&profile.ID, &profile.CreatedAt)
	return mapError(err)
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID string) (*domain.StudentProfile, error) {
	if !validID(userID) {
		return nil, pgx.ErrNoRows
	}
	const query = `
        SELECT id, user_id, student_code, class_name, created_at
        FROM students WHERE user_id=$1`

	var profile domain.StudentProfile
	if err := executor(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.StudentCode,
		&profile.ClassName,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) ExistsByStudentCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := executor(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE student_code=$1)`, code).Scan(&exists)
	return exists, err
}
