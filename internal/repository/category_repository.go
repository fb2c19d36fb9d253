package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// CategoryRepository exposes ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, sla_hours)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRow(ctx, query, category.Name, category.Description, category.SLAHours).
		Scan(&category.ID, &category.CreatedAt)
	return mapError(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	const query = `SELECT id, name, description, sla_hours, created_at FROM categories WHERE id=$1`
	var category domain.Category
	if err := executor(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.SLAHours,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := executor(ctx, r.db).Query(ctx, `SELECT id, name, description, sla_hours, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.SLAHours,
			&category.CreatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
