package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// DepartmentRepository exposes departments and their rooms.
type DepartmentRepository interface {
	Create(ctx context.Context, department *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	CreateRoom(ctx context.Context, room *domain.Room) error
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

type departmentRepository struct {
	db DB
}

// NewDepartmentRepository instantiates the repository.
func NewDepartmentRepository(db DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *domain.Department) error {
	const query = `
        INSERT INTO departments (name, location)
        VALUES ($1,$2)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRow(ctx, query, department.Name, department.Location).
		Scan(&department.ID, &department.CreatedAt)
	return mapError(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	const query = `SELECT id, name, location, created_at FROM departments WHERE id=$1`
	return scanDepartment(executor(ctx, r.db).QueryRow(ctx, query, id))
}

// GetByName matches the department name exactly.
func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	const query = `SELECT id, name, location, created_at FROM departments WHERE name=$1`
	return scanDepartment(executor(ctx, r.db).QueryRow(ctx, query, name))
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := executor(ctx, r.db).Query(ctx, `SELECT id, name, location, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *department)
	}
	return departments, rows.Err()
}

func (r *departmentRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	const query = `
        INSERT INTO rooms (name, department_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRow(ctx, query, room.Name, room.DepartmentID).
		Scan(&room.ID, &room.CreatedAt)
	return mapError(err)
}

func (r *departmentRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	const query = `SELECT id, name, department_id, created_at FROM rooms WHERE id=$1`
	var room domain.Room
	if err := executor(ctx, r.db).QueryRow(ctx, query, id).
		Scan(&room.ID, &room.Name, &room.DepartmentID, &room.CreatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *departmentRepository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := executor(ctx, r.db).Query(ctx, `SELECT id, name, department_id, created_at FROM rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.DepartmentID, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var department domain.Department
	if err := row.Scan(&department.ID, &department.Name, &department.Location, &department.CreatedAt); err != nil {
		return nil, err
	}
	return &department, nil
}
