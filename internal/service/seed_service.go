package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/repository"
)

// Seeder loads demo reference data and accounts into an empty installation.
type Seeder struct {
	users       *UserService
	userRepo    repository.UserRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	logger      *zap.Logger
}

// SeedReport counts what a seed run inserted.
type SeedReport struct {
	Departments int
	Rooms       int
	Categories  int
	Users       int
}

var seedDepartments = []domain.Department{
	{Name: "IT Department", Location: "Building A, Floor 3"},
	{Name: "Facilities Management", Location: "Building B, Floor 1"},
	{Name: "Human Resources", Location: "Building C, Floor 2"},
	{Name: "Library", Location: "Building D, Floor 1"},
}

var seedRooms = []struct {
	Name       string
	Department string
}{
	{Name: "Lab 301", Department: "IT Department"},
	{Name: "Lab 302", Department: "IT Department"},
	{Name: "Meeting Room 101", Department: "Facilities Management"},
}

var seedCategories = []domain.Category{
	{Name: "Hardware", Description: "Computer hardware issues", SLAHours: 24},
	{Name: "Software", Description: "Software installation and issues", SLAHours: 12},
	{Name: "Facility Maintenance", Description: "Building and facility maintenance", SLAHours: 48},
	{Name: "Network", Description: "Network connectivity issues", SLAHours: 6},
	{Name: "Electrical", Description: "Electrical problems", SLAHours: 12},
	{Name: "Cleaning", Description: "Cleaning requests", SLAHours: 24},
}

var seedUsers = []UserCreateInput{
	{Email: "demo@fpt.edu.vn", Password: "demo123", FullName: "Demo Student", Role: "STUDENT", StudentCode: "SE12345", ClassName: "SE1701"},
	{Email: "student1@fpt.edu.vn", Password: "123456", FullName: "Nguyen Van A", Role: "STUDENT", StudentCode: "SE12346", ClassName: "SE1702"},
	{Email: "staff@fpt.edu.vn", Password: "staff123", FullName: "Staff Member", Role: "STAFF", Position: "IT Support", DepartmentName: "IT Department"},
	{Email: "admin@fpt.edu.vn", Password: "admin123", FullName: "System Administrator", Role: "ADMIN"},
}

// NewSeeder constructs the seeder.
func NewSeeder(users *UserService, userRepo repository.UserRepository, departments repository.DepartmentRepository, categories repository.CategoryRepository, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		users:       users,
		userRepo:    userRepo,
		departments: departments,
		categories:  categories,
		logger:      logger,
	}
}

// Seed inserts whatever demo data is missing. Running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}

	for _, department := range seedDepartments {
		_, err := s.departments.GetByName(ctx, department.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		department := department
		if err := s.departments.Create(ctx, &department); err != nil {
			return nil, err
		}
		report.Departments++
	}

	existingRooms, err := s.departments.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(existingRooms) == 0 {
		for _, room := range seedRooms {
			department, err := s.departments.GetByName(ctx, room.Department)
			if err != nil {
				return nil, err
			}
			if err := s.departments.CreateRoom(ctx, &domain.Room{Name: room.Name, DepartmentID: department.ID}); err != nil {
				return nil, err
			}
			report.Rooms++
		}
	}

	existingCategories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existingCategories) == 0 {
		for _, category := range seedCategories {
			category := category
			if err := s.categories.Create(ctx, &category); err != nil {
				return nil, err
			}
			report.Categories++
		}
	}

	for _, input := range seedUsers {
		exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		if _, err := s.users.CreateUser(ctx, input); err != nil {
			return nil, err
		}
		report.Users++
	}

	s.logger.Info("seed completed",
		zap.Int("departments", report.Departments),
		zap.Int("rooms", report.Rooms),
		zap.Int("categories", report.Categories),
		zap.Int("users", report.Users))
	return report, nil
}
