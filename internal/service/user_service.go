package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// UserService manages the account directory.
type UserService struct {
	users       repository.UserRepository
	students    repository.StudentRepository
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
	tx          repository.Transactor
	bcryptCost  int
	logger      *zap.Logger
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	StudentRepo    repository.StudentRepository
	StaffRepo      repository.StaffRepository
	DepartmentRepo repository.DepartmentRepository
	Transactor     repository.Transactor
	BcryptCost     int
	Logger         *zap.Logger
}

// UserUpdateInput carries a partial update. Nil or blank fields are left
// unchanged.
type UserUpdateInput struct {
	FullName *string
	Email    *string
	Role     *string
}

// UserCreateInput describes one new account with its optional profile data.
type UserCreateInput struct {
	Email          string
	Password       string
	FullName       string
	Role           string
	StudentCode    string
	ClassName      string
	Position       string
	DepartmentName string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:       deps.UserRepo,
		students:    deps.StudentRepo,
		staff:       deps.StaffRepo,
		departments: deps.DepartmentRepo,
		tx:          deps.Transactor,
		bcryptCost:  deps.BcryptCost,
		logger:      logger,
	}
}

// GetAllUsers lists every account.
func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// GetUserByID loads one account.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", id)
		}
		return nil, err
	}
	return user, nil
}

// UserDetail is an account together with whichever profiles it owns. A
// role change leaves the earlier profile in place, so both may be set.
type UserDetail struct {
	User    *domain.User
	Student *domain.StudentProfile
	Staff   *domain.StaffProfile
}

// GetUserDetail loads one account with its student and staff profiles.
func (s *UserService) GetUserDetail(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &UserDetail{User: user}

	student, err := s.students.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		detail.Student = student
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	staff, err := s.staff.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		detail.Staff = staff
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}
	return detail, nil
}

// UpdateUser applies a partial update to an account.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	var role *domain.Role
	if provided(input.Role) {
		parsed, err := parseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		role = &parsed
	}

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		if provided(input.FullName) {
			user.FullName = strings.TrimSpace(*input.FullName)
		}
		if provided(input.Email) {
			email := strings.TrimSpace(*input.Email)
			if email != user.Email {
				taken, err := s.users.ExistsByEmail(ctx, email)
				if err != nil {
					return err
				}
				if taken {
					return emailTaken(email)
				}
				user.Email = email
			}
		}
		if role != nil {
			user.Role = *role
		}
		if err := s.users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return emailTaken(user.Email)
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.String("user_id", updated.ID))
	return updated, nil
}

// DeleteUser removes an account. requesterEmail identifies the acting
// administrator, who may not delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, id, requesterEmail string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Email == requesterEmail {
			return apperrors.NewValidationError("You cannot delete your own account. Please contact another administrator.", nil)
		}
		if err := s.users.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return apperrors.NewValidationError("User cannot be deleted while tickets reference the account", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// ChangeUserRole overwrites the role of an account. Existing student or
// staff profiles are left as they are.
func (s *UserService) ChangeUserRole(ctx context.Context, id, newRole string) (*domain.User, error) {
	role, err := parseRole(newRole)
	if err != nil {
		return nil, err
	}

	var updated *domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		user.Role = role
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(role)))
	return updated, nil
}

// CreateUser registers an account and, depending on the role, its student
// or staff profile. The account insert is committed on its own; when the
// profile cannot be stored the account is deleted again.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	email := strings.TrimSpace(input.Email)
	switch {
	case email == "":
		return nil, apperrors.NewValidationError("Email is required", map[string]any{"field": "email"})
	case strings.TrimSpace(input.Password) == "":
		return nil, apperrors.NewValidationError("Password is required", map[string]any{"field": "password"})
	case strings.TrimSpace(input.FullName) == "":
		return nil, apperrors.NewValidationError("Full Name is required", map[string]any{"field": "fullName"})
	case strings.TrimSpace(input.Role) == "":
		return nil, apperrors.NewValidationError("Role is required", map[string]any{"field": "role"})
	}
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Invalid role '%s'. Must be STUDENT, STAFF, or ADMIN", strings.ToUpper(strings.TrimSpace(input.Role))),
			map[string]any{"field": "role"})
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, emailExists(input.Email)
	}

	password := strings.TrimSpace(input.Password)
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes),
			map[string]any{"field": "password"})
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, emailExists(input.Email)
		}
		return nil, err
	}

	if err := s.createProfile(ctx, user, input); err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("compensating user delete failed", zap.String("user_id", user.ID), zap.Error(delErr))
			return nil, errors.Join(err, delErr)
		}
		s.logger.Info("user creation rolled back", zap.String("user_id", user.ID), zap.String("email", user.Email))
		return nil, err
	}

	s.logger.Debug("user created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) createProfile(ctx context.Context, user *domain.User, input UserCreateInput) error {
	switch user.Role {
	case domain.RoleStudent:
		code := strings.TrimSpace(input.StudentCode)
		if code == "" {
			return nil
		}
		exists, err := s.students.ExistsByStudentCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			return studentCodeExists(input.StudentCode)
		}
		className := strings.TrimSpace(input.ClassName)
		if className == "" {
			className = domain.DefaultClassName
		}
		err = s.students.Create(ctx, &domain.StudentProfile{
			UserID:      user.ID,
			StudentCode: code,
			ClassName:   className,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return studentCodeExists(input.StudentCode)
		}
		return err
	case domain.RoleStaff:
		position := strings.TrimSpace(input.Position)
		if position == "" {
			position = domain.DefaultStaffPosition
		}
		return s.staff.Create(ctx, &domain.StaffProfile{
			UserID:       user.ID,
			Position:     position,
			DepartmentID: s.departmentByName(ctx, input.DepartmentName),
		})
	default:
		return nil
	}
}

// departmentByName links a staff profile to a department when the name
// matches one exactly; anything else leaves the profile unattached.
func (s *UserService) departmentByName(ctx context.Context, name string) *string {
	name = strings.TrimSpace(name)
	if name == "" || s.departments == nil {
		return nil
	}
	department, err := s.departments.GetByName(ctx, name)
	if err != nil {
		s.logger.Debug("department not matched", zap.String("department", name), zap.Error(err))
		return nil
	}
	return &department.ID
}

func parseRole(raw string) (domain.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperrors.NewValidationError("Role cannot be null or empty", map[string]any{"field": "role"})
	}
	role, ok := domain.ParseRole(raw)
	if !ok {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("Invalid role: %s. Valid roles are: %s", raw, domain.RoleNames()),
			map[string]any{"field": "role"})
	}
	return role, nil
}

func provided(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func emailTaken(email string) error {
	return apperrors.NewValidationError("Email already exists: "+email, map[string]any{"field": "email"})
}

func emailExists(email string) error {
	return apperrors.NewValidationError(fmt.Sprintf("Email '%s' already exists", email), map[string]any{"field": "email"})
}

func studentCodeExists(code string) error {
	return apperrors.NewValidationError(fmt.Sprintf("Student Code '%s' already exists", code), map[string]any{"field": "studentCode"})
}
