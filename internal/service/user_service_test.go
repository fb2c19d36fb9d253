package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

func TestCreateUserProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	department := &domain.Department{Name: "IT Department", Location: "Building A"}
	require.NoError(t, f.store.Departments().Create(ctx, department))

	student, err := f.users.CreateUser(ctx, UserCreateInput{
		Email: " s1@example.edu ", Password: "pw", FullName: "Student One", Role: "student", StudentCode: "SE1",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1@example.edu", student.Email)
	assert.Equal(t, domain.RoleStudent, student.Role)
	assert.NoError(t, auth.ComparePassword(student.PasswordHash, "pw"))
	profile, err := f.store.Students().GetByUserID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "SE1", profile.StudentCode)
	assert.Equal(t, domain.DefaultClassName, profile.ClassName)

	staff, err := f.users.CreateUser(ctx, UserCreateInput{
		Email: "staff@example.edu", Password: "pw", FullName: "Staff", Role: "STAFF", DepartmentName: "IT Department",
	})
	require.NoError(t, err)
	staffProfile, err := f.store.Staff().GetByUserID(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStaffPosition, staffProfile.Position)
	require.NotNil(t, staffProfile.DepartmentID)
	assert.Equal(t, department.ID, *staffProfile.DepartmentID)

	noCode, err := f.users.CreateUser(ctx, UserCreateInput{Email: "s2@example.edu", Password: "pw", FullName: "S2", Role: "STUDENT"})
	require.NoError(t, err)
	_, err = f.store.Students().GetByUserID(ctx, noCode.ID)
	assert.Error(t, err)

	admin, err := f.users.CreateUser(ctx, UserCreateInput{Email: "a@example.edu", Password: "pw", FullName: "A", Role: "ADMIN", Position: "Boss"})
	require.NoError(t, err)
	_, err = f.store.Staff().GetByUserID(ctx, admin.ID)
	assert.Error(t, err)
}

func TestGetUserDetailIncludesProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student, err := f.users.CreateUser(ctx, UserCreateInput{Email: "s@example.edu", Password: "pw", FullName: "S", Role: "STUDENT", StudentCode: "SE9"})
	require.NoError(t, err)

	detail, err := f.users.GetUserDetail(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, detail.User.ID)
	require.NotNil(t, detail.Student)
	assert.Equal(t, "SE9", detail.Student.StudentCode)
	assert.Nil(t, detail.Staff)

	// The student profile outlives a role change.
	_, err = f.users.ChangeUserRole(ctx, student.ID, "STAFF")
	require.NoError(t, err)
	detail, err = f.users.GetUserDetail(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, detail.User.Role)
	assert.NotNil(t, detail.Student)

	admin := f.createUser(t, "admin@example.edu", "pw", domain.RoleAdmin)
	detail, err = f.users.GetUserDetail(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Student)
	assert.Nil(t, detail.Staff)

	_, err = f.users.GetUserDetail(ctx, uuid.NewString())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCreateUserRollsBackOnDuplicateStudentCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, UserCreateInput{Email: "first@example.edu", Password: "pw", FullName: "First", Role: "STUDENT", StudentCode: "SE1"})
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, UserCreateInput{Email: "second@example.edu", Password: "pw", FullName: "Second", Role: "STUDENT", StudentCode: "SE1"})
	require.Error(t, err)
	assert.Equal(t, "Student Code 'SE1' already exists", apperrors.MessageOf(err))

	exists, err := f.store.Users().ExistsByEmail(ctx, "second@example.edu")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateUserValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "taken@example.edu", "pw", domain.RoleStudent)

	tests := []struct {
		name    string
		input   UserCreateInput
		message string
	}{
		{"everything missing", UserCreateInput{}, "Email is required"},
		{"password", UserCreateInput{Email: "x@example.edu", Role: "bogus"}, "Password is required"},
		{"full name", UserCreateInput{Email: "x@example.edu", Password: "pw"}, "Full Name is required"},
		{"role", UserCreateInput{Email: "x@example.edu", Password: "pw", FullName: "X"}, "Role is required"},
		{"bad role", UserCreateInput{Email: "taken@example.edu", Password: "pw", FullName: "X", Role: " guest "}, "Invalid role 'GUEST'. Must be STUDENT, STAFF, or ADMIN"},
		{"taken email", UserCreateInput{Email: "taken@example.edu", Password: "pw", FullName: "X", Role: "STAFF"}, "Email 'taken@example.edu' already exists"},
		{"password over bcrypt limit", UserCreateInput{Email: "x@example.edu", Password: strings.Repeat("ễ", 30), FullName: "X", Role: "STAFF"}, "Password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.CreateUser(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.message, apperrors.MessageOf(err))
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		})
	}
}

func TestCreateUserPasswordLengthCountsBytes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, UserCreateInput{Email: "ascii@example.edu", Password: strings.Repeat("a", 72), FullName: "A", Role: "ADMIN"})
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, UserCreateInput{Email: "long@example.edu", Password: strings.Repeat("a", 73), FullName: "L", Role: "ADMIN"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	exists, err := f.store.Users().ExistsByEmail(ctx, "long@example.edu")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateUserPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "user@example.edu", "pw", domain.RoleStudent)
	f.createUser(t, "other@example.edu", "pw", domain.RoleStudent)

	updated, err := f.users.UpdateUser(ctx, user.ID, UserUpdateInput{FullName: strPtr("Renamed"), Email: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.Equal(t, "user@example.edu", updated.Email)
	assert.Equal(t, domain.RoleStudent, updated.Role)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	_, err = f.users.UpdateUser(ctx, user.ID, UserUpdateInput{Email: strPtr("other@example.edu")})
	require.Error(t, err)
	assert.Equal(t, "Email already exists: other@example.edu", apperrors.MessageOf(err))

	_, err = f.users.UpdateUser(ctx, user.ID, UserUpdateInput{Role: strPtr("janitor")})
	assert.Equal(t, "Invalid role: janitor. Valid roles are: [STUDENT, STAFF, ADMIN]", apperrors.MessageOf(err))

	updated, err = f.users.UpdateUser(ctx, user.ID, UserUpdateInput{Email: strPtr("user@example.edu"), Role: strPtr("staff")})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, updated.Role)

	_, err = f.users.UpdateUser(ctx, uuid.NewString(), UserUpdateInput{FullName: strPtr("x")})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "admin@example.edu", "pw", domain.RoleAdmin)
	other := f.createUser(t, "other@example.edu", "pw", domain.RoleStaff)

	err := f.users.DeleteUser(ctx, admin.ID, admin.Email)
	require.Error(t, err)
	assert.Equal(t, "You cannot delete your own account. Please contact another administrator.", apperrors.MessageOf(err))

	require.NoError(t, f.users.DeleteUser(ctx, other.ID, admin.Email))
	_, err = f.users.GetUserByID(ctx, other.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Equal(t, "User not found with ID: "+other.ID, apperrors.MessageOf(err))
}

func TestDeleteUserWithTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "admin@example.edu", "pw", domain.RoleAdmin)
	student := f.createUser(t, "student@example.edu", "pw", domain.RoleStudent)
	_, err := f.tickets.CreateTicket(ctx, student, &TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)

	err = f.users.DeleteUser(ctx, student.ID, admin.Email)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	_, err = f.users.GetUserByID(ctx, student.ID)
	assert.NoError(t, err)
}

func TestChangeUserRoleKeepsProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student, err := f.users.CreateUser(ctx, UserCreateInput{Email: "s@example.edu", Password: "pw", FullName: "S", Role: "STUDENT", StudentCode: "SE9"})
	require.NoError(t, err)

	updated, err := f.users.ChangeUserRole(ctx, student.ID, "Admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	_, err = f.store.Students().GetByUserID(ctx, student.ID)
	assert.NoError(t, err)

	_, err = f.users.ChangeUserRole(ctx, student.ID, "")
	assert.Equal(t, "Role cannot be null or empty", apperrors.MessageOf(err))
}
