package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/spreadsheet"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

var importHeader = []any{"Email", "Password", "Full Name", "Role", "Student Code", "Class Name", "Position", "Department Name"}

func TestImportUsersPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "existing@example.edu", "pw", domain.RoleStaff)

	file := workbook(t,
		importHeader,
		[]any{"", "pw", "No Email", "STUDENT"},
		[]any{"existing@example.edu", "pw", "Duplicate", "STAFF"},
		[]any{"new@example.edu", "pw", "New Student", "student", 12345, "SE1701"},
	)

	result := f.imports.ImportUsers(ctx, nil, file)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.False(t, result.Aborted)
	assert.Equal(t, []string{
		"Row 2: Email is required",
		"Row 3: Email 'existing@example.edu' already exists",
	}, result.Errors)

	user, err := f.store.Users().GetByEmail(ctx, "new@example.edu")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, user.Role)
	profile, err := f.store.Students().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "12345", profile.StudentCode)
	assert.Equal(t, "SE1701", profile.ClassName)

	imported := f.events.ofType(events.EventUsersImported)
	require.Len(t, imported, 1)
	assert.Equal(t, events.UsersImportedPayload{SuccessCount: 1, FailedCount: 2}, imported[0].Payload)
}

func TestImportUsersRollsBackDuplicateStudentCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file := workbook(t,
		importHeader,
		[]any{"a@example.edu", "pw", "A", "STUDENT", "SE1"},
		[]any{"b@example.edu", "pw", "B", "STUDENT", "SE1"},
		[]any{"c@example.edu", "pw", "C", "STAFF", "", "", "Technician"},
	)

	result := f.imports.ImportUsers(ctx, nil, file)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, []string{"Row 3: Student Code 'SE1' already exists"}, result.Errors)

	exists, err := f.store.Users().ExistsByEmail(ctx, "b@example.edu")
	require.NoError(t, err)
	assert.False(t, exists)

	staff, err := f.store.Users().GetByEmail(ctx, "c@example.edu")
	require.NoError(t, err)
	profile, err := f.store.Staff().GetByUserID(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, "Technician", profile.Position)
}

func TestImportUsersRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)

	file := workbook(t,
		importHeader,
		[]any{"ok@example.edu", "pw", "Fine", "STAFF"},
		[]any{"long@example.edu", strings.Repeat("ễ", 40), "Too Long", "STUDENT"},
	)

	result := f.imports.ImportUsers(context.Background(), nil, file)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, []string{"Row 3: Password must be at most 72 bytes"}, result.Errors)
}

func TestImportUsersStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  func(t *testing.T) *bytes.Buffer
		error string
	}{
		{
			name: "missing role column",
			file: func(t *testing.T) *bytes.Buffer {
				return workbook(t,
					[]any{"Email", "Password", "Full Name"},
					[]any{"a@example.edu", "pw", "A"},
				)
			},
			error: "Missing required columns. Required: Email, Password, Full Name, Role",
		},
		{
			name: "header only",
			file: func(t *testing.T) *bytes.Buffer {
				return workbook(t, importHeader)
			},
			error: "Excel file is empty or has no data rows",
		},
		{
			name: "not a workbook",
			file: func(t *testing.T) *bytes.Buffer {
				return bytes.NewBufferString("plain text")
			},
			error: "Error reading Excel file: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			result := f.imports.ImportUsers(context.Background(), nil, tt.file(t))
			assert.True(t, result.Aborted)
			assert.Zero(t, result.SuccessCount)
			assert.Zero(t, result.FailedCount)
			require.Len(t, result.Errors, 1)
			assert.True(t, strings.HasPrefix(result.Errors[0], tt.error), result.Errors[0])

			users, err := f.store.Users().List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

func TestImportUsersHeaderMatching(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// shuffled, differently cased headers and a blank row in between
	file := workbook(t,
		[]any{"ROLE", "full name", " email ", "PASSWORD", "Unrelated"},
		[]any{"admin", "Admin", "admin@example.edu", "pw", "x"},
		[]any{},
		[]any{"STAFF", "Staff", "staff@example.edu", "pw"},
	)

	result := f.imports.ImportUsers(ctx, nil, file)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Zero(t, result.FailedCount)
	assert.Empty(t, result.Errors)
}

func TestImportUsersTemplateRoundTrip(t *testing.T) {
	f := newFixture(t)
	data, err := f.imports.Template()
	require.NoError(t, err)

	result := f.imports.ImportUsers(context.Background(), nil, bytes.NewReader(data))
	assert.Equal(t, 4, result.SuccessCount, result.Errors)
	assert.Zero(t, result.FailedCount)

	rows, err := spreadsheet.ReadFirstSheet(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.TemplateHeaders, rows[0])
}

func TestImportUsersCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.imports.ImportUsers(ctx, nil, workbook(t, importHeader, []any{"a@example.edu", "pw", "A", "ADMIN"}))
	assert.True(t, result.Aborted)
	assert.Zero(t, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Import interrupted")
}

func TestImportResultSummary(t *testing.T) {
	result := &ImportResult{FailedCount: 12}
	for i := 0; i < 12; i++ {
		result.Errors = append(result.Errors, "e")
	}
	assert.Equal(t, "Failed to import 12 user(s). e; e; e; e; e; e; e; e; e; e ... and 2 more error(s)", result.Summary(10))

	short := &ImportResult{FailedCount: 1, Errors: []string{"Row 2: Email is required"}}
	assert.Equal(t, "Failed to import 1 user(s). Row 2: Email is required", short.Summary(10))

	assert.Empty(t, (&ImportResult{SuccessCount: 3}).Summary(10))
}

func TestValidateImportFile(t *testing.T) {
	assert.NoError(t, ValidateImportFile("users.xlsx", 10))
	assert.NoError(t, ValidateImportFile("USERS.XLS", 10))

	err := ValidateImportFile("", 0)
	assert.Equal(t, "Please select a file to upload", apperrors.MessageOf(err))
	err = ValidateImportFile("users.csv", 10)
	assert.Equal(t, "Invalid file format. Please upload an Excel file (.xlsx or .xls)", apperrors.MessageOf(err))
}
