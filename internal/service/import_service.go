package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/observability"
	"github.com/facilitydesk/helpdesk/internal/spreadsheet"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// Import column headers, matched case-insensitively.
const (
	ColumnEmail          = "Email"
	ColumnPassword       = "Password"
	ColumnFullName       = "Full Name"
	ColumnRole           = "Role"
	ColumnStudentCode    = "Student Code"
	ColumnClassName      = "Class Name"
	ColumnPosition       = "Position"
	ColumnDepartmentName = "Department Name"
)

// Import template download metadata.
const (
	TemplateContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TemplateFilename    = "user_import_template.xlsx"
)

// ImportResult aggregates the outcome of one import run.
type ImportResult struct {
	SuccessCount int
	FailedCount  int
	Errors       []string
	Aborted      bool
}

// Summary renders the failure message shown after an import, listing at
// most limit errors. It is empty when no row failed.
func (r *ImportResult) Summary(limit int) string {
	if r.FailedCount == 0 || len(r.Errors) == 0 {
		return ""
	}
	shown := r.Errors
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Failed to import %d user(s). ", r.FailedCount)
	b.WriteString(strings.Join(shown, "; "))
	if rest := len(r.Errors) - len(shown); rest > 0 {
		fmt.Fprintf(&b, " ... and %d more error(s)", rest)
	}
	return b.String()
}

// ImportService turns uploaded spreadsheets into accounts.
type ImportService struct {
	users      *UserService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewImportService constructs the service.
func NewImportService(users *UserService, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		users:      users,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// ValidateImportFile checks the upload before any parsing happens.
func ValidateImportFile(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" || size <= 0 {
		return apperrors.NewValidationError("Please select a file to upload", map[string]any{"field": "file"})
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return nil
	default:
		return apperrors.NewValidationError("Invalid file format. Please upload an Excel file (.xlsx or .xls)", map[string]any{"field": "file"})
	}
}

// Template builds the downloadable import workbook.
func (s *ImportService) Template() ([]byte, error) {
	data, err := spreadsheet.BuildTemplate()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return data, nil
}

type columnIndex map[string]int

func (c columnIndex) value(row []string, column string) string {
	i, ok := c[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ImportUsers reads the first worksheet of r and creates one account per
// data row. Rows fail independently; structural problems abort the run
// before any row is processed.
func (s *ImportService) ImportUsers(ctx context.Context, actor *domain.User, r io.Reader) *ImportResult {
	result := &ImportResult{}
	defer s.finish(ctx, actor, result)

	rows, err := spreadsheet.ReadFirstSheet(r)
	if err != nil {
		s.logger.Error("reading import workbook failed", zap.Error(err))
		return result.abort("Error reading Excel file: " + err.Error())
	}
	if len(rows) < 2 {
		return result.abort("Excel file is empty or has no data rows")
	}
	if len(rows[0]) == 0 {
		return result.abort("Header row is missing")
	}

	columns := indexHeader(rows[0])
	for _, required := range []string{ColumnEmail, ColumnPassword, ColumnFullName, ColumnRole} {
		if _, ok := columns[required]; !ok {
			return result.abort("Missing required columns. Required: Email, Password, Full Name, Role")
		}
	}

	for i := 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, "Import interrupted: "+err.Error())
			result.Aborted = true
			return result
		}
		if blankRow(rows[i]) {
			continue
		}
		if err := s.importRow(ctx, columns, rows[i]); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, apperrors.MessageOf(err)))
			continue
		}
		result.SuccessCount++
	}
	return result
}

func (s *ImportService) importRow(ctx context.Context, columns columnIndex, row []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while importing row", zap.Any("panic", r))
			err = fmt.Errorf("%v", r)
		}
	}()

	_, err = s.users.CreateUser(ctx, UserCreateInput{
		Email:          columns.value(row, ColumnEmail),
		Password:       columns.value(row, ColumnPassword),
		FullName:       columns.value(row, ColumnFullName),
		Role:           columns.value(row, ColumnRole),
		StudentCode:    columns.value(row, ColumnStudentCode),
		ClassName:      columns.value(row, ColumnClassName),
		Position:       columns.value(row, ColumnPosition),
		DepartmentName: columns.value(row, ColumnDepartmentName),
	})
	return err
}

func (s *ImportService) finish(ctx context.Context, actor *domain.User, result *ImportResult) {
	s.metrics.ImportRows(result.SuccessCount, result.FailedCount)
	s.logger.Info("user import completed",
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailedCount),
		zap.Bool("aborted", result.Aborted))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventUsersImported,
		Actor: events.ActorFor(actor),
		Payload: events.UsersImportedPayload{
			SuccessCount: result.SuccessCount,
			FailedCount:  result.FailedCount,
			Aborted:      result.Aborted,
		},
	})
}

func (r *ImportResult) abort(message string) *ImportResult {
	r.Errors = append(r.Errors, message)
	r.Aborted = true
	return r
}

// indexHeader maps each recognized column to its position. The first
// matching header cell wins.
func indexHeader(header []string) columnIndex {
	recognized := []string{
		ColumnEmail, ColumnPassword, ColumnFullName, ColumnRole,
		ColumnStudentCode, ColumnClassName, ColumnPosition, ColumnDepartmentName,
	}
	columns := columnIndex{}
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		for _, column := range recognized {
			if _, seen := columns[column]; seen {
				continue
			}
			if strings.EqualFold(name, column) {
				columns[column] = i
			}
		}
	}
	return columns
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
