package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

const (
	userID   = "5b0d7c3e-8f53-4a8e-9a55-0a4f0b6c1d11"
	ticketID = "9e7a1f42-1c6b-4a1e-8d7f-3b2c5d6e7f80"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepositoryCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (full_name, email, password_hash, role)")).
		WithArgs("Nguyen Van A", "a@fpt.edu.vn", "hash", domain.RoleStudent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(userID, now, now))

	user := &domain.User{FullName: "Nguyen Van A", Email: "a@fpt.edu.vn", PasswordHash: "hash", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, now, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{Email: "dup@fpt.edu.vn", Role: domain.RoleStaff})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(userID, "Admin", "admin@fpt.edu.vn", "hash", domain.RoleAdmin, now, now))

	user, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "admin@fpt.edu.vn", user.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryMalformedIDIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(context.Background(), "42"), pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=$1")).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), userID), pgx.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=$1")).
		WithArgs(userID).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "tickets_created_by_fkey"})
	assert.ErrorIs(t, repo.Delete(context.Background(), userID), ErrReferenced)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoriesGetByUserID(t *testing.T) {
	mock := newMock(t)
	students := NewStudentRepository(mock)
	staff := NewStaffRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE user_id=$1")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "student_code", "class_name", "created_at"}).
			AddRow("c1f0a3de-6b57-4f0e-9a1c-2d3e4f5a6b7c", userID, "SE12345", "SE1701", now))
	profile, err := students.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "SE12345", profile.StudentCode)
	assert.Equal(t, "SE1701", profile.ClassName)

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE user_id=$1")).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)
	_, err = staff.GetByUserID(context.Background(), userID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = staff.GetByUserID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryListByStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewTicketRepository(mock)
	now := time.Now().UTC()
	status := domain.TicketStatusOverdue

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE 1=1 AND status=$1")).
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "subject", "description", "priority", "status", "created_by",
			"department_id", "room_id", "category_id", "created_at", "updated_at",
		}).AddRow(ticketID, "Projector", "Broken", domain.TicketPriorityHigh, status, userID,
			(*string)(nil), (*string)(nil), (*string)(nil), now, now))

	tickets, err := repo.List(context.Background(), TicketFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Projector", tickets[0].Subject)
	assert.Equal(t, domain.TicketStatusOverdue, tickets[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepositoryCountByStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewTicketRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM tickets GROUP BY status")).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(domain.TicketStatusCreated, 3).
			AddRow(domain.TicketStatusClosed, 2))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[domain.TicketStatusCreated])
	assert.Equal(t, 2, counts[domain.TicketStatusClosed])
	assert.Zero(t, counts[domain.TicketStatusOverdue])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorCommitsStatusChangeWithHistory(t *testing.T) {
	mock := newMock(t)
	tickets := NewTicketRepository(mock)
	history := NewTicketHistoryRepository(mock)
	tx := NewTransactor(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tickets SET status=$1")).
		WithArgs(domain.TicketStatusResolved, ticketID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ticket_history")).
		WithArgs(ticketID, (*string)(nil), domain.TicketStatusCreated, domain.TicketStatusResolved).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("h-1", now))
	mock.ExpectCommit()

	ticket := &domain.Ticket{ID: ticketID, Status: domain.TicketStatusResolved}
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := tickets.UpdateStatus(ctx, ticket); err != nil {
			return err
		}
		return history.Create(ctx, &domain.TicketHistory{
			TicketID:  ticketID,
			OldStatus: domain.TicketStatusCreated,
			NewStatus: domain.TicketStatusResolved,
		})
	})
	require.NoError(t, err)
	assert.Equal(t, now, ticket.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorRollsBackOnError(t *testing.T) {
	mock := newMock(t)
	tx := NewTransactor(mock)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tx.WithinTx(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
