package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/observability"
	"github.com/facilitydesk/helpdesk/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	events   *eventLog
	metrics  *observability.Metrics
	tickets  *TicketService
	users    *UserService
	imports  *ImportService
	auth     *AuthService
	sessions *auth.MemorySessionRegistry
	tokens   *auth.TokenManager
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) record(_ context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) ofType(eventType events.EventType) []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.Event
	for _, event := range l.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.New()
	dispatcher := events.NewInMemoryDispatcher()
	log := &eventLog{}
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketStatusChanged, events.EventUsersImported} {
		dispatcher.Subscribe(eventType, log.record)
	}
	metrics := observability.NewMetrics()

	users := NewUserService(UserDependencies{
		UserRepo:       store.Users(),
		StudentRepo:    store.Students(),
		StaffRepo:      store.Staff(),
		DepartmentRepo: store.Departments(),
		Transactor:     store,
		BcryptCost:     bcrypt.MinCost,
		Logger:         logger,
	})
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	sessions := auth.NewMemorySessionRegistry(true)

	return &fixture{
		store:   store,
		events:  log,
		metrics: metrics,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:     store.Tickets(),
			HistoryRepo:    store.History(),
			DepartmentRepo: store.Departments(),
			CategoryRepo:   store.Categories(),
			Transactor:     store,
			Dispatcher:     dispatcher,
			Metrics:        metrics,
			Logger:         logger,
		}),
		users:   users,
		imports: NewImportService(users, dispatcher, metrics, logger),
		auth: NewAuthService(AuthDependencies{
			UserRepo:     store.Users(),
			TokenManager: tokens,
			Sessions:     sessions,
			Metrics:      metrics,
			Logger:       logger,
		}),
		sessions: sessions,
		tokens:   tokens,
	}
}

func (f *fixture) createUser(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), UserCreateInput{
		Email:    email,
		Password: password,
		FullName: "Test " + string(role),
		Role:     string(role),
	})
	require.NoError(t, err)
	return user
}

// workbook renders rows into an xlsx file. Row 0 is the header.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func strPtr(s string) *string {
	return &s
}
