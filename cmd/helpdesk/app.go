package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/config"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/observability"
	"github.com/facilitydesk/helpdesk/internal/persistence"
	"github.com/facilitydesk/helpdesk/internal/repository"
	"github.com/facilitydesk/helpdesk/internal/repository/memory"
	"github.com/facilitydesk/helpdesk/internal/service"
)

type stores struct {
	users       repository.UserRepository
	students    repository.StudentRepository
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	tickets     repository.TicketRepository
	history     repository.TicketHistoryRepository
	tx          repository.Transactor
}

// application holds the wired services of one process.
type application struct {
	cfg        *config.Config
	logger     *zap.Logger
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	stores     stores
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	tokens     *auth.TokenManager
	sessions   auth.SessionRegistry

	users      *service.UserService
	tickets    *service.TicketService
	imports    *service.ImportService
	auth       *service.AuthService
	references *service.ReferenceService
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := migrateUp(cfg.Postgres.DSN, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}

	rds, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	app := &application{
		cfg:        cfg,
		logger:     logger,
		postgres:   pg,
		redis:      rds,
		stores:     newStores(pg, logger),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
	}
	if rds.Enabled() {
		app.sessions = auth.NewRedisSessionRegistry(rds.Client, cfg.Auth.SingleSession)
	} else {
		app.sessions = auth.NewMemorySessionRegistry(cfg.Auth.SingleSession)
	}

	s := app.stores
	app.users = service.NewUserService(service.UserDependencies{
		UserRepo:       s.users,
		StudentRepo:    s.students,
		StaffRepo:      s.staff,
		DepartmentRepo: s.departments,
		Transactor:     s.tx,
		BcryptCost:     cfg.Auth.BcryptCost,
		Logger:         logger,
	})
	app.tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:     s.tickets,
		HistoryRepo:    s.history,
		DepartmentRepo: s.departments,
		CategoryRepo:   s.categories,
		Transactor:     s.tx,
		Dispatcher:     app.dispatcher,
		Metrics:        app.metrics,
		Logger:         logger,
	})
	app.imports = service.NewImportService(app.users, app.dispatcher, app.metrics, logger)
	app.auth = service.NewAuthService(service.AuthDependencies{
		UserRepo:     s.users,
		TokenManager: app.tokens,
		Sessions:     app.sessions,
		Metrics:      app.metrics,
		Logger:       logger,
	})
	app.references = service.NewReferenceService(s.departments, s.categories)
	return app, nil
}

func newStores(pg *persistence.Postgres, logger *zap.Logger) stores {
	if !pg.Enabled() {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.New()
		return stores{
			users:       store.Users(),
			students:    store.Students(),
			staff:       store.Staff(),
			departments: store.Departments(),
			categories:  store.Categories(),
			tickets:     store.Tickets(),
			history:     store.History(),
			tx:          store,
		}
	}
	pool := pg.Pool
	return stores{
		users:       repository.NewUserRepository(pool),
		students:    repository.NewStudentRepository(pool),
		staff:       repository.NewStaffRepository(pool),
		departments: repository.NewDepartmentRepository(pool),
		categories:  repository.NewCategoryRepository(pool),
		tickets:     repository.NewTicketRepository(pool),
		history:     repository.NewTicketHistoryRepository(pool),
		tx:          repository.NewTransactor(pool),
	}
}

func (a *application) seeder() *service.Seeder {
	return service.NewSeeder(a.users, a.stores.users, a.stores.departments, a.stores.categories, a.logger)
}

func (a *application) Close() {
	a.redis.Close()
	a.postgres.Close()
}
