// Package memory provides map-backed repositories that enforce the same
// uniqueness and reference rules as the Postgres schema. It backs tests and
// database-less local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/repository"
)

// Store holds every table in memory.
type Store struct {
	mu sync.RWMutex

	users       map[string]domain.User
	students    map[string]domain.StudentProfile
	staff       map[string]domain.StaffProfile
	departments map[string]domain.Department
	rooms       map[string]domain.Room
	categories  map[string]domain.Category
	tickets     map[string]domain.Ticket
	history     []domain.TicketHistory

	now  func() time.Time
	last time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		students:    make(map[string]domain.StudentProfile),
		staff:       make(map[string]domain.StaffProfile),
		departments: make(map[string]domain.Department),
		rooms:       make(map[string]domain.Room),
		categories:  make(map[string]domain.Category),
		tickets:     make(map[string]domain.Ticket),
		now:         time.Now,
	}
}

func (s *Store) Users() repository.UserRepository             { return userStore{s} }
func (s *Store) Students() repository.StudentRepository       { return studentStore{s} }
func (s *Store) Staff() repository.StaffRepository            { return staffStore{s} }
func (s *Store) Departments() repository.DepartmentRepository { return departmentStore{s} }
func (s *Store) Categories() repository.CategoryRepository    { return categoryStore{s} }
func (s *Store) Tickets() repository.TicketRepository         { return ticketStore{s} }
func (s *Store) History() repository.TicketHistoryRepository  { return historyStore{s} }

// WithinTx runs fn directly; each repository call is atomic on its own.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stamp returns a strictly increasing timestamp so listings keep insertion
// order. Callers hold mu.
func (s *Store) stamp() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

func referenced(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrReferenced, constraint)
}

func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return duplicate("users_email_key")
		}
	}
	now := r.s.stamp()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == user.Email {
			return duplicate("users_email_key")
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.s.stamp()
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, ticket := range r.s.tickets {
		if ticket.CreatedByID == id {
			return referenced("tickets_created_by_fkey")
		}
	}
	delete(r.s.users, id)
	for key, profile := range r.s.students {
		if profile.UserID == id {
			delete(r.s.students, key)
		}
	}
	for key, profile := range r.s.staff {
		if profile.UserID == id {
			delete(r.s.staff, key)
		}
	}
	for i := range r.s.history {
		if entry := r.s.history[i]; entry.ChangedByID != nil && *entry.ChangedByID == id {
			r.s.history[i].ChangedByID = nil
		}
	}
	return nil
}

func (r userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r userStore) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sortByCreated(users, func(u domain.User) time.Time { return u.CreatedAt })
	return users, nil
}

type studentStore struct{ s *Store }

func (r studentStore) Create(_ context.Context, profile *domain.StudentProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[profile.UserID]; !ok {
		return referenced("students_user_id_fkey")
	}
	for _, existing := range r.s.students {
		if existing.StudentCode == profile.StudentCode {
			return duplicate("students_student_code_key")
		}
		if existing.UserID == profile.UserID {
			return duplicate("students_user_id_key")
		}
	}
	profile.ID = uuid.NewString()
	profile.CreatedAt = r.s.stamp()
	r.s.students[profile.ID] = *profile
	return nil
}

func (r studentStore) GetByUserID(_ context.Context, userID string) (*domain.StudentProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, profile := range r.s.students {
		if profile.UserID == userID {
			return &profile, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r studentStore) ExistsByStudentCode(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, profile := range r.s.students {
		if profile.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

type staffStore struct{ s *Store }

func (r staffStore) Create(_ context.Context, profile *domain.StaffProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[profile.UserID]; !ok {
		return referenced("staff_user_id_fkey")
	}
	if profile.DepartmentID != nil {
		if _, ok := r.s.departments[*profile.DepartmentID]; !ok {
			return referenced("staff_department_id_fkey")
		}
	}
	for _, existing := range r.s.staff {
		if existing.UserID == profile.UserID {
			return duplicate("staff_user_id_key")
		}
	}
	profile.ID = uuid.NewString()
	profile.CreatedAt = r.s.stamp()
	r.s.staff[profile.ID] = *profile
	return nil
}

func (r staffStore) GetByUserID(_ context.Context, userID string) (*domain.StaffProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, profile := range r.s.staff {
		if profile.UserID == userID {
			return &profile, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type departmentStore struct{ s *Store }

func (r departmentStore) Create(_ context.Context, department *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.departments {
		if existing.Name == department.Name {
			return duplicate("departments_name_key")
		}
	}
	department.ID = uuid.NewString()
	department.CreatedAt = r.s.stamp()
	r.s.departments[department.ID] = *department
	return nil
}

func (r departmentStore) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	department, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &department, nil
}

func (r departmentStore) GetByName(_ context.Context, name string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, department := range r.s.departments {
		if department.Name == name {
			return &department, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r departmentStore) List(_ context.Context) ([]domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	departments := make([]domain.Department, 0, len(r.s.departments))
	for _, department := range r.s.departments {
		departments = append(departments, department)
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

func (r departmentStore) CreateRoom(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[room.DepartmentID]; !ok {
		return referenced("rooms_department_id_fkey")
	}
	room.ID = uuid.NewString()
	room.CreatedAt = r.s.stamp()
	r.s.rooms[room.ID] = *room
	return nil
}

func (r departmentStore) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &room, nil
}

func (r departmentStore) ListRooms(_ context.Context) ([]domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rooms := make([]domain.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

type categoryStore struct{ s *Store }

func (r categoryStore) Create(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == category.Name {
			return duplicate("categories_name_key")
		}
	}
	category.ID = uuid.NewString()
	category.CreatedAt = r.s.stamp()
	r.s.categories[category.ID] = *category
	return nil
}

func (r categoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	category, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (r categoryStore) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	categories := make([]domain.Category, 0, len(r.s.categories))
	for _, category := range r.s.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

type ticketStore struct{ s *Store }

func (r ticketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ticket.CreatedByID]; !ok {
		return referenced("tickets_created_by_fkey")
	}
	ticket.ID = uuid.NewString()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = r.s.stamp()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketStore) UpdateStatus(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	current.Status = ticket.Status
	current.UpdatedAt = r.s.stamp()
	r.s.tickets[ticket.ID] = current
	ticket.UpdatedAt = current.UpdatedAt
	return nil
}

func (r ticketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r ticketStore) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tickets []domain.Ticket
	for _, ticket := range r.s.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
			continue
		}
		tickets = append(tickets, ticket)
	}
	sort.SliceStable(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}

func (r ticketStore) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[domain.TicketStatus]int)
	for _, ticket := range r.s.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

type historyStore struct{ s *Store }

func (r historyStore) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[entry.TicketID]; !ok {
		return referenced("ticket_history_ticket_id_fkey")
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.s.stamp()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r historyStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var entries []domain.TicketHistory
	for _, entry := range r.s.history {
		if entry.TicketID == ticketID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
