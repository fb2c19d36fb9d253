package domain

import "time"

const (
	DefaultClassName     = "N/A"
	DefaultStaffPosition = "Staff"
)

// StudentProfile carries the student-specific attributes of a user.
type StudentProfile struct {
	ID          string
	UserID      string
	StudentCode string
	ClassName   string
	CreatedAt   time.Time
}

// StaffProfile carries the staff-specific attributes of a user.
type StaffProfile struct {
	ID           string
	UserID       string
	Position     string
	DepartmentID *string
	CreatedAt    time.Time
}
