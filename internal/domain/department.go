package domain

import "time"

// Department groups rooms and staff.
type Department struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
}

// Room belongs to a department.
type Room struct {
	ID           string
	Name         string
	DepartmentID string
	CreatedAt    time.Time
}

// Category classifies tickets and carries an SLA target in hours.
type Category struct {
	ID          string
	Name        string
	Description string
	SLAHours    int
	CreatedAt   time.Time
}
