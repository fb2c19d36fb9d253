package dto

import (
	"time"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// UserResponse is the wire form of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserDetailResponse adds the profile rows to an account.
type UserDetailResponse struct {
	UserResponse
	Student *StudentProfileResponse `json:"student_profile"`
	Staff   *StaffProfileResponse   `json:"staff_profile"`
}

// StudentProfileResponse payload.
type StudentProfileResponse struct {
	StudentCode string `json:"student_code"`
	ClassName   string `json:"class_name"`
}

// StaffProfileResponse payload.
type StaffProfileResponse struct {
	Position     string  `json:"position"`
	DepartmentID *string `json:"department_id"`
}

// UpdateUserRequest is a partial update; omitted or blank fields stay.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" form:"full_name" validate:"omitempty,max=255"`
	Email    *string `json:"email" form:"email"`
	Role     *string `json:"role" form:"role"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role" form:"role"`
}

// CreateUserRequest creates one account directly.
type CreateUserRequest struct {
	Email          string `json:"email" form:"email"`
	Password       string `json:"password" form:"password"`
	FullName       string `json:"full_name" form:"full_name" validate:"max=255"`
	Role           string `json:"role" form:"role"`
	StudentCode    string `json:"student_code" form:"student_code"`
	ClassName      string `json:"class_name" form:"class_name"`
	Position       string `json:"position" form:"position"`
	DepartmentName string `json:"department_name" form:"department_name"`
}

// ImportResponse reports an import run.
type ImportResponse struct {
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// NewUserResponse maps an account to its wire form.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserList maps a slice of accounts.
func NewUserList(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}

// NewUserDetailResponse maps an account and its profiles.
func NewUserDetailResponse(user *domain.User, student *domain.StudentProfile, staff *domain.StaffProfile) UserDetailResponse {
	resp := UserDetailResponse{UserResponse: NewUserResponse(user)}
	if student != nil {
		resp.Student = &StudentProfileResponse{StudentCode: student.StudentCode, ClassName: student.ClassName}
	}
	if staff != nil {
		resp.Staff = &StaffProfileResponse{Position: staff.Position, DepartmentID: staff.DepartmentID}
	}
	return resp
}
