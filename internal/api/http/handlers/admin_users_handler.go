package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk/internal/api/dto"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/service"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// ImportLimits bounds uploads and the error preview of the import summary.
type ImportLimits struct {
	MaxUploadBytes int64
	ErrorPreview   int
}

// AdminUsersHandler serves account administration.
type AdminUsersHandler struct {
	users     *service.UserService
	imports   *service.ImportService
	validator *RequestValidator
	limits    ImportLimits
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(users *service.UserService, imports *service.ImportService, validator *RequestValidator, limits ImportLimits) *AdminUsersHandler {
	if limits.ErrorPreview <= 0 {
		limits.ErrorPreview = 10
	}
	return &AdminUsersHandler{users: users, imports: imports, validator: validator, limits: limits}
}

// ListUsers GET /admin/users.
func (h *AdminUsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// GetUser GET /admin/users/:id.
func (h *AdminUsersHandler) GetUser(c *fiber.Ctx) error {
	detail, err := h.users.GetUserDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserDetailResponse(detail.User, detail.Student, detail.Staff)})
}

// CreateUser POST /admin/users.
func (h *AdminUsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), service.UserCreateInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           req.Role,
		StudentCode:    req.StudentCode,
		ClassName:      req.ClassName,
		Position:       req.Position,
		DepartmentName: req.DepartmentName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminUsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.UserContext(), c.Params("id"), service.UserUpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user), "message": "User updated successfully"})
}

// ChangeRole POST /admin/users/:id/role.
func (h *AdminUsersHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.ChangeUserRole(c.UserContext(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user), "message": "User role changed successfully to: " + req.Role})
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminUsersHandler) DeleteUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.users.DeleteUser(c.UserContext(), c.Params("id"), principal.User.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ImportUsers POST /admin/users/import (multipart field "file").
func (h *AdminUsersHandler) ImportUsers(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("Please select a file to upload", map[string]any{"field": "file"})
	}
	if err := service.ValidateImportFile(header.Filename, header.Size); err != nil {
		return err
	}
	if h.limits.MaxUploadBytes > 0 && header.Size > h.limits.MaxUploadBytes {
		return apperrors.NewValidationError(
			fmt.Sprintf("File is too large. Maximum upload size is %d bytes", h.limits.MaxUploadBytes),
			map[string]any{"field": "file"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	result := h.imports.ImportUsers(c.UserContext(), actorUser(principal), file)

	resp := dto.ImportResponse{
		SuccessCount: result.SuccessCount,
		FailedCount:  result.FailedCount,
		Errors:       result.Errors,
		ErrorMessage: result.Summary(h.limits.ErrorPreview),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if result.SuccessCount > 0 {
		resp.Message = fmt.Sprintf("Successfully imported %d user(s)", result.SuccessCount)
	}
	if result.Aborted && len(result.Errors) > 0 {
		resp.ErrorMessage = result.Errors[0]
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DownloadTemplate GET /admin/users/import/template.
func (h *AdminUsersHandler) DownloadTemplate(c *fiber.Ctx) error {
	data, err := h.imports.Template()
	if err != nil {
		return err
	}
	c.Attachment(service.TemplateFilename)
	c.Set(fiber.HeaderContentType, service.TemplateContentType)
	return c.Send(data)
}
