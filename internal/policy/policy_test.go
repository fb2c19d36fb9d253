package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

func rolePtr(r domain.Role) *domain.Role { return &r }

func TestClassify(t *testing.T) {
	cases := map[string]PathClass{
		"/":                       ClassPublic,
		"/login":                  ClassPublic,
		"/admin/login":            ClassPublic,
		"/css/site.css":           ClassPublic,
		"/images/logo/a.png":      ClassPublic,
		"/health/ready":           ClassPublic,
		"/metrics":                ClassPublic,
		"/admin/users":            ClassUserAdministration,
		"/admin/users/42/role":    ClassUserAdministration,
		"/ADMIN/Users/import":     ClassUserAdministration,
		"/admin/users/":           ClassUserAdministration,
		"/admin":                  ClassStaffConsole,
		"/admin/dashboard":        ClassStaffConsole,
		"/admin/tickets/1/status": ClassStaffConsole,
		"/admin/usersettings":     ClassStaffConsole,
		"/tickets":                ClassTicketSubmission,
		"/tickets/new":            ClassTicketSubmission,
		"/me":                     ClassAuthenticated,
		"/logout":                 ClassAuthenticated,
		"/loginx":                 ClassAuthenticated,
		"/admin/login/../users":   ClassUserAdministration,
		"//admin//users":          ClassUserAdministration,
	}
	for path, want := range cases {
		assert.Equal(t, want, Classify(path), path)
	}
}

func TestDecideTruthTable(t *testing.T) {
	student, staff, admin := rolePtr(domain.RoleStudent), rolePtr(domain.RoleStaff), rolePtr(domain.RoleAdmin)

	cases := []struct {
		class PathClass
		role  *domain.Role
		want  Decision
	}{
		{ClassPublic, nil, Allow},
		{ClassPublic, student, Allow},
		{ClassTicketSubmission, nil, RequireAuthentication},
		{ClassTicketSubmission, student, Allow},
		{ClassTicketSubmission, staff, Deny},
		{ClassTicketSubmission, admin, Deny},
		{ClassStaffConsole, student, Deny},
		{ClassStaffConsole, staff, Allow},
		{ClassStaffConsole, admin, Allow},
		{ClassUserAdministration, nil, RequireAuthentication},
		{ClassUserAdministration, student, Deny},
		{ClassUserAdministration, staff, Deny},
		{ClassUserAdministration, admin, Allow},
		{ClassAuthenticated, nil, RequireAuthentication},
		{ClassAuthenticated, student, Allow},
		{ClassAuthenticated, staff, Allow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Decide(tc.class, tc.role), "%s", tc.class)
	}
}

func TestSurfaceAdmits(t *testing.T) {
	assert.True(t, SurfaceAdmits(domain.SurfaceStudent, domain.RoleStudent))
	assert.False(t, SurfaceAdmits(domain.SurfaceStudent, domain.RoleStaff))
	assert.False(t, SurfaceAdmits(domain.SurfaceStudent, domain.RoleAdmin))
	assert.True(t, SurfaceAdmits(domain.SurfaceStaff, domain.RoleStaff))
	assert.True(t, SurfaceAdmits(domain.SurfaceStaff, domain.RoleAdmin))
	assert.False(t, SurfaceAdmits(domain.SurfaceStaff, domain.RoleStudent))
}

func TestMismatchRedirect(t *testing.T) {
	assert.Equal(t, "/admin/login?roleError=true", MismatchRedirect(domain.SurfaceStaff, domain.RoleStudent))
	assert.Equal(t, "/admin/login?roleError=true", MismatchRedirect(domain.SurfaceStudent, domain.RoleAdmin))
	assert.Equal(t, "/admin/login?roleError=true", MismatchRedirect(domain.SurfaceStudent, domain.RoleStaff))
}

func TestAllowedRolesReturnsCopy(t *testing.T) {
	roles := AllowedRoles(ClassStaffConsole)
	roles[0] = domain.RoleStudent
	assert.Equal(t, []domain.Role{domain.RoleStaff, domain.RoleAdmin}, AllowedRoles(ClassStaffConsole))
}
