// Package policy holds the access rules of the helpdesk: which paths are
// public, which role may reach which area, and which login surface a role
// may use.
package policy

import (
	"path"
	"strings"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// PathClass groups request paths that share one access rule.
type PathClass int

const (
	ClassPublic PathClass = iota
	ClassTicketSubmission
	ClassStaffConsole
	ClassUserAdministration
	ClassAuthenticated
)

func (c PathClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassTicketSubmission:
		return "ticket_submission"
	case ClassStaffConsole:
		return "staff_console"
	case ClassUserAdministration:
		return "user_administration"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating a request against the policy.
type Decision int

const (
	Allow Decision = iota
	Deny
	RequireAuthentication
)

type rule struct {
	pattern string
	class   PathClass
}

// Order matters: the first matching rule wins, so narrower prefixes come
// before the broader ones that contain them.
var rules = []rule{
	{"/", ClassPublic},
	{"/login", ClassPublic},
	{"/admin/login", ClassPublic},
	{"/css/**", ClassPublic},
	{"/js/**", ClassPublic},
	{"/images/**", ClassPublic},
	{"/health/**", ClassPublic},
	{"/metrics", ClassPublic},
	{"/admin/users/**", ClassUserAdministration},
	{"/admin/**", ClassStaffConsole},
	{"/tickets/**", ClassTicketSubmission},
}

var allowedRoles = map[PathClass][]domain.Role{
	ClassTicketSubmission:   {domain.RoleStudent},
	ClassStaffConsole:       {domain.RoleStaff, domain.RoleAdmin},
	ClassUserAdministration: {domain.RoleAdmin},
	ClassAuthenticated:      {domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin},
}

// Classify maps a request path to its class. Paths are cleaned and compared
// case-insensitively, matching how the router resolves them.
func Classify(requestPath string) PathClass {
	normalized := normalize(requestPath)
	for _, r := range rules {
		if match(r.pattern, normalized) {
			return r.class
		}
	}
	return ClassAuthenticated
}

// Decide evaluates a role against a path class. A nil role is an anonymous caller.
func Decide(class PathClass, role *domain.Role) Decision {
	if class == ClassPublic {
		return Allow
	}
	if role == nil {
		return RequireAuthentication
	}
	for _, allowed := range allowedRoles[class] {
		if allowed == *role {
			return Allow
		}
	}
	return Deny
}

// AllowedRoles returns the roles admitted to a non-public class.
func AllowedRoles(class PathClass) []domain.Role {
	roles := allowedRoles[class]
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out
}

// SurfaceAdmits reports whether a session opened through surface may belong to role.
func SurfaceAdmits(surface domain.EntrySurface, role domain.Role) bool {
	switch surface {
	case domain.SurfaceStudent:
		return role == domain.RoleStudent
	case domain.SurfaceStaff:
		return role.IsStaffSide()
	default:
		return false
	}
}

// MismatchRedirect is where a login rejected by SurfaceAdmits is sent.
func MismatchRedirect(surface domain.EntrySurface, role domain.Role) string {
	if surface == domain.SurfaceStaff || role.IsStaffSide() {
		return "/admin/login?roleError=true"
	}
	return "/login?roleError=true"
}

func normalize(raw string) string {
	if raw == "" {
		return "/"
	}
	return path.Clean("/" + strings.ToLower(raw))
}

func match(pattern, p string) bool {
	prefix, ok := strings.CutSuffix(pattern, "/**")
	if !ok {
		return pattern == p
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
