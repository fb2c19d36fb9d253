package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/policy"
	"github.com/facilitydesk/helpdesk/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. User carries the role as
// currently stored, which may differ from the role at login time.
type Principal struct {
	User    *domain.User
	Session domain.Session
}

// Role returns the caller's current role.
func (p *Principal) Role() domain.Role {
	return p.User.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionRegistry
	users    repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionRegistry, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users}
}

// Gate applies the access policy to every request. Public paths pass
// untouched; everything else needs a live session whose current role the
// policy admits. Denials never say which resource was refused.
func (m *AuthMiddleware) Gate(c *fiber.Ctx) error {
	class := policy.Classify(c.Path())
	if class == policy.ClassPublic {
		return c.Next()
	}

	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}

	role := principal.Role()
	switch policy.Decide(class, &role) {
	case policy.Allow:
		c.Locals(principalKey, principal)
		return c.Next()
	case policy.RequireAuthentication:
		return apperrors.NewUnauthorized("authentication required")
	default:
		return apperrors.NewForbidden("access denied")
	}
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	session := claims.Session()

	active, err := m.sessions.Active(c.UserContext(), session)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !active {
		return nil, apperrors.NewSessionExpired()
	}

	user, err := m.users.GetByID(c.UserContext(), session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewSessionExpired()
		}
		return nil, apperrors.MapError(err)
	}

	return &Principal{User: user, Session: session}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireRole guards a route group with an explicit role set, on top of the
// path policy applied by Gate.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
