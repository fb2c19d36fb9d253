package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/observability"
	"github.com/facilitydesk/helpdesk/internal/policy"
	"github.com/facilitydesk/helpdesk/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// Landing pages after a successful login.
const (
	StudentHome = "/tickets"
	StaffHome   = "/admin/dashboard"
)

// AuthService runs the two login surfaces against one credential store.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	sessions auth.SessionRegistry
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Sessions     auth.SessionRegistry
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        func() time.Time
}

// LoginResult is a freshly opened session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Redirect  string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		users:    deps.UserRepo,
		tokens:   deps.TokenManager,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		logger:   logger,
		now:      clock,
	}
}

// Login checks credentials and opens a session through surface. A role the
// surface does not admit discards the new session and fails with a role
// mismatch carrying the redirect target.
func (s *AuthService) Login(ctx context.Context, surface domain.EntrySurface, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.Login(surface, "invalid_credentials")
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.metrics.Login(surface, "invalid_credentials")
		return nil, apperrors.NewInvalidCredentials()
	}

	issued := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		Surface:   surface,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, err
	}

	if !policy.SurfaceAdmits(surface, user.Role) {
		if err := s.sessions.Revoke(ctx, session); err != nil {
			s.logger.Error("revoking mismatched session failed", zap.String("session_id", session.ID), zap.Error(err))
		}
		s.metrics.Login(surface, "role_mismatch")
		s.logger.Warn("login rejected for entry surface",
			zap.String("user_id", user.ID),
			zap.String("role", string(user.Role)),
			zap.String("surface", string(surface)))
		return nil, apperrors.NewRoleMismatch(policy.MismatchRedirect(surface, user.Role))
	}

	token, err := s.tokens.GenerateToken(session)
	if err != nil {
		return nil, err
	}
	s.metrics.Login(surface, "success")
	s.logger.Info("login succeeded", zap.String("user_id", user.ID), zap.String("surface", string(surface)))

	redirect := StudentHome
	if user.Role.IsStaffSide() {
		redirect = StaffHome
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Redirect:  redirect,
	}, nil
}

// Logout ends a session.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if err := s.sessions.Revoke(ctx, session); err != nil {
		return err
	}
	s.logger.Info("logout", zap.String("user_id", session.UserID), zap.String("session_id", session.ID))
	return nil
}
