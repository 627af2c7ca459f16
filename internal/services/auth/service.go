// Package auth provides account, credential and risk-profile services
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/audit"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("account is blocked")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidToken       = errors.New("invalid token")
)

// Compile-time interface check
var _ interfaces.AuthService = (*Service)(nil)

// Service implements AuthService
type Service struct {
	users  interfaces.UserStore
	config *common.AuthConfig
	mailer interfaces.Mailer
	audit  *audit.Recorder
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(users interfaces.UserStore, config *common.AuthConfig, mailer interfaces.Mailer, recorder *audit.Recorder, logger *common.Logger) *Service {
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	return &Service{
		users:  users,
		config: config,
		mailer: mailer,
		audit:  recorder,
		logger: logger,
		now:    time.Now,
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return validationError("email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return validationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// passwordBytes truncates to the 72 bytes bcrypt considers.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

func (s *Service) hashPassword(password string) (string, error) {
	cost := s.config.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// HashPassword hashes a password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	s := &Service{config: &common.AuthConfig{BcryptCost: cost}}
	return s.hashPassword(password)
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, validationError("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if s.config.IsAdminEmail(email) {
		role = models.RoleAdmin
	}

	now := s.now().UTC()
	user := &models.User{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.audit.Record(ctx, user.UserID, "", models.AuditUserRegister, "")
	s.logger.Info().Str("user_id", user.UserID).Str("role", role).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns the user with a new access token
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.IsBlocked() {
		return nil, "", ErrUserBlocked
	}

	now := s.now().UTC()
	user.LastLoginAt = &now
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("Failed to record last login")
	}

	token, err := s.SignToken(user)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, user.UserID, "", models.AuditUserLogin, "")
	return user, token, nil
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

// ListUsers returns all users
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// UpdateUser applies an admin patch to a user
func (s *Service) UpdateUser(ctx context.Context, actorID, userID string, patch interfaces.UserPatch) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		user.Name = name
		changed = append(changed, "name")
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if other, err := s.users.GetByEmail(ctx, email); err == nil && other.UserID != user.UserID {
				return nil, ErrEmailTaken
			}
			user.Email = email
			changed = append(changed, "email")
		}
	}
	if patch.Role != nil {
		switch *patch.Role {
		case models.RoleUser, models.RoleAdmin:
			user.Role = *patch.Role
			changed = append(changed, "role")
		default:
			return nil, validationError("role must be user or admin")
		}
	}
	if patch.Status != nil {
		switch *patch.Status {
		case models.UserStatusActive, models.UserStatusBlocked:
			if actorID == userID && *patch.Status == models.UserStatusBlocked {
				return nil, validationError("admins cannot block themselves")
			}
			user.Status = *patch.Status
			changed = append(changed, "status")
		default:
			return nil, validationError("status must be active or blocked")
		}
	}
	if patch.RiskLevel != nil {
		if user.RiskProfile == nil {
			user.RiskProfile = &models.RiskProfile{}
		}
		user.RiskProfile.RiskLevel = ResolveRiskLevel(*patch.RiskLevel)
		user.RiskProfile.UpdatedAt = s.now().UTC()
		changed = append(changed, "risk_level")
	}

	user.ModifiedAt = s.now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.audit.Record(ctx, userID, actorID, models.AuditUserUpdate, strings.Join(changed, ","))
	return user, nil
}

// SetStatus blocks or unblocks a user
func (s *Service) SetStatus(ctx context.Context, actorID, userID, status string) (*models.User, error) {
	if actorID == userID && status == models.UserStatusBlocked {
		return nil, validationError("admins cannot block themselves")
	}
	if status != models.UserStatusActive && status != models.UserStatusBlocked {
		return nil, validationError("status must be active or blocked")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	user.ModifiedAt = s.now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	action := models.AuditUserUnblock
	if status == models.UserStatusBlocked {
		action = models.AuditUserBlock
	}
	s.audit.Record(ctx, userID, actorID, action, "")
	s.logger.Info().Str("user_id", userID).Str("status", status).Str("actor", actorID).Msg("User status changed")
	return user, nil
}

// DeleteUser removes a user account
func (s *Service) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return validationError("admins cannot delete themselves")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, actorID, models.AuditUserDelete, "")
	return nil
}

// EnsureAdmins promotes existing users whose email is listed in admin_emails
func (s *Service) EnsureAdmins(ctx context.Context) (int, error) {
	if len(s.config.AdminEmails) == 0 {
		return 0, nil
	}

	promoted := 0
	for _, email := range s.config.AdminEmails {
		email = normalizeEmail(email)
		if email == "" {
			continue
		}
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return promoted, fmt.Errorf("failed to load %s: %w", email, err)
		}
		if user.IsAdmin() {
			continue
		}
		user.Role = models.RoleAdmin
		user.ModifiedAt = s.now().UTC()
		if err := s.users.Save(ctx, user); err != nil {
			return promoted, fmt.Errorf("failed to promote %s: %w", email, err)
		}
		promoted++
		s.logger.Info().Str("user_id", user.UserID).Msg("Promoted user to admin")
	}
	return promoted, nil
}
