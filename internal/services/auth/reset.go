package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

const resetSubject = "PortafolioAI password reset"

// newResetToken returns a URL-safe token and the digest that is persisted.
func newResetToken() (string, string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	return token, digestToken(token), nil
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) issueResetToken(ctx context.Context, user *models.User) (string, time.Time, error) {
	token, digest, err := newResetToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiry := s.now().UTC().Add(s.config.GetResetTokenExpiry())
	user.ResetToken = digest
	user.ResetTokenExpiry = &expiry
	user.ModifiedAt = s.now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to save reset token: %w", err)
	}

	body := fmt.Sprintf("Use this code to reset your PortafolioAI password: %s\nThe code expires at %s.", token, expiry.Format(time.RFC3339))
	if err := s.mailer.Send(ctx, user.Email, resetSubject, body); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.UserID).Msg("Failed to send reset email")
	}
	return token, expiry, nil
}

// ForgotPassword issues a reset token when the email belongs to a user.
// The result never reveals whether the email exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if _, _, err := s.issueResetToken(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.UserID).Msg("Password reset token issued")
	return nil
}

// IssueResetToken creates a reset token for userID on behalf of an admin
func (s *Service) IssueResetToken(ctx context.Context, actorID, userID string) (string, time.Time, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	token, expiry, err := s.issueResetToken(ctx, user)
	if err != nil {
		return "", time.Time{}, err
	}
	s.audit.Record(ctx, userID, actorID, models.AuditUserPasswordReset, "reset token issued")
	return token, expiry, nil
}

// ResetPassword sets a new password when token matches the stored reset token
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.ResetToken == "" || user.ResetTokenExpiry == nil || token == "" {
		return ErrInvalidResetToken
	}
	if subtle.ConstantTimeCompare([]byte(digestToken(token)), []byte(user.ResetToken)) != 1 {
		return ErrInvalidResetToken
	}
	if s.now().After(*user.ResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	user.ModifiedAt = s.now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.audit.Record(ctx, user.UserID, "", models.AuditUserPasswordReset, "password changed")
	return nil
}

// SweepResetTokens clears reset tokens past their expiry
func (s *Service) SweepResetTokens(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	now := s.now()
	cleared := 0
	for _, u := range users {
		if u.ResetTokenExpiry == nil || now.Before(*u.ResetTokenExpiry) {
			continue
		}
		u.ResetToken = ""
		u.ResetTokenExpiry = nil
		if err := s.users.Save(ctx, u); err != nil {
			s.logger.Warn().Err(err).Str("user_id", u.UserID).Msg("Failed to clear expired reset token")
			continue
		}
		cleared++
	}
	return cleared, nil
}
