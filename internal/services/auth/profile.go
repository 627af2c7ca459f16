package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
)

// riskToleranceKey is the questionnaire answer used when risk_level is absent.
const riskToleranceKey = "risk_tolerance"

// ResolveRiskLevel maps a submitted level onto a tier name; unknown levels become medium.
func ResolveRiskLevel(raw string) string {
	return allocation.ResolveTier(raw).String()
}

// SaveRiskProfile stores the questionnaire for userID
func (s *Service) SaveRiskProfile(ctx context.Context, userID string, profile models.RiskProfile) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := strings.TrimSpace(profile.RiskLevel)
	if level == "" {
		if v, ok := profile.Answers[riskToleranceKey].(string); ok {
			level = v
		}
	}
	if raw := strings.TrimSpace(level); raw != "" {
		if _, ok := allocation.ParseTier(raw); !ok {
			s.logger.Debug().Str("user_id", userID).Str("risk_level", raw).Msg("Unknown risk level, using default tier")
		}
	}
	profile.RiskLevel = ResolveRiskLevel(level)
	profile.UpdatedAt = s.now().UTC()

	user.RiskProfile = &profile
	user.ModifiedAt = profile.UpdatedAt
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save risk profile: %w", err)
	}

	s.audit.Record(ctx, userID, "", models.AuditRiskProfileSave, profile.RiskLevel)
	return user, nil
}
