package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/abriltello/portafolioAI/internal/models"
)

// TokenClaims are the identity claims carried by an access token.
type TokenClaims struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UserPatch holds the admin-editable user fields. Nil fields are left unchanged.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
	Status    *string `json:"status,omitempty"`
	RiskLevel *string `json:"risk_level,omitempty"`
}

// AuthService manages accounts, credentials and risk profiles.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	// Login returns the user and a signed access token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	SignToken(user *models.User) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
	// ShouldRefresh reports whether the token is past half its lifetime.
	ShouldRefresh(claims *TokenClaims) bool
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, actorID, userID string, patch UserPatch) (*models.User, error)
	SetStatus(ctx context.Context, actorID, userID, status string) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	// IssueResetToken creates a reset token for userID and returns it.
	IssueResetToken(ctx context.Context, actorID, userID string) (string, time.Time, error)
	SaveRiskProfile(ctx context.Context, userID string, profile models.RiskProfile) (*models.User, error)
	// EnsureAdmins promotes existing users listed in auth.admin_emails.
	EnsureAdmins(ctx context.Context) (int, error)
	// SweepResetTokens clears expired reset tokens.
	SweepResetTokens(ctx context.Context) (int, error)
}

// OptimizeRequest carries the optional profile overrides for a generation.
type OptimizeRequest struct {
	RiskLevel       string         `json:"risk_level"`
	InvestmentGoal  string         `json:"investment_goal"`
	ExperienceLevel string         `json:"experience_level"`
	Country         string         `json:"country"`
	Preferences     map[string]any `json:"preferences"`
}

// PortfolioPatch holds the admin-editable portfolio fields.
type PortfolioPatch struct {
	Assets    []models.Asset  `json:"assets,omitempty"`
	Metrics   *models.Metrics `json:"metrics,omitempty"`
	RiskLevel *string         `json:"risk_level,omitempty"`
}

// PortfolioService generates, stores and projects portfolios.
type PortfolioService interface {
	Optimize(ctx context.Context, userID string, req OptimizeRequest) (*models.Portfolio, error)
	Get(ctx context.Context, portfolioID string) (*models.Portfolio, error)
	// GetForUser returns the latest portfolio of userID when the caller may see it.
	GetForUser(ctx context.Context, requesterID, requesterRole, userID string) (*models.Portfolio, error)
	History(ctx context.Context, requesterID, requesterRole, userID string) ([]*models.Portfolio, error)
	Simulate(ctx context.Context, userID, portfolioID string, params models.SimulationParams) (*models.Simulation, error)
	List(ctx context.Context) ([]*models.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error)
	AdminUpdate(ctx context.Context, actorID, portfolioID string, patch PortfolioPatch) (*models.Portfolio, error)
	Delete(ctx context.Context, actorID, portfolioID string) error
	ListSimulations(ctx context.Context, portfolioID string) ([]models.SimulationRecord, error)
	DeleteSimulation(ctx context.Context, actorID, portfolioID, key string) error
	RenderAllocationChart(p *models.Portfolio) ([]byte, error)
}

// MarketService serves quotes and price history.
type MarketService interface {
	GetQuotes(ctx context.Context, tickers []string) ([]models.StockQuote, error)
	GetQuote(ctx context.Context, ticker string) (*models.StockQuote, error)
	GetHistory(ctx context.Context, ticker, period string) (*models.PriceHistory, error)
}

// ContentService manages educational content.
type ContentService interface {
	Save(ctx context.Context, actorID string, item *models.ContentItem) (*models.ContentItem, error)
	Get(ctx context.Context, contentID string) (*models.ContentItem, error)
	Delete(ctx context.Context, actorID, contentID string) error
	List(ctx context.Context, publishedOnly bool) ([]*models.ContentItem, error)
	News(ctx context.Context, limit int) ([]*models.ContentItem, error)
	ImportPDF(ctx context.Context, actorID, title, kind string, r io.ReaderAt, size int64) (*models.ContentItem, error)
}

// Explanation is the answer to a concept question.
type Explanation struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
	Source      string `json:"source"` // "gemini", "glossary" or "none"
}

// EducationService explains investment concepts.
type EducationService interface {
	Explain(ctx context.Context, concept string) (*Explanation, error)
}
