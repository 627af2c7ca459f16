package models

import "time"

// Role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account status constants.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// User is a registered account. The password hash never leaves the server;
// handlers render users through a response shape that omits it.
type User struct {
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	Role         string       `json:"role"`
	Status       string       `json:"status"`
	RiskProfile  *RiskProfile `json:"risk_profile,omitempty"`

	ResetToken       string     `json:"reset_token,omitempty"`
	ResetTokenExpiry *time.Time `json:"reset_token_expiry,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBlocked reports whether the account has been blocked by an admin.
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}

// RiskProfile holds the questionnaire answers and the derived risk level.
type RiskProfile struct {
	Answers         map[string]any `json:"answers,omitempty"`
	Country         string         `json:"country,omitempty"`
	ExperienceLevel string         `json:"experience_level,omitempty"`
	InvestmentGoal  string         `json:"investment_goal,omitempty"`
	Preferences     map[string]any `json:"preferences,omitempty"`
	RiskLevel       string         `json:"risk_level"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
