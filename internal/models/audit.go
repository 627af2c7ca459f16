package models

import "time"

// Audit action constants.
const (
	AuditUserRegister      = "user.register"
	AuditUserLogin         = "user.login"
	AuditUserPasswordReset = "user.password_reset"
	AuditUserUpdate        = "user.update"
	AuditUserDelete        = "user.delete"
	AuditUserBlock         = "user.block"
	AuditUserUnblock       = "user.unblock"
	AuditRiskProfileSave   = "risk_profile.save"
	AuditPortfolioGenerate = "portfolio.generate"
	AuditPortfolioUpdate   = "portfolio.update"
	AuditPortfolioDelete   = "portfolio.delete"
	AuditSimulationRun     = "simulation.run"
	AuditSimulationDelete  = "simulation.delete"
	AuditContentSave       = "content.save"
	AuditContentDelete     = "content.delete"
	AuditConfigUpdate      = "config.update"
	AuditSupportUpdate     = "support.update"
)

// AuditEntry records an action taken by or on behalf of a user.
type AuditEntry struct {
	EntryID   string    `json:"entry_id"`
	UserID    string    `json:"user_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
