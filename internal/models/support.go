package models

import "time"

// Support ticket status constants.
const (
	SupportStatusPending    = "pending"
	SupportStatusInProgress = "in_progress"
	SupportStatusResolved   = "resolved"
)

// ValidSupportStatus reports whether status is a recognised ticket status.
func ValidSupportStatus(status string) bool {
	switch status {
	case SupportStatusPending, SupportStatusInProgress, SupportStatusResolved:
		return true
	}
	return false
}

// SupportTicket is a message submitted through the contact form.
type SupportTicket struct {
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
