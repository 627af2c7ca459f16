package models

import "time"

// Content kind constants.
const (
	ContentKindArticle = "article"
	ContentKindNews    = "news"
	ContentKindFAQ     = "faq"
	ContentKindVideo   = "video"
)

// ValidContentKind reports whether kind is a recognised content kind.
func ValidContentKind(kind string) bool {
	switch kind {
	case ContentKindArticle, ContentKindNews, ContentKindFAQ, ContentKindVideo:
		return true
	}
	return false
}

// ContentItem is an educational or news entry managed by admins.
type ContentItem struct {
	ContentID string    `json:"content_id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	HTML      string    `json:"html"`
	Summary   string    `json:"summary,omitempty"`
	Source    string    `json:"source,omitempty"`
	URL       string    `json:"url,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
