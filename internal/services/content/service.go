// Package content manages educational and news content
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
	"github.com/abriltello/portafolioAI/internal/services/audit"
)

const (
	// SummaryLength is the rune limit of a derived summary.
	SummaryLength = 200
	// MaxImportChars caps the text kept from an imported PDF.
	MaxImportChars = 50000
)

// ErrInvalidContent is returned for items that fail validation.
var ErrInvalidContent = errors.New("invalid content")

// Compile-time interface check
var _ interfaces.ContentService = (*Service)(nil)

// Service implements ContentService
type Service struct {
	store  interfaces.ContentStore
	md     goldmark.Markdown
	audit  *audit.Recorder
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new content service
func NewService(store interfaces.ContentStore, recorder *audit.Recorder, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		audit:  recorder,
		logger: logger,
		now:    time.Now,
	}
}

// Render converts markdown to HTML. Raw HTML in the source is not passed through.
func (s *Service) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Save creates or updates an item, rendering its body to HTML
func (s *Service) Save(ctx context.Context, actorID string, item *models.ContentItem) (*models.ContentItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidContent)
	}
	if item.Kind == "" {
		item.Kind = models.ContentKindArticle
	}
	if !models.ValidContentKind(item.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidContent, item.Kind)
	}

	now := s.now().UTC()
	if item.ContentID == "" {
		item.ContentID = uuid.New().String()
		item.CreatedAt = now
	} else if existing, err := s.store.Get(ctx, item.ContentID); err == nil {
		item.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	html, err := s.Render(item.Body)
	if err != nil {
		return nil, err
	}
	item.HTML = html
	if strings.TrimSpace(item.Summary) == "" {
		item.Summary = Summarize(item.Body, SummaryLength)
	}

	if err := s.store.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	s.audit.Record(ctx, "", actorID, models.AuditContentSave, item.ContentID)
	return item, nil
}

// Summarize returns the first paragraph of body stripped of markdown
// markers, cut to at most limit runes.
func Summarize(body string, limit int) string {
	var para []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		line = strings.TrimLeft(line, "#>*- ")
		line = strings.NewReplacer("**", "", "__", "", "`", "").Replace(line)
		if line != "" {
			para = append(para, line)
		}
	}
	text := strings.Join(para, " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

// Get returns an item by id
func (s *Service) Get(ctx context.Context, contentID string) (*models.ContentItem, error) {
	return s.store.Get(ctx, contentID)
}

// Delete removes an item
func (s *Service) Delete(ctx context.Context, actorID, contentID string) error {
	if err := s.store.Delete(ctx, contentID); err != nil {
		return err
	}
	s.audit.Record(ctx, "", actorID, models.AuditContentDelete, contentID)
	return nil
}

// List returns items newest first
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]*models.ContentItem, error) {
	return s.store.List(ctx, publishedOnly)
}

// News returns published news items, newest first. limit <= 0 returns all.
func (s *Service) News(ctx context.Context, limit int) ([]*models.ContentItem, error) {
	items, err := s.store.List(ctx, true)
	if err != nil {
		return nil, err
	}
	news := make([]*models.ContentItem, 0, len(items))
	for _, it := range items {
		if it.Kind == models.ContentKindNews {
			news = append(news, it)
		}
	}
	if limit > 0 && len(news) > limit {
		news = news[:limit]
	}
	return news, nil
}

// ImportPDF extracts the text of a PDF into an unpublished item
func (s *Service) ImportPDF(ctx context.Context, actorID, title, kind string, r io.ReaderAt, size int64) (*models.ContentItem, error) {
	text, err := ExtractPDFText(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: the PDF contains no extractable text", ErrInvalidContent)
	}

	item := &models.ContentItem{
		Title:     title,
		Kind:      kind,
		Body:      text,
		Source:    "pdf",
		Published: false,
	}
	saved, err := s.Save(ctx, actorID, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("content_id", saved.ContentID).Int("chars", len(text)).Msg("Imported PDF content")
	return saved, nil
}

// ExtractPDFText returns the plain text of every page, truncated to MaxImportChars.
func ExtractPDFText(r io.ReaderAt, size int64) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(strings.TrimSpace(pageText))
		sb.WriteString("\n\n")

		if sb.Len() > MaxImportChars {
			break
		}
	}

	result := strings.TrimSpace(sb.String())
	if len(result) > MaxImportChars {
		result = strings.ToValidUTF8(result[:MaxImportChars], "")
	}
	return result, nil
}
