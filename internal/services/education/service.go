// Package education answers questions about investment concepts.
package education

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

const (
	SourceGemini   = "gemini"
	SourceGlossary = "glossary"
	SourceNone     = "none"
)

// MaxConceptLength bounds the concept accepted from callers.
const MaxConceptLength = 120

// NoInformation is returned for concepts neither Gemini nor the glossary can explain.
const NoInformation = "No information is available for this concept yet. Try a more general term such as stocks, bonds, ETF, diversification or inflation."

// ErrEmptyConcept is returned when no concept is given.
var ErrEmptyConcept = errors.New("concept is required")

const promptTemplate = `You are a financial educator for beginner retail investors.
Explain the concept %q in plain language in at most three short paragraphs.
Include one everyday example. Do not recommend specific securities and do not give personal financial advice.`

var glossary = map[string]string{
	"stocks":          "Stocks are shares of ownership in a company. Their price moves with the company's results and market sentiment, so they offer higher long-term growth with more short-term volatility.",
	"bonds":           "Bonds are loans to a government or company that pay periodic interest and return the principal at maturity. They are usually less volatile than stocks and provide steadier income.",
	"etf":             "An ETF (exchange-traded fund) is a basket of assets that trades on an exchange like a single stock. ETFs give cheap, instant diversification across many securities.",
	"diversification": "Diversification means spreading money across different assets, sectors and regions so that a loss in one holding has a smaller effect on the whole portfolio.",
	"inflation":       "Inflation is the general rise in prices over time, which reduces the purchasing power of money. Investments need to grow faster than inflation to increase real wealth.",
}

var aliases = map[string]string{
	"acciones":        "stocks",
	"accion":          "stocks",
	"stock":           "stocks",
	"bonos":           "bonds",
	"bono":            "bonds",
	"bond":            "bonds",
	"etfs":            "etf",
	"diversificacion": "diversification",
	"inflacion":       "inflation",
}

// Compile-time interface check
var _ interfaces.EducationService = (*Service)(nil)

// Service implements EducationService
type Service struct {
	gemini interfaces.GeminiClient
	logger *common.Logger
}

// NewService creates an education service. gemini may be nil.
func NewService(gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{gemini: gemini, logger: logger}
}

// Explain returns an explanation of concept, from Gemini when configured and
// from the built-in glossary otherwise or when Gemini fails.
func (s *Service) Explain(ctx context.Context, concept string) (*interfaces.Explanation, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, ErrEmptyConcept
	}
	if len([]rune(concept)) > MaxConceptLength {
		concept = string([]rune(concept)[:MaxConceptLength])
	}

	if s.gemini != nil {
		text, err := s.gemini.GenerateContent(ctx, fmt.Sprintf(promptTemplate, concept))
		if err == nil && strings.TrimSpace(text) != "" {
			return &interfaces.Explanation{Concept: concept, Explanation: strings.TrimSpace(text), Source: SourceGemini}, nil
		}
		if err != nil {
			s.logger.Warn().Str("concept", concept).Err(err).Msg("Gemini explanation failed, using glossary")
		}
	}

	if text, ok := Lookup(concept); ok {
		return &interfaces.Explanation{Concept: concept, Explanation: text, Source: SourceGlossary}, nil
	}
	return &interfaces.Explanation{Concept: concept, Explanation: NoInformation, Source: SourceNone}, nil
}

// Lookup finds concept in the glossary ignoring case and accents.
func Lookup(concept string) (string, bool) {
	key := Fold(concept)
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	text, ok := glossary[key]
	return text, ok
}

// Fold lower-cases s and strips diacritics, so "Diversificación" becomes "diversificacion".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
