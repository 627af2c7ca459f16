package education

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/common"
)

type fakeGemini struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGemini) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func TestExplain_Glossary(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())

	tests := []struct {
		concept string
		want    string
	}{
		{"Acciones", "stocks"},
		{"BONOS", "bonds"},
		{"etf", "etf"},
		{"Diversificación", "diversification"},
		{"  inflación ", "inflation"},
		{"Inflation", "inflation"},
	}
	for _, tt := range tests {
		t.Run(tt.concept, func(t *testing.T) {
			exp, err := svc.Explain(context.Background(), tt.concept)
			require.NoError(t, err)
			assert.Equal(t, SourceGlossary, exp.Source)
			assert.Equal(t, glossary[tt.want], exp.Explanation)
		})
	}
}

func TestExplain_Unknown(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())

	exp, err := svc.Explain(context.Background(), "quantitative easing")
	require.NoError(t, err)
	assert.Equal(t, SourceNone, exp.Source)
	assert.Equal(t, NoInformation, exp.Explanation)
	assert.Equal(t, "quantitative easing", exp.Concept)
}

func TestExplain_Empty(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())
	_, err := svc.Explain(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyConcept)
}

func TestExplain_Gemini(t *testing.T) {
	g := &fakeGemini{text: "  A bond is a loan.  "}
	svc := NewService(g, common.NewSilentLogger())

	exp, err := svc.Explain(context.Background(), "bonds")
	require.NoError(t, err)
	assert.Equal(t, SourceGemini, exp.Source)
	assert.Equal(t, "A bond is a loan.", exp.Explanation)
	require.Len(t, g.prompts, 1)
	assert.Contains(t, g.prompts[0], `"bonds"`)
	assert.Contains(t, g.prompts[0], "Do not recommend")
}

func TestExplain_GeminiFailureFallsBack(t *testing.T) {
	svc := NewService(&fakeGemini{err: errors.New("quota exceeded")}, common.NewSilentLogger())

	exp, err := svc.Explain(context.Background(), "ETF")
	require.NoError(t, err)
	assert.Equal(t, SourceGlossary, exp.Source)

	svc = NewService(&fakeGemini{text: "   "}, common.NewSilentLogger())
	exp, err = svc.Explain(context.Background(), "unknown thing")
	require.NoError(t, err)
	assert.Equal(t, SourceNone, exp.Source)
}

func TestExplain_TruncatesConcept(t *testing.T) {
	g := &fakeGemini{text: "ok"}
	svc := NewService(g, common.NewSilentLogger())

	exp, err := svc.Explain(context.Background(), strings.Repeat("á", 500))
	require.NoError(t, err)
	assert.Len(t, []rune(exp.Concept), MaxConceptLength)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "diversificacion", Fold("Diversificación"))
	assert.Equal(t, "acciones", Fold(" ACCIONES "))
	assert.Equal(t, "nino", Fold("niño"))
}
