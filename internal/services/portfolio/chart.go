package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/abriltello/portafolioAI/internal/models"
)

// RenderAllocationChart renders a PNG pie chart of a portfolio's allocation.
func (s *Service) RenderAllocationChart(p *models.Portfolio) ([]byte, error) {
	return RenderAllocationChart(p)
}

// RenderAllocationChart renders a PNG pie chart of a portfolio's allocation.
func RenderAllocationChart(p *models.Portfolio) ([]byte, error) {
	values := make([]chart.Value, 0, len(p.Assets))
	for _, a := range p.Assets {
		if a.AllocationPct <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: a.AllocationPct,
			Label: fmt.Sprintf("%s %.2f%%", a.Ticker, a.AllocationPct),
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("portfolio %s has no allocated assets", p.PortfolioID)
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Allocation (%s risk)", p.RiskLevel),
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
