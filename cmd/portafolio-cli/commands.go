package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/services/allocation"
	"github.com/abriltello/portafolioAI/internal/services/auth"
)

// newRootCmd builds the portafolio-cli command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portafolio-cli",
		Short: "PortafolioAI operator tools",
		Long: `Operator utilities for PortafolioAI: preview the allocation a risk tier
produces and prepare password hashes for seeding accounts.`,
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newHashPasswordCmd(), newVersionCmd())
	return root
}

type generatedAsset struct {
	Ticker        string           `json:"ticker"`
	Name          string           `json:"name"`
	AllocationPct decimal.Decimal  `json:"allocation_pct"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Reason        string           `json:"reason"`
}

type generatedPortfolio struct {
	RiskLevel      string           `json:"risk_level"`
	ExpectedReturn decimal.Decimal  `json:"expected_return"`
	Risk           decimal.Decimal  `json:"risk"`
	Assets         []generatedAsset `json:"assets"`
}

func newGenerateCmd() *cobra.Command {
	var (
		risk   string
		amount float64
		asJSON bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the portfolio generated for a risk tier",
		Long: `Print the portfolio the allocation engine generates for a risk tier.

Example usage:
  portafolio-cli generate --risk low
  portafolio-cli generate --risk high --amount 25000
  portafolio-cli generate --risk medium --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount < 0 {
				return errors.New("--amount must not be negative")
			}
			if _, ok := allocation.ParseTier(risk); !ok && strict {
				return fmt.Errorf("unknown risk tier %q", risk)
			}

			var prefs allocation.Preferences
			var total *decimal.Decimal
			if amount > 0 {
				d := decimal.NewFromFloat(amount)
				prefs.Amount = &d
				total = &d
			}
			p := allocation.Generate(allocation.Profile{RiskLevel: risk}, prefs)

			out := generatedPortfolio{
				RiskLevel:      p.Tier.String(),
				ExpectedReturn: p.Metrics.ExpectedReturn,
				Risk:           p.Metrics.Risk,
				Assets:         make([]generatedAsset, len(p.Assets)),
			}
			for i, a := range p.Assets {
				out.Assets[i] = generatedAsset{Ticker: a.Ticker, Name: a.Name, AllocationPct: a.Percent, Reason: a.Reason}
				if total != nil {
					v := total.Mul(a.Percent).Div(decimal.NewFromInt(100)).Round(2)
					out.Assets[i].Amount = &v
				}
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "Risk level: %s  expected return: %s%%  risk: %s%%\n\n",
				out.RiskLevel, out.ExpectedReturn.Shift(2).StringFixed(1), out.Risk.Shift(2).StringFixed(1))
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			if total != nil {
				fmt.Fprintln(tw, "TICKER\tALLOCATION\tAMOUNT\tNAME")
			} else {
				fmt.Fprintln(tw, "TICKER\tALLOCATION\tNAME")
			}
			for _, a := range out.Assets {
				if a.Amount != nil {
					fmt.Fprintf(tw, "%s\t%s%%\t%s\t%s\n", a.Ticker, a.AllocationPct.StringFixed(2), a.Amount.StringFixed(2), a.Name)
				} else {
					fmt.Fprintf(tw, "%s\t%s%%\t%s\n", a.Ticker, a.AllocationPct.StringFixed(2), a.Name)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&risk, "risk", string(allocation.DefaultTier), "Risk tier: low, medium or high")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Investment amount to split across the assets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on an unknown tier instead of using the default")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", common.NewDefaultConfig().Auth.BcryptCost, "bcrypt cost")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			common.LoadVersionFromFile()
			fmt.Fprintf(cmd.OutOrStdout(), "portafolio-cli %s\n", common.GetFullVersion())
		},
	}
}
