package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"tradeJournal/config"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/bootstrap"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/risk"
	"tradeJournal/internal/utils"
)

func main() {
	export := flag.String("export", "", "also write the raw journal to this CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	env, err := bootstrap.Setup(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer env.Close()
	ctx := context.Background()

	trades, err := env.Repo.FindAll(ctx)
	if err != nil {
		env.Logger.Error(ctx, err, "Error loading trades")
		return
	}
	if len(trades) == 0 {
		fmt.Println("Journal is empty. Import trades first.")
		return
	}

	metrics, err := env.Service.Summary(ctx)
	if err != nil {
		env.Logger.Error(ctx, err, "Error computing summary")
		return
	}

	printSummary(metrics, cfg.AccountingBasis)
	printMonthly(metrics)
	printOpenPositions(trades)
	printRiskAlerts(ctx, env.Risk, trades, metrics)

	if *export != "" {
		if err := utils.WriteTradesToFile(*export, trades); err != nil {
			env.Logger.Error(ctx, err, "Error writing CSV", map[string]interface{}{"file": *export})
			return
		}
		fmt.Printf("\nExported %d trades to %s\n", len(trades), *export)
	}
}

func printSummary(m *analytics.JournalMetrics, basis domain.AccountingBasis) {
	fmt.Printf("## Journal Summary (%s basis)\n\n", basis)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Trades\tClosed\tOpen\tWinRate\tAvgWin\tAvgLoss\tRealized\tUnrealized\tPF\tMaxDD\tHeat\t")
	fmt.Fprintf(w, "%d\t%d\t%d\t%.2f\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t\n",
		m.TotalTrades,
		m.ClosedTrades,
		m.OpenTrades,
		m.WinRate*100,
		m.AverageWin.StringFixed(2),
		m.AverageLoss.StringFixed(2),
		m.TotalRealized.StringFixed(2),
		m.TotalUnrealized.StringFixed(2),
		m.ProfitFactor,
		m.MaxImpactDrawdown,
		m.PortfolioHeat,
	)
	w.Flush()

	fmt.Printf("\nExpectancy: %s  Avg holding: %.1f days  Streaks: %dW / %dL\n",
		m.Expectancy.StringFixed(2), m.AverageHoldingDays, m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
}

func printMonthly(m *analytics.JournalMetrics) {
	months := m.GetMonthlyRealized()
	if len(months) == 0 {
		return
	}
	fmt.Println("\n## Monthly Realized P&L")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Month\tP&L\t")
	for _, mr := range months {
		fmt.Fprintf(w, "%s\t%s\t\n", mr.Month.Format("Jan 2006"), mr.PL.StringFixed(2))
	}
	w.Flush()
}

func printOpenPositions(trades []ports.StoredTrade) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	header := false
	for _, st := range trades {
		t := st.Trade
		if t.PositionStatus == domain.StatusClosed {
			continue
		}
		if !header {
			fmt.Println("\n## Open Positions")
			fmt.Fprintln(w, "Name\tStatus\tOpenQty\tAvgEntry\tCMP\tUnrealized\tR:R\tHeat\tDays\t")
			header = true
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%.2f\t%d\t\n",
			t.Name,
			t.PositionStatus,
			t.Derived.OpenQty,
			t.Derived.AvgEntry.StringFixed(2),
			t.CMP.StringFixed(2),
			t.Derived.UnrealizedPL.StringFixed(2),
			formatRatio(t.Derived.RewardRisk),
			t.Derived.OpenHeat,
			t.Derived.HoldingDays,
		)
	}
	w.Flush()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "risk-free"
	}
	return fmt.Sprintf("%.2f", v)
}

func printRiskAlerts(ctx context.Context, manager *risk.RiskManager, trades []ports.StoredTrade, m *analytics.JournalMetrics) {
	if !manager.Enabled() {
		return
	}
	raw := make([]domain.Trade, len(trades))
	for i, st := range trades {
		raw[i] = st.Trade
	}
	fmt.Println("\n## Risk Alerts")
	breaches := risk.Breaches(manager.CheckRiskLimits(ctx, raw, m))
	if len(breaches) == 0 {
		fmt.Println("All risk limits hold.")
		return
	}
	for _, b := range breaches {
		fmt.Println("- " + b)
	}
}
