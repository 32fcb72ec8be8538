package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/history"
)

// stockCmd shows the detail of one stock
var stockCmd = &cobra.Command{
	Use:   "stock [code]",
	Short: "종목 배당 상세",
	Long: `Shows the dividend detail of one stock.

Example:
  go run ./cmd/divcal stock 2330
  go run ./cmd/divcal stock 2330 --chart 2330.png --mode detail
  go run ./cmd/divcal stock 2330 --ics 2330.ics
  go run ./cmd/divcal stock search 台積`,
	Args: cobra.ExactArgs(1),
	RunE: runStock,
}

var stockSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "종목 검색 (자동완성)",
	Args:  cobra.ExactArgs(1),
	RunE:  runStockSearch,
}

var (
	stockChartPath string
	stockChartMode string
	stockICSPath   string
	stockShares    float64
	searchLimit    int
)

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockSearchCmd)

	stockCmd.Flags().StringVar(&stockChartPath, "chart", "", "write the dividend chart PNG to this file")
	stockCmd.Flags().StringVar(&stockChartMode, "mode", "annual", "chart mode: annual|detail")
	stockCmd.Flags().StringVar(&stockICSPath, "ics", "", "write the latest pay date as .ics to this file")
	stockCmd.Flags().Float64Var(&stockShares, "shares", 0, "shares for the payout estimate (default 1 lot)")
	stockSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "max results")
}

func runStock(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	today := contracts.Today(a.cfg.Calendar.Location())
	view, err := a.dividends.StockView(cmd.Context(), args[0], today)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("%s %s", view.Info.StockCode, view.Info.StockName))
	PrintField("Market", string(view.Info.MarketType))
	PrintField("Price", priceText(view.Info.DailyPrice))
	PrintField("Yield", calculator.FormatPercent(view.RealtimeYield))

	if view.Latest != nil {
		PrintField("Cash", fmt.Sprintf("%.2f", view.Latest.CashDividend))
		PrintField("Ex date", dateOr(view.Latest.ExDate, "尚未公告"))
		PrintField("Pay date", dateOr(view.Latest.PayDate, "尚未公告"))
	} else {
		PrintWarning("no recent dividend")
	}
	if view.AverageCash != nil {
		PrintField(fmt.Sprintf("Avg cash (%d)", view.HistoricalN), fmt.Sprintf("%.2f", *view.AverageCash))
	}
	if view.AverageFill != nil {
		PrintField("Avg fill days", fmt.Sprintf("%.1f", *view.AverageFill))
	}

	state := view.Calculator
	if stockShares > 0 {
		if state, err = calculator.Reduce(state, calculator.Action{Type: calculator.SetShares, Value: stockShares}); err != nil {
			return err
		}
	}
	display := state.Summarize().Display()
	PrintField("Payout", fmt.Sprintf("%s (%s shares)", display.DividendPayout, calculator.FormatAmount(state.Shares)))

	PrintHeader("History")
	for _, row := range view.Table {
		year := ""
		if row.RowSpan > 0 {
			year = row.Year
		}
		fmt.Printf("%-6s pay %-10s ex %-10s cash %6.2f\n", year, row.PayLabel, row.ExLabel, row.Record.CashDividend)
	}

	if stockChartPath != "" {
		png, err := a.dividends.StockChart(cmd.Context(), args[0], history.ParseChartMode(stockChartMode))
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(stockChartPath, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("\n✅ Chart written to %s\n", stockChartPath)
	}

	if stockICSPath != "" {
		body, _, err := a.dividends.StockICS(cmd.Context(), args[0], today)
		if err != nil {
			return fmt.Errorf("render ics: %w", err)
		}
		if err := os.WriteFile(stockICSPath, body, 0o644); err != nil {
			return err
		}
		fmt.Printf("✅ Calendar written to %s\n", stockICSPath)
	}

	return nil
}

func runStockSearch(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.dividends.Suggest(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No matching stocks")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s%s  %s\n", codeStyle.Render(item.StockCode), item.StockName, calculator.FormatPercent(item.YieldRate))
	}
	return nil
}

func priceText(p *float64) string {
	if p == nil || *p <= 0 {
		return "--"
	}
	return calculator.FormatAmount(*p)
}
