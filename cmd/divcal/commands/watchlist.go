package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// watchlistCmd manages the tracked stocks of --owner
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "관심 종목 관리",
	Long: `Lists, adds or removes tracked stocks of --owner.

Example:
  go run ./cmd/divcal watchlist list
  go run ./cmd/divcal watchlist add 2330 0056
  go run ./cmd/divcal watchlist remove 2330`,
}

var (
	watchlistListCmd = &cobra.Command{
		Use:   "list",
		Short: "관심 종목 목록",
		RunE:  listWatchlist,
	}

	watchlistAddCmd = &cobra.Command{
		Use:   "add [code...]",
		Short: "관심 종목 추가",
		Args:  cobra.MinimumNArgs(1),
		RunE:  addWatchlist,
	}

	watchlistRemoveCmd = &cobra.Command{
		Use:   "remove [code...]",
		Short: "관심 종목 삭제",
		Args:  cobra.MinimumNArgs(1),
		RunE:  removeWatchlist,
	}
)

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
}

func listWatchlist(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	codes, err := a.watchlist.List(cmd.Context(), owner)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Watchlist of %s (%d)", owner, len(codes)))
	for _, code := range codes {
		fmt.Println("  " + codeStyle.Render(code))
	}
	return nil
}

func addWatchlist(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, code := range args {
		normalized, err := a.watchlist.Add(cmd.Context(), owner, code)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s tracked\n", normalized)
	}
	return nil
}

func removeWatchlist(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, code := range args {
		normalized, err := a.watchlist.Remove(cmd.Context(), owner, code)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s removed\n", normalized)
	}
	return nil
}
