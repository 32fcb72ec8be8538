package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/divcal/internal/profile"
)

// profileCmd validates a YAML calendar profile without starting anything
var profileCmd = &cobra.Command{
	Use:   "profile [path]",
	Short: "캘린더 프로필 검증",
	Long: `Validates a calendar profile and prints its hash and warnings.

Example:
  go run ./cmd/divcal profile config/profile/taiwan_default.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: checkProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

func checkProfile(cmd *cobra.Command, args []string) error {
	p, data, err := profile.Load(args[0])
	if err != nil {
		return err
	}

	snap, err := profile.NewSnapshot(p, data)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Profile %s (v%s)", snap.ProfileID, snap.Version))
	PrintField("Hash", snap.Hash)
	if presets := p.Presets(); presets != nil {
		PrintField("Presets", fmt.Sprint(presets))
	}
	if s := p.Schedules.CacheWarmup; s != "" {
		PrintField("Cache warmup", s)
	}
	if s := p.Schedules.StockListRefresh; s != "" {
		PrintField("Stock list", s)
	}

	for _, w := range profile.Warn(p) {
		PrintWarning(fmt.Sprintf("%s: %s", w.Code, w.Message))
	}
	fmt.Println("✅ valid")
	return nil
}
