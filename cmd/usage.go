package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	usageSince  time.Duration
	usageRecent int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show analysis calls, tokens and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		s, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		var since time.Time
		if usageSince > 0 {
			since = time.Now().Add(-usageSince)
		}
		total, err := s.usage.Total(ctx, since)
		if err != nil {
			return err
		}

		fmt.Println("Usage")
		fmt.Println("=====")
		fmt.Printf("  Calls:          %d (%d failed)\n", total.Calls, total.Failed)
		fmt.Printf("  Input tokens:   %d\n", total.InputTokens)
		fmt.Printf("  Output tokens:  %d\n", total.OutputTokens)
		fmt.Printf("  Estimated cost: $%.4f (cap $%.2f per run)\n", total.CostUSD, cfg.MaxCostUSD)
		fmt.Println()

		byKey, err := s.usage.ByKey(ctx)
		if err != nil {
			return err
		}
		if len(byKey) > 0 {
			fmt.Println("  By analysis:")
			for _, k := range byKey {
				fmt.Printf("    %-20s %4d calls  $%.4f\n", k.AnalysisKey, k.Calls, k.CostUSD)
			}
			fmt.Println()
		}

		if usageRecent > 0 {
			recent, err := s.usage.Recent(ctx, usageRecent)
			if err != nil {
				return err
			}
			fmt.Println("  Recent calls:")
			for _, e := range recent {
				fmt.Printf("    %s  %-20s %-5s %-28s %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.AnalysisKey, e.Tier, e.Model, e.Status)
			}
		}
		return nil
	},
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 0, "Only count calls within this window, e.g. 24h")
	usageCmd.Flags().IntVar(&usageRecent, "recent", 0, "Also list this many recent calls")
	rootCmd.AddCommand(usageCmd)
}
