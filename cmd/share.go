package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/report"
	"github.com/ziadkadry99/green-analyzer/internal/session"
	"github.com/ziadkadry99/green-analyzer/internal/share"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Create and read share links",
}

var shareProject string

var shareEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print a share link for the saved session or a project",
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

		var p share.Payload
		if shareProject != "" {
			proj, err := s.projects.Get(shareProject)
			if err != nil {
				return err
			}
			latest := proj.Latest()
			p = share.Payload{FormData: latest.FormData, AnalysisResults: latest.AnalysisResults}
		} else {
			snap, err := session.NewManager(s.kv, logger).Pending(ctx)
			if err != nil {
				return err
			}
			if snap == nil {
				return errors.New("no saved session; pass --project to share a project")
			}
			p = share.Payload{FormData: snap.FormData, AnalysisResults: snap.AnalysisResults}
		}

		link, err := share.Link(cfg.ShareBase(), p)
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	},
}

var shareDecodeJSON bool

var shareDecodeCmd = &cobra.Command{
	Use:   "decode <link-or-payload>",
	Short: "Show what a share link contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok, err := share.FromURL(args[0])
		if !ok && err == nil {
			p, err = share.Decode(args[0])
		}
		if err != nil {
			return err
		}

		if shareDecodeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Printf("Location: %s\n", p.FormData.Location)
		fmt.Printf("Role:     %s\n", p.FormData.Role)
		for _, k := range report.Keys(p.FormData) {
			if text := p.AnalysisResults.Text(k); text != "" {
				fmt.Printf("\n# %s\n\n%s\n", report.Title(k), text)
			}
		}
		return nil
	},
}

func init() {
	shareEncodeCmd.Flags().StringVar(&shareProject, "project", "", "Share the latest run of this project")
	shareDecodeCmd.Flags().BoolVar(&shareDecodeJSON, "json", false, "Print the raw payload as JSON")
	shareCmd.AddCommand(shareEncodeCmd, shareDecodeCmd)
	rootCmd.AddCommand(shareCmd)
}
