package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/report"
	"github.com/ziadkadry99/green-analyzer/internal/session"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage saved projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		list := s.projects.Summaries()
		if len(list) == 0 {
			fmt.Println("No saved projects.")
			return nil
		}
		fmt.Printf("%-42s  %-24s  %-5s  %s\n", "ID", "NAME", "RUNS", "UPDATED")
		for _, p := range list {
			fmt.Printf("%-42s  %-24s  %-5d  %s\n", p.ID, p.Name, p.RunCount,
				time.UnixMilli(p.UpdatedAt).Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var projectsShowHTML string

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the run history and latest results of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.projects.Get(args[0])
		if err != nil {
			return err
		}
		latest := p.Latest()

		if projectsShowHTML != "" {
			rr, err := report.New()
			if err != nil {
				return err
			}
			f, err := os.Create(projectsShowHTML)
			if err != nil {
				return fmt.Errorf("creating report file: %w", err)
			}
			defer f.Close()
			return rr.Render(f, report.View{Form: latest.FormData, Results: latest.AnalysisResults})
		}

		fmt.Printf("%s (%s)\n", p.Name, p.ID)
		fmt.Printf("  Location: %s\n", latest.FormData.Location)
		fmt.Printf("  Role:     %s\n", latest.FormData.Role)
		fmt.Println("  Runs:")
		for i, r := range p.Runs {
			fmt.Printf("    %d. %s  %d section(s)\n", i+1, r.Time().Format("2006-01-02 15:04"), filled(r.AnalysisResults))
		}
		fmt.Println()
		for _, k := range report.Keys(latest.FormData) {
			if text := latest.AnalysisResults.Text(k); text != "" {
				fmt.Printf("# %s\n\n%s\n\n", report.Title(k), text)
			}
		}
		return nil
	},
}

func filled(r analysis.Results) int {
	n := 0
	for _, k := range analysis.AllKeys {
		if r.Text(k) != "" {
			n++
		}
	}
	return n
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.projects.Rename(cmd.Context(), args[0], args[1])
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Long:  `Deletes a project. When it is the active project of the saved session, the session is discarded as well.`,
	Args:  cobra.ExactArgs(1),
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

		if err := s.projects.Delete(ctx, args[0]); err != nil {
			return err
		}
		return discardIfActive(ctx, session.NewManager(s.kv, logger), args[0])
	},
}

func discardIfActive(ctx context.Context, m *session.Manager, id string) error {
	snap, err := m.Pending(ctx)
	if err != nil || snap == nil || snap.ActiveProjectID != id {
		return err
	}
	fmt.Fprintln(os.Stderr, "Deleted the active project; the saved session was discarded.")
	return m.Discard(ctx)
}

func init() {
	projectsShowCmd.Flags().StringVar(&projectsShowHTML, "html", "", "Write the latest run as an HTML report to this path")
	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsRenameCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
