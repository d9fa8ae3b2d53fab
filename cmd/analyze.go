package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/orchestrator"
	"github.com/ziadkadry99/green-analyzer/internal/progress"
	"github.com/ziadkadry99/green-analyzer/internal/report"
	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

var (
	analyzeInput   string
	analyzeLookup  bool
	analyzeFresh   bool
	analyzeSave    string
	analyzeHTMLOut string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the whole wizard from an answers file",
	Long: `Loads questionnaire answers from a YAML file (field name: value), steps
through the wizard running every analysis, and prints the results. The
session is autosaved like the web wizard, so an interrupted run can be
resumed.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "YAML file with questionnaire answers")
	analyzeCmd.Flags().BoolVar(&analyzeLookup, "lookup", false, "Look up the location and auto-fill roof, solar and hydro data")
	analyzeCmd.Flags().BoolVar(&analyzeFresh, "fresh", false, "Discard any saved session without asking")
	analyzeCmd.Flags().StringVar(&analyzeSave, "save", "", "Save the results as a project with this name")
	analyzeCmd.Flags().StringVar(&analyzeHTMLOut, "html", "", "Write a printable HTML report to this path")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	reporter := progress.NewReporter()
	ctrl, err := newController(cfg, s, orchestrator.WithProgress(progress.Func(reporter)))
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("saving session failed", "error", err)
		}
	}()

	if err := ctrl.Boot(ctx); err != nil {
		return err
	}
	if err := answerRestore(ctx, ctrl); err != nil {
		return err
	}

	if analyzeInput != "" {
		data, err := os.ReadFile(analyzeInput)
		if err != nil {
			return fmt.Errorf("reading answers: %w", err)
		}
		patch, err := form.PatchFromYAML(data)
		if err != nil {
			return err
		}
		if err := ctrl.Merge(patch, nil); err != nil {
			return fmt.Errorf("applying answers: %w", err)
		}
	}

	if analyzeLookup {
		st := ctrl.State()
		rep, err := ctrl.LookupLocation(ctx, wizard.LocationRequest{Address: st.Form.Location})
		if err != nil {
			return fmt.Errorf("location lookup: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Location: %s\n", rep.Location)
		if auto := ctrl.State().Form.AutoFilledFields; len(auto) > 0 {
			fmt.Fprintf(os.Stderr, "Auto-filled: %s\n", strings.Join(auto, ", "))
		}
	}

	if err := walkSteps(ctx, ctrl); err != nil {
		return err
	}

	st := ctrl.State()
	if analyzeSave != "" {
		p, err := ctrl.SaveProject(ctx, analyzeSave)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved project %s (%s)\n", p.Name, p.ID)
	}

	if analyzeHTMLOut != "" {
		rr, err := report.New()
		if err != nil {
			return err
		}
		f, err := os.Create(analyzeHTMLOut)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		if err := rr.Render(f, report.View{Form: st.Form, Results: st.Results}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", analyzeHTMLOut)
		return nil
	}

	for _, k := range report.Keys(st.Form) {
		text := strings.TrimSpace(st.Results.Text(k))
		if text == "" {
			continue
		}
		fmt.Printf("# %s\n\n%s\n\n", report.Title(k), text)
	}
	return nil
}

// answerRestore settles a pending restore offer: discarded with --fresh or
// an answers file, otherwise the user is asked.
func answerRestore(ctx context.Context, ctrl *wizard.Controller) error {
	st := ctrl.State()
	if !st.RestoreOffered {
		return nil
	}
	if analyzeFresh || analyzeInput != "" {
		return ctrl.Restore(ctx, false)
	}
	prompt := promptui.Prompt{
		Label:     "A previous session was found. Resume it",
		IsConfirm: true,
		Default:   "y",
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return ctrl.Restore(ctx, true)
	case errors.Is(err, promptui.ErrAbort):
		return ctrl.Restore(ctx, false)
	default:
		return fmt.Errorf("restore prompt: %w", err)
	}
}

// walkSteps presses Next until the last step, waiting for each analysis.
func walkSteps(ctx context.Context, ctrl *wizard.Controller) error {
	for {
		st := ctrl.State()
		if st.Step >= len(st.Steps) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Step %d/%d: %s\n", st.Step, len(st.Steps), st.Steps[st.Step-1])
		err := ctrl.Next()
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			fields := make([]string, 0, len(verr.Errors))
			for name := range verr.Errors {
				fields = append(fields, name)
			}
			sort.Strings(fields)
			for _, name := range fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", name, verr.Errors[name])
			}
			return fmt.Errorf("step %d is incomplete; add the missing answers to the input file", st.Step)
		}
		if err != nil {
			return err
		}
		done := make(chan struct{})
		go func() {
			ctrl.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		if msg := ctrl.State().Error; msg != "" {
			return fmt.Errorf("analysis failed: %s", msg)
		}
	}
}
