package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spend-sage/internal/advisor"
	"github.com/Veraticus/spend-sage/internal/cli"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/config"
	"github.com/Veraticus/spend-sage/internal/report"
	"github.com/Veraticus/spend-sage/internal/service"
	"github.com/Veraticus/spend-sage/internal/sheets"
)

// Output formats for the advise command.
const (
	outputText = "text"
	outputJSON = "json"
)

func adviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise <username>",
		Short: "Generate financial advice from a user's purchase history",
		Long: `Classify every purchase of a user into a brand and category, aggregate
spending into five views, and ask the language model to explain each view
and write personalized advice against the user's goals and budget.

Narrative steps that keep failing are reported as not available; the run
only fails when the final advice cannot be produced.

Examples:
  sage advise alice
  sage advise alice --output json > advice.json
  sage advise alice --sheets --archive`,
		Args: cobra.ExactArgs(1),
		RunE: runAdvise,
	}

	cmd.Flags().StringP("output", "o", outputText, "Output format (text, json)")
	cmd.Flags().Bool("sheets", false, "Also write the report to Google Sheets")
	cmd.Flags().Bool("archive", false, "Also archive the report to object storage")
	cmd.Flags().Int("max-attempts", 5, "Attempts per narrative step (0 retries until interrupted)")
	cmd.Flags().Int("graph-concurrency", 1, "Graph explanations requested in parallel")
	cmd.Flags().StringSlice("seed-brands", nil, "Brands known before the run (comma-separated)")
	cmd.Flags().StringSlice("seed-categories", nil, "Categories known before the run (comma-separated)")
	cmd.Flags().Bool("no-progress", false, "Hide the classification progress bar")

	// Bind to viper
	_ = viper.BindPFlag("advice.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("advice.max_attempts", cmd.Flags().Lookup("max-attempts"))
	_ = viper.BindPFlag("advice.graph_concurrency", cmd.Flags().Lookup("graph-concurrency"))
	_ = viper.BindPFlag("advice.seed_brands", cmd.Flags().Lookup("seed-brands"))
	_ = viper.BindPFlag("advice.seed_categories", cmd.Flags().Lookup("seed-categories"))

	return cmd
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	username := args[0]
	logger := slog.Default()

	output := viper.GetString("advice.output")
	if output != outputText && output != outputJSON {
		return common.NewUserError(fmt.Sprintf("unknown output format %q (use text or json)", output), common.ErrInvalidConfig)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	components, err := newLLMComponents(ctx, logger)
	if err != nil {
		return err
	}
	defer components.stop()

	withSheets, _ := cmd.Flags().GetBool("sheets")
	withArchive, _ := cmd.Flags().GetBool("archive")
	writer, err := reportWriters(ctx, cmd.OutOrStdout(), output, withSheets, withArchive, logger)
	if err != nil {
		return err
	}

	adviceConfig := adviceConfigFromViper()
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		adviceConfig.Progress = cli.NewProgress(os.Stderr, "Classifying purchases...").Update
	}

	adv := advisor.New(store, components.classifier, components.summarizer, adviceConfig, logger)
	return executeAdvice(ctx, adv, username, writer)
}

// adviceConfigFromViper reads retry and vocabulary settings.
func adviceConfigFromViper() advisor.Config {
	retry := advisor.DefaultRetryPolicy()
	retry.MaxAttempts = viper.GetInt("advice.max_attempts")
	if d := viper.GetDuration("advice.initial_delay"); d > 0 {
		retry.InitialDelay = d
	}
	if d := viper.GetDuration("advice.max_delay"); d > 0 {
		retry.MaxDelay = d
	}

	return advisor.Config{
		Retry:            retry,
		GraphConcurrency: viper.GetInt("advice.graph_concurrency"),
		SeedBrands:       splitLabels(viper.GetStringSlice("advice.seed_brands")),
		SeedCategories:   splitLabels(viper.GetStringSlice("advice.seed_categories")),
	}
}

// reportWriters assembles the output channels for a run. The terminal
// renderer always comes first.
func reportWriters(ctx context.Context, stdout io.Writer, output string, withSheets, withArchive bool, logger *slog.Logger) (service.ReportWriter, error) {
	var writers report.MultiWriter
	if output == outputJSON {
		writers = append(writers, &report.JSONRenderer{W: stdout})
	} else {
		writers = append(writers, &report.TextRenderer{W: stdout, Styled: true})
	}

	if withSheets {
		sheetsCfg, err := config.LoadSheetsConfig()
		if err != nil {
			return nil, fmt.Errorf("invalid Google Sheets configuration: %w", err)
		}
		w, err := sheets.NewWriter(ctx, *sheetsCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets writer: %w", err)
		}
		writers = append(writers, w)
	}

	if withArchive {
		archiveCfg, err := config.LoadArchiveConfig()
		if err != nil {
			return nil, fmt.Errorf("invalid archive configuration: %w", err)
		}
		a, err := report.NewArchive(*archiveCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create report archive: %w", err)
		}
		writers = append(writers, a)
	}

	return writers, nil
}

// executeAdvice runs the pipeline and hands whatever was produced to writer.
// A partial report is still written when only the final advice failed.
func executeAdvice(ctx context.Context, adv *advisor.Advisor, username string, writer service.ReportWriter) error {
	rep, runErr := adv.GenerateFinancialAdvice(ctx, username)
	if rep == nil {
		if errors.Is(runErr, common.ErrUserNotFound) {
			return common.NewUserError(fmt.Sprintf("no user named %q; add one with 'sage users add'", username), runErr)
		}
		return runErr
	}
	if ctx.Err() != nil {
		return runErr
	}

	if err := writer.Write(ctx, rep); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
	}
	return runErr
}
