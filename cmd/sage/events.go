package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-sage/internal/aggregate"
	"github.com/Veraticus/spend-sage/internal/cli"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/ofx"
	"github.com/Veraticus/spend-sage/internal/service"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Record and inspect product purchase events",
	}

	cmd.AddCommand(eventsAddCmd())
	cmd.AddCommand(eventsListCmd())
	cmd.AddCommand(eventsImportOFXCmd())
	cmd.AddCommand(eventsSessionsCmd())

	return cmd
}

func eventsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <username>",
		Short:   "Record a single purchase",
		Example: `  sage events add alice --platform Amazon --title "Apple AirPods Pro" --price 249`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			platform, _ := cmd.Flags().GetString("platform")
			title, _ := cmd.Flags().GetString("title")
			price, _ := cmd.Flags().GetFloat64("price")
			url, _ := cmd.Flags().GetString("url")
			session, _ := cmd.Flags().GetString("session")
			at, _ := cmd.Flags().GetString("at")

			timestamp := time.Now().UTC()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return common.NewUserError("--at must be an RFC 3339 timestamp", err)
				}
				timestamp = parsed.UTC()
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.LookupUser(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			inserted, err := store.SaveEvents(ctx, []model.ProductEvent{{
				UserID:       user.ID,
				SessionID:    session,
				Platform:     platform,
				ProductURL:   url,
				ProductTitle: title,
				Price:        price,
				Timestamp:    timestamp,
			}})
			if err != nil {
				return fmt.Errorf("failed to save event: %w", err)
			}

			out := cmd.OutOrStdout()
			if inserted == 0 {
				fmt.Fprintln(out, cli.FormatWarning("Identical purchase already recorded"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %q for %s", title, user.Username)))
			return nil
		},
	}

	cmd.Flags().String("platform", "", "Site the purchase was made on")
	cmd.Flags().String("title", "", "Product title as shown by the site")
	cmd.Flags().Float64("price", 0, "Price paid")
	cmd.Flags().String("url", "", "Product URL")
	cmd.Flags().String("session", "", "Browsing session ID")
	cmd.Flags().String("at", "", "Purchase time, RFC 3339 (default: now)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func eventsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <username>",
		Short: "List a user's purchases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter, err := eventFilterFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.LookupUser(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			events, err := store.ListEvents(ctx, user.ID, filter)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No purchases recorded for "+user.Username))
				return nil
			}

			fmt.Fprintln(out, cli.TableHeaderStyle.Render(fmt.Sprintf("%-20s %-16s %10s  %s", "DATE", "PLATFORM", "PRICE", "PRODUCT")))
			for _, e := range events {
				fmt.Fprintln(out, cli.TableCellStyle.Render(fmt.Sprintf("%-20s %-16s %10.2f  %s",
					e.Timestamp.Format("2006-01-02 15:04"), e.Platform, e.Price, e.ProductTitle)))
			}
			return nil
		},
	}

	cmd.Flags().String("start-date", "", "Only purchases on or after this date (format: 2006-01-02)")
	cmd.Flags().String("end-date", "", "Only purchases before this date (format: 2006-01-02)")
	cmd.Flags().Int("limit", 0, "Maximum purchases to show")

	return cmd
}

func eventFilterFromFlags(cmd *cobra.Command) (service.EventFilter, error) {
	var filter service.EventFilter
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"start-date", &filter.StartDate},
		{"end-date", &filter.EndDate},
	} {
		value, _ := cmd.Flags().GetString(f.name)
		if value == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return service.EventFilter{}, common.NewUserError(fmt.Sprintf("--%s must look like 2006-01-02", f.name), err)
		}
		*f.dst = &t
	}
	return filter, nil
}

func eventsImportOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx <username> <files...>",
		Short: "Import purchases from OFX/QFX statements",
		Long: `Import card and bank debits from OFX or QFX files as purchase events.

Each debit becomes one purchase; credits and refunds are skipped. Re-importing
a statement is safe since identical purchases are recorded once.

Examples:
  sage events import-ofx alice ~/Downloads/card_jan_2024.qfx
  sage events import-ofx alice ~/Downloads/*.qfx --platform "Visa"`,
		Args: cobra.MinimumNArgs(2),
		RunE: runImportOFX,
	}

	cmd.Flags().String("platform", "", "Platform to record instead of the merchant name")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	platform, _ := cmd.Flags().GetString("platform")

	files, err := expandFiles(args[1:])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("no files found to import", nil)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := store.LookupUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	slog.Info("Importing OFX files", "file_count", len(files), "username", user.Username, "dry_run", dryRun)

	parser := ofx.NewParser(slog.Default())
	var events []model.ProductEvent
	for _, path := range files {
		parsed, err := parseOFXFile(ctx, parser, path, ofx.Options{UserID: user.ID, Platform: platform})
		if err != nil {
			slog.Error("Failed to import file", "file", path, "error", err)
			continue
		}
		events = append(events, parsed...)
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		return common.NewUserError("no purchases found in the given files", common.ErrNoPurchases)
	}
	if dryRun {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Dry run: %d purchases would be imported", len(events))))
		return nil
	}

	inserted, err := store.SaveEvents(ctx, events)
	if err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d purchases (%d already recorded)", inserted, len(events)-inserted)))
	return nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string, opts ofx.Options) ([]model.ProductEvent, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parser.ParseEvents(ctx, f, opts)
}

func eventsSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions <username>",
		Short: "Summarize a user's browsing sessions",
		Long: `Summarize purchase events per browsing session: how many distinct
products were viewed, which platforms were visited, and what was spent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter, err := eventFilterFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.LookupUser(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			events, err := store.ListEvents(ctx, user.ID, filter)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			sessionID, _ := cmd.Flags().GetString("session")
			return writeSessions(cmd.OutOrStdout(), user.Username, aggregate.Sessions(events), sessionID)
		},
	}

	cmd.Flags().String("session", "", "Show a single session in detail")
	cmd.Flags().String("start-date", "", "Only events on or after this date (format: 2006-01-02)")
	cmd.Flags().String("end-date", "", "Only events before this date (format: 2006-01-02)")

	return cmd
}

// writeSessions prints a table of sessions, or one session in a box when
// sessionID is set.
func writeSessions(out io.Writer, username string, sessions []model.SessionSummary, sessionID string) error {
	if sessionID != "" {
		for _, s := range sessions {
			if s.SessionID != sessionID {
				continue
			}
			body := fmt.Sprintf("Started:          %s\nDuration:         %s\nEvents:           %d\nProducts viewed:  %d\nPlatforms:        %s\nSpent:            %.2f",
				s.Start.Format("2006-01-02 15:04"), s.Duration().Round(time.Second), s.Events,
				s.ProductsViewed, strings.Join(s.Platforms, ", "), s.Total)
			fmt.Fprintln(out, cli.RenderBox("Session "+s.SessionID, body))
			return nil
		}
		return common.NewUserError(fmt.Sprintf("No session %q for %s", sessionID, username), common.ErrNotFound)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No sessions recorded for "+username))
		return nil
	}

	fmt.Fprintln(out, cli.TableHeaderStyle.Render(fmt.Sprintf("%-24s %-17s %8s %6s %9s  %s", "SESSION", "STARTED", "EVENTS", "VIEWED", "SPENT", "PLATFORMS")))
	for _, s := range sessions {
		fmt.Fprintln(out, cli.TableCellStyle.Render(fmt.Sprintf("%-24s %-17s %8d %6d %9.2f  %s",
			s.SessionID, s.Start.Format("2006-01-02 15:04"), s.Events, s.ProductsViewed, s.Total,
			strings.Join(s.Platforms, ", "))))
	}
	return nil
}
