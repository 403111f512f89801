package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/spend-sage/internal/aggregate"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer exports advice reports to Google Sheets, one tab per run.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter validates config and connects to the Sheets API.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Writer{service: srv, logger: logger, config: config}, nil
}

// Write adds a tab for the report's run and fills it.
func (w *Writer) Write(ctx context.Context, report *model.Report) error {
	w.logger.Info("starting sheets export",
		"username", report.Username,
		"run_id", report.RunID,
		"purchases", len(report.Purchases))

	spreadsheetID, err := w.spreadsheet(ctx)
	if err != nil {
		return err
	}

	values := prepareReportData(BuildTabData(report))
	title := TabTitle(report)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var addErr error
		sheetID, addErr = w.addTab(ctx, spreadsheetID, title)
		return addErr
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to add tab %q: %w", title, err)
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeRows(ctx, spreadsheetID, title, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		req := &sheets.BatchUpdateSpreadsheetRequest{Requests: formatRequests(sheetID, int64(len(values)))}
		err = common.WithRetry(ctx, func() error {
			_, callErr := w.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
			return callErr
		}, retryOpts)
		if err != nil {
			// Unformatted rows are still a usable export.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"tab", title,
		"rows_written", len(values))

	return nil
}

// TabTitle names the tab a report is written to. Run IDs keep reruns on the
// same day from colliding.
func TabTitle(report *model.Report) string {
	runID := report.RunID
	if len(runID) > 8 {
		runID = runID[:8]
	}
	title := report.Username + " " + report.GeneratedAt.Format("2006-01-02")
	if runID != "" {
		title += " " + runID
	}
	return title
}

// tokenSource prefers a service account key and falls back to the stored
// OAuth2 refresh token.
func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath == "" {
		token := &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
		return oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token), nil
	}

	jsonKey, err := os.ReadFile(config.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return jwtConfig.TokenSource(ctx), nil
}

// spreadsheet returns the configured spreadsheet, creating one named
// SpreadsheetName when no ID is set.
func (w *Writer) spreadsheet(ctx context.Context) (string, error) {
	if id := w.config.SpreadsheetID; id != "" {
		if _, err := w.service.Spreadsheets.Get(id).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", id, err)
		}
		return id, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later runs in this process append to the same spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

func (w *Writer) addTab(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// BuildTabData flattens a report into spreadsheet rows.
func BuildTabData(report *model.Report) TabData {
	purchased := aggregate.Purchased(report.Purchases)
	counts := aggregate.CountByCategory(purchased)
	brandCounts := make(map[string]int)
	siteCounts := make(map[string]int)
	for _, p := range purchased {
		brandCounts[p.Brand]++
		siteCounts[p.Site]++
	}

	data := TabData{
		Username:        report.Username,
		GeneratedAt:     report.GeneratedAt.Format("Jan 2, 2006 15:04"),
		Total:           decimal.NewFromFloat(aggregate.Total(purchased)).Round(2),
		Budget:          decimal.NewFromFloat(report.Profile.Budget).Round(2),
		Goals:           report.Profile.Goals,
		CategorySummary: spendRows(aggregate.SpendByCategory(purchased), counts),
		BrandSummary:    spendRows(aggregate.SpendByBrand(purchased), brandCounts),
		SiteSummary:     spendRows(aggregate.SpendBySite(purchased), siteCounts),
		Purchases:       make([]PurchaseRow, 0, len(purchased)),
	}

	for _, p := range purchased {
		data.Purchases = append(data.Purchases, PurchaseRow{
			Site:     p.Site,
			Product:  p.Name,
			Brand:    p.Brand,
			Category: p.Category,
			Price:    decimal.NewFromFloat(p.Price).Round(2),
		})
	}

	for _, g := range report.Graphs {
		explanation := "Explanation not available due to an error."
		if g.Explanation != nil {
			explanation = g.Explanation.Explanation
		}
		data.Explanations = append(data.Explanations, [2]string{g.Graph.Title, explanation})
	}

	if report.FinalAdvice != nil {
		data.Summary = report.FinalAdvice.Summary
		data.Recommendations = report.FinalAdvice.Recommendations
	}

	return data
}

// spendRows sorts a breakdown by amount, largest first.
func spendRows(amounts map[string]float64, counts map[string]int) []SpendRow {
	rows := make([]SpendRow, 0, len(amounts))
	for key, amount := range amounts {
		rows = append(rows, SpendRow{
			Key:    key,
			Amount: decimal.NewFromFloat(amount).Round(2),
			Count:  counts[key],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// prepareReportData prepares the data for the report.
func prepareReportData(data TabData) [][]any {
	estimatedRows := 20 + len(data.CategorySummary) + len(data.BrandSummary) + len(data.SiteSummary) +
		len(data.Purchases) + len(data.Explanations) + len(data.Recommendations)
	values := make([][]any, 0, estimatedRows)

	// Add header and summary in one append
	values = append(values,
		[]any{"Spending Advice", data.Username, data.GeneratedAt},
		[]any{}, // Empty row
		[]any{"Summary"},
		[]any{"Total Spending", data.Total.InexactFloat64()},
		[]any{"Monthly Budget", data.Budget.InexactFloat64()},
		[]any{"Total Purchases", len(data.Purchases)},
		[]any{"Goals", strings.Join(data.Goals, "; ")},
	)

	values = appendBreakdown(values, "Category Breakdown", "Category", data.CategorySummary)
	values = appendBreakdown(values, "Brand Breakdown", "Brand", data.BrandSummary)
	values = appendBreakdown(values, "Site Breakdown", "Site", data.SiteSummary)

	values = append(values,
		[]any{}, // Empty row
		[]any{"Graph Explanations"},
	)
	for i, e := range data.Explanations {
		values = append(values, []any{fmt.Sprintf("%d. %s", i+1, e[0]), e[1]})
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{"Final Advice"},
	)
	if data.Summary == "" {
		values = append(values, []any{"Final Financial Advice not available due to an error."})
	} else {
		values = append(values, []any{"Summary", data.Summary})
		for i, rec := range data.Recommendations {
			values = append(values, []any{fmt.Sprintf("Recommendation %d", i+1), rec})
		}
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{}, // Empty row
		[]any{"Purchase Details"},
		[]any{"Site", "Product", "Price", "Brand", "Category"},
	)
	for _, p := range data.Purchases {
		values = append(values, []any{
			p.Site,
			p.Product,
			p.Price.InexactFloat64(),
			p.Brand,
			p.Category,
		})
	}

	return values
}

func appendBreakdown(values [][]any, title, keyHeader string, rows []SpendRow) [][]any {
	values = append(values,
		[]any{}, // Empty row
		[]any{title},
		[]any{keyHeader, "Count", "Amount"},
	)
	for _, row := range rows {
		values = append(values, []any{row.Key, row.Count, row.Amount.InexactFloat64()})
	}
	return values
}

// writeRows writes values to the tab in BatchSize chunks.
func (w *Writer) writeRows(ctx context.Context, spreadsheetID, title string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		cell := fmt.Sprintf("'%s'!A%d", strings.ReplaceAll(title, "'", "''"), i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, cell, &sheets.ValueRange{Values: values[i:end]}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", title, "start_row", i+1, "rows", end-i)
	}
	return nil
}

// formatRequests bolds the title and label column, renders the amount
// columns as currency, and freezes the title rows.
func formatRequests(sheetID, rows int64) []*sheets.Request {
	bold := func(size int64) *sheets.CellFormat {
		return &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: size}}
	}
	currency := &sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"}}

	return []*sheets.Request{
		repeatCell(sheetID, 0, 1, 0, 3, bold(16), "userEnteredFormat.textFormat"),
		repeatCell(sheetID, 2, rows, 0, 1, bold(0), "userEnteredFormat.textFormat"),
		// Breakdown amounts and purchase prices share column C.
		repeatCell(sheetID, 2, rows, 2, 3, currency, "userEnteredFormat.numberFormat"),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 5},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 2},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}

func repeatCell(sheetID, startRow, endRow, startCol, endCol int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}
