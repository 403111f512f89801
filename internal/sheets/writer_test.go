package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
			wantErr: false,
		},
		{
			name: "missing auth",
			config: Config{
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "invalid batch size",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     0,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry attempts",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: -1,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"GOOGLE_SHEETS_CLIENT_ID":            os.Getenv("GOOGLE_SHEETS_CLIENT_ID"),
		"GOOGLE_SHEETS_CLIENT_SECRET":        os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"),
		"GOOGLE_SHEETS_REFRESH_TOKEN":        os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"),
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"),
		"GOOGLE_SHEETS_SPREADSHEET_ID":       os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		"GOOGLE_SHEETS_SPREADSHEET_NAME":     os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"),
	}

	// Restore env vars after test
	defer func() {
		for key, value := range originalVars {
			if value == "" {
				_ = os.Unsetenv(key)
			} else {
				_ = os.Setenv(key, value)
			}
		}
	}()

	tests := []struct {
		envVars map[string]string
		check   func(t *testing.T, c *Config)
		name    string
		wantErr bool
	}{
		{
			name: "oauth credentials",
			envVars: map[string]string{
				"GOOGLE_SHEETS_CLIENT_ID":        "test-client",
				"GOOGLE_SHEETS_CLIENT_SECRET":    "test-secret",
				"GOOGLE_SHEETS_REFRESH_TOKEN":    "test-token",
				"GOOGLE_SHEETS_SPREADSHEET_ID":   "test-id",
				"GOOGLE_SHEETS_SPREADSHEET_NAME": "Test Sheet",
			},
			wantErr: false,
			check: func(t *testing.T, c *Config) {
				t.Helper()
				assert.Equal(t, "test-client", c.ClientID)
				assert.Equal(t, "test-secret", c.ClientSecret)
				assert.Equal(t, "test-token", c.RefreshToken)
				assert.Equal(t, "test-id", c.SpreadsheetID)
				assert.Equal(t, "Test Sheet", c.SpreadsheetName)
			},
		},
		{
			name: "service account path",
			envVars: map[string]string{
				"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": "/path/to/key.json",
			},
			wantErr: false,
			check: func(t *testing.T, c *Config) {
				t.Helper()
				assert.Equal(t, "/path/to/key.json", c.ServiceAccountPath)
				assert.Equal(t, DefaultSpreadsheetName, c.SpreadsheetName)
			},
		},
		{
			name:    "missing credentials",
			envVars: map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear all env vars
			for key := range originalVars {
				_ = os.Unsetenv(key)
			}

			// Set test env vars
			for key, value := range tt.envVars {
				_ = os.Setenv(key, value)
			}

			config := DefaultConfig()
			err := config.LoadFromEnv()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.check != nil {
					tt.check(t, &config)
				}
			}
		})
	}
}

func testReport() *model.Report {
	return &model.Report{
		RunID:       "run-1",
		Username:    "mcfly",
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Profile:     model.UserProfile{Goals: []string{"save for house", "pay off card"}, Budget: 2000},
		Purchases: []model.Purchase{
			{Site: "Amazon", Name: "Wireless Mouse Logitech", Price: 25, Purchased: true, Brand: "Logitech", Category: "Electronics"},
			{Site: "Amazon", Name: "Logitech Keyboard", Price: 45.5, Purchased: true, Brand: "Logitech", Category: "Electronics"},
			{Site: "Nike", Name: "Air Max", Price: 120, Purchased: true, Brand: "Nike", Category: "Footwear"},
			{Site: "Etsy", Name: "Returned Mug", Price: 15, Purchased: false, Brand: "Unknown", Category: "Miscellaneous"},
		},
		Graphs: []model.GraphResult{
			{
				Graph:       model.Graph{Title: "Total Spending by Product Category"},
				Explanation: &model.GraphExplanation{GraphTitle: "Total Spending by Product Category", Explanation: "Footwear dominates."},
			},
			{Graph: model.Graph{Title: "Total Spending by Brand"}},
		},
		FinalAdvice: &model.FinalAdvice{
			Summary:         "Mostly discretionary spending.",
			Recommendations: []string{"Cap footwear purchases", "Automate savings"},
		},
	}
}

func TestBuildTabData(t *testing.T) {
	data := BuildTabData(testReport())

	assert.Equal(t, "mcfly", data.Username)
	assert.Equal(t, "190.5", data.Total.String())
	assert.Equal(t, "2000", data.Budget.String())
	require.Len(t, data.Purchases, 3, "unpurchased items are excluded")

	require.Len(t, data.CategorySummary, 2)
	assert.Equal(t, "Footwear", data.CategorySummary[0].Key)
	assert.Equal(t, "120", data.CategorySummary[0].Amount.String())
	assert.Equal(t, 1, data.CategorySummary[0].Count)
	assert.Equal(t, "Electronics", data.CategorySummary[1].Key)
	assert.Equal(t, "70.5", data.CategorySummary[1].Amount.String())
	assert.Equal(t, 2, data.CategorySummary[1].Count)

	require.Len(t, data.SiteSummary, 2)
	assert.Equal(t, "Nike", data.SiteSummary[0].Key)
	assert.Equal(t, 2, data.SiteSummary[1].Count)

	require.Len(t, data.Explanations, 2)
	assert.Equal(t, "Footwear dominates.", data.Explanations[0][1])
	assert.Equal(t, "Explanation not available due to an error.", data.Explanations[1][1])
	assert.Equal(t, []string{"Cap footwear purchases", "Automate savings"}, data.Recommendations)
}

func TestPrepareReportData(t *testing.T) {
	values := prepareReportData(BuildTabData(testReport()))

	assert.Equal(t, "Spending Advice", values[0][0])
	assert.Equal(t, "mcfly", values[0][1])
	assert.Equal(t, []any{"Total Spending", 190.5}, values[3])
	assert.Equal(t, []any{"Goals", "save for house; pay off card"}, values[6])

	var sawHeader bool
	var purchaseRows int
	for _, row := range values {
		if len(row) == 5 && row[0] == "Site" {
			sawHeader = true
			continue
		}
		if sawHeader && len(row) == 5 {
			purchaseRows++
		}
	}
	assert.True(t, sawHeader, "purchase details header missing")
	assert.Equal(t, 3, purchaseRows)

	last := values[len(values)-1]
	assert.Equal(t, []any{"Nike", "Air Max", 120.0, "Nike", "Footwear"}, last)
}

func TestPrepareReportData_MissingAdvice(t *testing.T) {
	report := testReport()
	report.FinalAdvice = nil

	values := prepareReportData(BuildTabData(report))

	found := false
	for _, row := range values {
		if len(row) == 1 && row[0] == "Final Financial Advice not available due to an error." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	report := testReport()

	require.NoError(t, m.Write(context.Background(), report))
	m.SetWriteError(errors.New("quota exceeded"))
	err := m.Write(context.Background(), report)
	require.Error(t, err)

	m.AssertWriteCalled(t, 2)
	calls := m.GetWriteCalls()
	require.Len(t, calls, 2)
	assert.NoError(t, calls[0].Error)
	assert.EqualError(t, calls[1].Error, "quota exceeded")
	assert.Same(t, report, m.LastReport)

	m.Reset()
	assert.Equal(t, 0, m.WriteCallCount)
	assert.Nil(t, m.LastReport)
}

func TestTabTitle(t *testing.T) {
	report := testReport()
	assert.Equal(t, "mcfly 2024-01-15 run-1", TabTitle(report))

	report.RunID = "0f8b2c9e-4d6a-4c3e-9f1a-2b7d5e8c1a90"
	assert.Equal(t, "mcfly 2024-01-15 0f8b2c9e", TabTitle(report))

	report.RunID = ""
	assert.Equal(t, "mcfly 2024-01-15", TabTitle(report))
}

func TestFormatRequests(t *testing.T) {
	requests := formatRequests(42, 30)
	require.Len(t, requests, 5)

	for _, req := range requests[:3] {
		require.NotNil(t, req.RepeatCell)
		assert.Equal(t, int64(42), req.RepeatCell.Range.SheetId)
	}
	currency := requests[2].RepeatCell
	assert.Equal(t, "CURRENCY", currency.Cell.UserEnteredFormat.NumberFormat.Type)
	assert.Equal(t, int64(2), currency.Range.StartColumnIndex)
	assert.Equal(t, int64(30), currency.Range.EndRowIndex)

	assert.Equal(t, int64(42), requests[4].UpdateSheetProperties.Properties.SheetId)
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	require.NoError(t, saveToken(path, token))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)

	// A valid token is returned without contacting Google.
	same, err := RefreshTokenIfNeeded(context.Background(), OAuth2Config{}, loaded)
	require.NoError(t, err)
	assert.Same(t, loaded, same)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
