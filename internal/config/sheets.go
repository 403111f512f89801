package config

import (
	"github.com/Veraticus/spend-sage/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig resolves the Sheets export settings. Values under the
// "sheets." viper keys win; GOOGLE_SHEETS_* variables fill whatever is unset.
func LoadSheetsConfig() (*sheets.Config, error) {
	// LoadFromEnv validates credentials on its own; the merged config is
	// validated below instead.
	cfg := sheets.DefaultConfig()
	_ = cfg.LoadFromEnv()

	overrides := []struct {
		key    string
		target *string
	}{
		{"sheets.service_account_path", &cfg.ServiceAccountPath},
		{"sheets.client_id", &cfg.ClientID},
		{"sheets.client_secret", &cfg.ClientSecret},
		{"sheets.refresh_token", &cfg.RefreshToken},
		{"sheets.spreadsheet_id", &cfg.SpreadsheetID},
		{"sheets.spreadsheet_name", &cfg.SpreadsheetName},
		{"sheets.timezone", &cfg.TimeZone},
	}
	for _, o := range overrides {
		if v := viper.GetString(o.key); v != "" {
			*o.target = v
		}
	}

	if cfg.ServiceAccountPath != "" {
		cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
