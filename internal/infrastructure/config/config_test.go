package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	for _, key := range []string{"SOURCE", "MBOX_PATH", "CSV_PATH", "CHART_PATH", "WATCH_INTERVAL", "GMAIL_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v; want nil", err)
	}

	if cfg.Source != SourceMbox {
		t.Fatalf("Source = %q; want %q", cfg.Source, SourceMbox)
	}
	if cfg.MboxPath != filepath.Join("Skyscanner.mbox", "mbox") {
		t.Fatalf("MboxPath = %q; want Skyscanner.mbox/mbox", cfg.MboxPath)
	}
	if cfg.CSVPath != "prices.csv" {
		t.Fatalf("CSVPath = %q; want prices.csv", cfg.CSVPath)
	}
	if cfg.ResolvedChartPath() != "flight_prices_plot.png" {
		t.Fatalf("ResolvedChartPath() = %q; want flight_prices_plot.png", cfg.ResolvedChartPath())
	}
	if cfg.WatchInterval != 0 || cfg.GmailRateLimit != 5 {
		t.Fatalf("WatchInterval, GmailRateLimit = %v, %d; want 0, 5", cfg.WatchInterval, cfg.GmailRateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v; want nil", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOURCE", "GMAIL")
	t.Setenv("CSV_PATH", filepath.Join("out", "prices.csv"))
	t.Setenv("WATCH_INTERVAL", "600")
	t.Setenv("GMAIL_RATE_LIMIT", "not a number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v; want nil", err)
	}

	if cfg.Source != SourceGmail {
		t.Fatalf("Source = %q; want gmail", cfg.Source)
	}
	if cfg.WatchInterval != 10*time.Minute {
		t.Fatalf("WatchInterval = %v; want 10m", cfg.WatchInterval)
	}
	if cfg.GmailRateLimit != 5 {
		t.Fatalf("GmailRateLimit = %d; want the default for an invalid value", cfg.GmailRateLimit)
	}
	if want := filepath.Join("out", "flight_prices_plot.png"); cfg.ResolvedChartPath() != want {
		t.Fatalf("ResolvedChartPath() = %q; want %q", cfg.ResolvedChartPath(), want)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv never overrides a variable that is already set, even to ""
	t.Setenv("CSV_PATH", "")
	os.Unsetenv("CSV_PATH")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CSV_PATH=from-dotenv.csv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v; want nil", err)
	}
	if cfg.CSVPath != "from-dotenv.csv" {
		t.Fatalf("CSVPath = %q; want from-dotenv.csv", cfg.CSVPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "mbox ok",
			cfg:  Config{Source: SourceMbox, MboxPath: "mbox", CSVPath: "prices.csv"},
		},
		{
			name:    "unknown source",
			cfg:     Config{Source: "pop3", CSVPath: "prices.csv"},
			wantErr: "unknown SOURCE",
		},
		{
			name:    "gmail without credentials",
			cfg:     Config{Source: SourceGmail, GmailRateLimit: 5, CSVPath: "prices.csv"},
			wantErr: "GMAIL_REFRESH_TOKEN",
		},
		{
			name:    "imap without password",
			cfg:     Config{Source: SourceIMAP, IMAPAddr: "imap.example.com:993", IMAPUsername: "me", CSVPath: "prices.csv"},
			wantErr: "IMAP_KEYRING_ACCOUNT",
		},
		{
			name:    "imap with keychain",
			cfg:     Config{Source: SourceIMAP, IMAPAddr: "imap.example.com:993", IMAPUsername: "me", IMAPKeyringAccount: "me", CSVPath: "prices.csv"},
			wantErr: "",
		},
		{
			name:    "missing csv and negative interval",
			cfg:     Config{Source: SourceMbox, MboxPath: "mbox", WatchInterval: -time.Second},
			wantErr: "WATCH_INTERVAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v; want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v; want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSourceFromFlag(t *testing.T) {
	cfg := Config{Source: " IMAP ", IMAPAddr: "imap.example.com:993", IMAPUsername: "me", IMAPPassword: "pw", CSVPath: "prices.csv"}
	cfg.Normalize()

	if cfg.Source != SourceIMAP {
		t.Fatalf("Normalize() source = %q; want %q", cfg.Source, SourceIMAP)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v; want nil", err)
	}
}
