package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Simplici0/avquote/internal/pricing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "PRICING_FILE", "CURRENCY"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PricingFile != defaultPricingFile || cfg.Currency != defaultCurrency {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected empty APP_ENV to be dev")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CURRENCY", "eur")
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.IsDev() {
		t.Fatalf("production must not be dev")
	}
	if cfg.Currency != "EUR" {
		t.Fatalf("Currency=%q, want EUR", cfg.Currency)
	}
	level, err := cfg.Level()
	if err != nil || level != zapcore.DebugLevel {
		t.Fatalf("Level() = %v, %v", level, err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	base := Config{Port: "8080", LogLevel: "info", Currency: "USD"}

	tests := map[string]Config{
		"port":     {Port: "http", LogLevel: "info", Currency: "USD"},
		"level":    {Port: "8080", LogLevel: "chatty", Currency: "USD"},
		"currency": {Port: "8080", LogLevel: "info", Currency: "DOLLARS"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for name, cfg := range tests {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadPricingDefaults_MissingFile(t *testing.T) {
	got, err := LoadPricingDefaults(filepath.Join(t.TempDir(), "pricing.yaml"))
	if err != nil {
		t.Fatalf("LoadPricingDefaults: %v", err)
	}
	if got.MarginPercent != 25 || got.Labor.HourlyRate != 150 || got.Tax.Rate != 8.5 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestLoadPricingDefaults_OverridesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	content := []byte(`
margin_percent: 30
labor:
  hourly_rate: 175
  hours_per_item:
    video: 2.5
  default_hours_per_item: 0.75
tax:
  rate: 7.25
  apply_to_labor: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write pricing file: %v", err)
	}

	got, err := LoadPricingDefaults(path)
	if err != nil {
		t.Fatalf("LoadPricingDefaults: %v", err)
	}

	labor := got.LaborConfig()
	if labor.HourlyRate != 175 || labor.HoursPerItem[pricing.CategoryVideo] != 2.5 {
		t.Fatalf("unexpected labor: %+v", labor)
	}
	if labor.HoursPerItem[pricing.CategoryControl] != 3 {
		t.Fatalf("control hours should keep default, got %v", labor.HoursPerItem[pricing.CategoryControl])
	}
	if labor.DefaultHoursPerItem == nil || *labor.DefaultHoursPerItem != 0.75 {
		t.Fatalf("unexpected default hours: %v", labor.DefaultHoursPerItem)
	}
	if labor.SetupHours != 4 {
		t.Fatalf("setup hours should keep default, got %v", labor.SetupHours)
	}

	tax := got.TaxConfig()
	if tax.Rate != 7.25 || !tax.ApplyToEquipment || !tax.ApplyToLabor {
		t.Fatalf("unexpected tax: %+v", tax)
	}
	if got.MarginPercent != 30 {
		t.Fatalf("MarginPercent=%v, want 30", got.MarginPercent)
	}
}

func TestLoadPricingDefaults_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"margin at asymptote": "margin_percent: 100\n",
		"unknown category":    "labor:\n  hours_per_item:\n    lighting: 1\n",
		"negative rate":       "labor:\n  hourly_rate: -5\n",
		"tax over 100":        "tax:\n  rate: 150\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pricing.yaml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write pricing file: %v", err)
			}
			if _, err := LoadPricingDefaults(path); !errors.Is(err, ErrInvalidPricing) {
				t.Fatalf("err = %v, want ErrInvalidPricing", err)
			}
		})
	}
}

func TestPricingDefaults_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pricing.yaml")

	want := DefaultPricingDefaults()
	want.MarginPercent = 18
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadPricingDefaults(path)
	if err != nil {
		t.Fatalf("LoadPricingDefaults: %v", err)
	}
	if got.MarginPercent != 18 || got.Labor.HoursPerItem["audio"] != 1.5 {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}
