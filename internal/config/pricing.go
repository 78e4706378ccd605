package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/avquote/internal/pricing"
)

// ErrInvalidPricing is wrapped by PricingDefaults.Validate failures.
var ErrInvalidPricing = errors.New("invalid pricing configuration")

// PricingDefaults seeds the pricing settings of a fresh database and drives
// offline calculations.
type PricingDefaults struct {
	MarginPercent float64       `yaml:"margin_percent"`
	Labor         LaborDefaults `yaml:"labor"`
	Tax           TaxDefaults   `yaml:"tax"`
}

// LaborDefaults mirrors pricing.LaborConfig with YAML tags.
type LaborDefaults struct {
	HourlyRate          float64            `yaml:"hourly_rate"`
	HoursPerItem        map[string]float64 `yaml:"hours_per_item"`
	DefaultHoursPerItem *float64           `yaml:"default_hours_per_item,omitempty"`
	SetupHours          float64            `yaml:"setup_hours"`
	ProgrammingHours    float64            `yaml:"programming_hours"`
	TestingHours        float64            `yaml:"testing_hours"`
}

// TaxDefaults mirrors pricing.TaxConfig with YAML tags.
type TaxDefaults struct {
	Rate             float64 `yaml:"rate"`
	ApplyToEquipment bool    `yaml:"apply_to_equipment"`
	ApplyToLabor     bool    `yaml:"apply_to_labor"`
}

// DefaultPricingDefaults returns the values used when no pricing file exists.
func DefaultPricingDefaults() PricingDefaults {
	return PricingDefaults{
		MarginPercent: 25,
		Labor: LaborDefaults{
			HourlyRate: 150,
			HoursPerItem: map[string]float64{
				string(pricing.CategoryVideo):          2,
				string(pricing.CategoryAudio):          1.5,
				string(pricing.CategoryControl):        3,
				string(pricing.CategoryInfrastructure): 1,
			},
			SetupHours:       4,
			ProgrammingHours: 8,
			TestingHours:     2,
		},
		Tax: TaxDefaults{
			Rate:             8.5,
			ApplyToEquipment: true,
		},
	}
}

// LoadPricingDefaults reads a YAML pricing file. Keys absent from the file
// keep their default; a missing file yields the defaults.
func LoadPricingDefaults(path string) (PricingDefaults, error) {
	defaults := DefaultPricingDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return PricingDefaults{}, fmt.Errorf("read pricing file: %w", err)
	}

	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return PricingDefaults{}, fmt.Errorf("parse pricing file: %w", err)
	}
	if err := defaults.Validate(); err != nil {
		return PricingDefaults{}, err
	}
	return defaults, nil
}

// Save writes the defaults as YAML, creating parent directories.
func (p PricingDefaults) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create pricing dir: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pricing defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pricing file: %w", err)
	}
	return nil
}

// Validate rejects values the pricing engine would refuse or misprice.
func (p PricingDefaults) Validate() error {
	if p.MarginPercent < 0 || p.MarginPercent >= 100 {
		return fmt.Errorf("%w: margin_percent must be in [0, 100), got %v", ErrInvalidPricing, p.MarginPercent)
	}

	l := p.Labor
	for name, v := range map[string]float64{
		"hourly_rate":       l.HourlyRate,
		"setup_hours":       l.SetupHours,
		"programming_hours": l.ProgrammingHours,
		"testing_hours":     l.TestingHours,
	} {
		if v < 0 {
			return fmt.Errorf("%w: labor.%s must not be negative", ErrInvalidPricing, name)
		}
	}
	if l.DefaultHoursPerItem != nil && *l.DefaultHoursPerItem < 0 {
		return fmt.Errorf("%w: labor.default_hours_per_item must not be negative", ErrInvalidPricing)
	}
	for key, hours := range l.HoursPerItem {
		if _, err := pricing.ParseCategory(key); err != nil {
			return fmt.Errorf("%w: labor.hours_per_item: %v", ErrInvalidPricing, err)
		}
		if hours < 0 {
			return fmt.Errorf("%w: labor.hours_per_item.%s must not be negative", ErrInvalidPricing, key)
		}
	}

	if p.Tax.Rate < 0 || p.Tax.Rate > 100 {
		return fmt.Errorf("%w: tax.rate must be in [0, 100], got %v", ErrInvalidPricing, p.Tax.Rate)
	}
	return nil
}

// LaborConfig converts the defaults for the pricing engine.
func (p PricingDefaults) LaborConfig() pricing.LaborConfig {
	hours := make(map[pricing.Category]float64, len(p.Labor.HoursPerItem))
	for key, v := range p.Labor.HoursPerItem {
		hours[pricing.Category(key)] = v
	}

	cfg := pricing.LaborConfig{
		HourlyRate:       p.Labor.HourlyRate,
		HoursPerItem:     hours,
		SetupHours:       p.Labor.SetupHours,
		ProgrammingHours: p.Labor.ProgrammingHours,
		TestingHours:     p.Labor.TestingHours,
	}
	if p.Labor.DefaultHoursPerItem != nil {
		v := *p.Labor.DefaultHoursPerItem
		cfg.DefaultHoursPerItem = &v
	}
	return cfg
}

// TaxConfig converts the defaults for the pricing engine.
func (p PricingDefaults) TaxConfig() pricing.TaxConfig {
	return pricing.TaxConfig{
		Rate:             p.Tax.Rate,
		ApplyToEquipment: p.Tax.ApplyToEquipment,
		ApplyToLabor:     p.Tax.ApplyToLabor,
	}
}
