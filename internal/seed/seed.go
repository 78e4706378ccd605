package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/config"
	"github.com/Simplici0/avquote/internal/pricing"
)

// Config contains the values required by the startup seed.
type Config struct {
	Pricing config.PricingDefaults
	// Catalog entries are inserted when their SKU is not present yet.
	Catalog []bom.Equipment
}

// Stats contains seed operation counters. Existing rows are never touched, so
// only inserts are counted.
type Stats struct {
	Inserts int
}

// StarterCatalog is a small catalog for development databases.
func StarterCatalog() []bom.Equipment {
	return []bom.Equipment{
		{Manufacturer: "Sony", Model: "FW-75BZ40L", SKU: "SNY-FW75BZ40L", Category: pricing.CategoryVideo, Subcategory: "display", Description: "75\" professional display", UnitCost: 3000, UnitMsrp: 4200, Active: true},
		{Manufacturer: "Shure", Model: "MXA920", SKU: "SHR-MXA920", Category: pricing.CategoryAudio, Subcategory: "microphone", Description: "Ceiling array microphone", UnitCost: 2000, UnitMsrp: 2600, Active: true},
		{Manufacturer: "Crestron", Model: "CP4N", SKU: "CRS-CP4N", Category: pricing.CategoryControl, Subcategory: "processor", Description: "Control system processor", UnitCost: 1500, UnitMsrp: 1950, Active: true},
		{Manufacturer: "Extron", Model: "DTP T HWP 4K 232 D", SKU: "EXT-DTPTHWP4K", Category: pricing.CategoryInfrastructure, Subcategory: "extender", Description: "Wall plate HDMI transmitter", UnitCost: 420, UnitMsrp: 560, Active: true},
	}
}

// Run executes the startup seed in an idempotent way. Existing settings are
// never overwritten.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	if err := cfg.Pricing.Validate(); err != nil {
		return Stats{}, fmt.Errorf("validate pricing defaults: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureLaborSettings(ctx, tx, cfg.Pricing.LaborConfig(), &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureTaxSettings(ctx, tx, cfg.Pricing.TaxConfig(), &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, e := range cfg.Catalog {
		if err := ensureEquipment(ctx, tx, e, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureLaborSettings(ctx context.Context, tx *sql.Tx, labor pricing.LaborConfig, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM labor_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check labor settings existence: %w", err)
	}
	if !exists {
		var defaultHours sql.NullFloat64
		if labor.DefaultHoursPerItem != nil {
			defaultHours = sql.NullFloat64{Float64: *labor.DefaultHoursPerItem, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO labor_settings (id, hourly_rate, default_hours_per_item, setup_hours, programming_hours, testing_hours)
			VALUES (1, ?, ?, ?, ?, ?)
		`, labor.HourlyRate, defaultHours, labor.SetupHours, labor.ProgrammingHours, labor.TestingHours); err != nil {
			return fmt.Errorf("insert labor settings singleton: %w", err)
		}
		stats.Inserts++
	}

	for _, category := range pricing.Categories {
		hours, ok := labor.HoursPerItem[category]
		if !ok {
			continue
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO labor_category_hours (category, hours_per_item)
			VALUES (?, ?)
			ON CONFLICT(category) DO NOTHING
		`, string(category), hours)
		if err != nil {
			return fmt.Errorf("insert labor hours for %s: %w", category, err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			stats.Inserts++
		}
	}
	return nil
}

func ensureTaxSettings(ctx context.Context, tx *sql.Tx, tax pricing.TaxConfig, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tax_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check tax settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tax_settings (id, rate, apply_to_equipment, apply_to_labor)
		VALUES (1, ?, ?, ?)
	`, tax.Rate, tax.ApplyToEquipment, tax.ApplyToLabor); err != nil {
		return fmt.Errorf("insert tax settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureEquipment(ctx context.Context, tx *sql.Tx, e bom.Equipment, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM equipment WHERE sku = ? LIMIT 1)`, e.SKU).Scan(&exists); err != nil {
		return fmt.Errorf("check equipment %s existence: %w", e.SKU, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO equipment (manufacturer, model, sku, category, subcategory, description, unit_cost, unit_msrp, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Manufacturer, e.Model, e.SKU, string(e.Category), e.Subcategory, e.Description, e.UnitCost, e.UnitMsrp, e.Active); err != nil {
		return fmt.Errorf("insert equipment %s: %w", e.SKU, err)
	}
	stats.Inserts++
	return nil
}
