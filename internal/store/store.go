// Package store persists pricing settings, the equipment catalog and quote
// snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/pricing"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

func wrapConstraint(op string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Store wraps a migrated database handle.
type Store struct {
	db *sql.DB
}

// New returns a Store backed by db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LaborConfig loads the labor settings singleton with its per-category hours.
func (s *Store) LaborConfig(ctx context.Context) (pricing.LaborConfig, error) {
	var cfg pricing.LaborConfig
	var defaultHours sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT hourly_rate, default_hours_per_item, setup_hours, programming_hours, testing_hours
		FROM labor_settings
		WHERE id = 1
	`).Scan(&cfg.HourlyRate, &defaultHours, &cfg.SetupHours, &cfg.ProgrammingHours, &cfg.TestingHours)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.LaborConfig{}, fmt.Errorf("labor settings: %w", ErrNotFound)
		}
		return pricing.LaborConfig{}, fmt.Errorf("query labor settings: %w", err)
	}
	if defaultHours.Valid {
		v := defaultHours.Float64
		cfg.DefaultHoursPerItem = &v
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, hours_per_item FROM labor_category_hours`)
	if err != nil {
		return pricing.LaborConfig{}, fmt.Errorf("query labor category hours: %w", err)
	}
	defer rows.Close()

	cfg.HoursPerItem = make(map[pricing.Category]float64)
	for rows.Next() {
		var category string
		var hours float64
		if err := rows.Scan(&category, &hours); err != nil {
			return pricing.LaborConfig{}, fmt.Errorf("scan labor category hours: %w", err)
		}
		cfg.HoursPerItem[pricing.Category(category)] = hours
	}
	if err := rows.Err(); err != nil {
		return pricing.LaborConfig{}, fmt.Errorf("iterate labor category hours: %w", err)
	}

	return cfg, nil
}

// SaveLaborConfig replaces the labor settings and per-category hours.
func (s *Store) SaveLaborConfig(ctx context.Context, cfg pricing.LaborConfig) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin labor settings transaction: %w", err)
	}

	if err := saveLaborConfig(ctx, tx, cfg); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit labor settings: %w", err)
	}
	return nil
}

func saveLaborConfig(ctx context.Context, tx *sql.Tx, cfg pricing.LaborConfig) error {
	var defaultHours sql.NullFloat64
	if cfg.DefaultHoursPerItem != nil {
		defaultHours = sql.NullFloat64{Float64: *cfg.DefaultHoursPerItem, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO labor_settings (id, hourly_rate, default_hours_per_item, setup_hours, programming_hours, testing_hours)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hourly_rate = excluded.hourly_rate,
			default_hours_per_item = excluded.default_hours_per_item,
			setup_hours = excluded.setup_hours,
			programming_hours = excluded.programming_hours,
			testing_hours = excluded.testing_hours,
			updated_at = CURRENT_TIMESTAMP
	`, cfg.HourlyRate, defaultHours, cfg.SetupHours, cfg.ProgrammingHours, cfg.TestingHours); err != nil {
		return fmt.Errorf("upsert labor settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM labor_category_hours`); err != nil {
		return fmt.Errorf("clear labor category hours: %w", err)
	}
	for category, hours := range cfg.HoursPerItem {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO labor_category_hours (category, hours_per_item) VALUES (?, ?)
		`, string(category), hours); err != nil {
			return fmt.Errorf("insert labor hours for %s: %w", category, err)
		}
	}
	return nil
}

// TaxConfig loads the tax settings singleton.
func (s *Store) TaxConfig(ctx context.Context) (pricing.TaxConfig, error) {
	var cfg pricing.TaxConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT rate, apply_to_equipment, apply_to_labor
		FROM tax_settings
		WHERE id = 1
	`).Scan(&cfg.Rate, &cfg.ApplyToEquipment, &cfg.ApplyToLabor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.TaxConfig{}, fmt.Errorf("tax settings: %w", ErrNotFound)
		}
		return pricing.TaxConfig{}, fmt.Errorf("query tax settings: %w", err)
	}
	return cfg, nil
}

// SaveTaxConfig replaces the tax settings.
func (s *Store) SaveTaxConfig(ctx context.Context, cfg pricing.TaxConfig) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO tax_settings (id, rate, apply_to_equipment, apply_to_labor)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rate = excluded.rate,
			apply_to_equipment = excluded.apply_to_equipment,
			apply_to_labor = excluded.apply_to_labor,
			updated_at = CURRENT_TIMESTAMP
	`, cfg.Rate, cfg.ApplyToEquipment, cfg.ApplyToLabor); err != nil {
		return fmt.Errorf("upsert tax settings: %w", err)
	}
	return nil
}

// CreateEquipment inserts a catalog entry and returns it with its new ID.
func (s *Store) CreateEquipment(ctx context.Context, e bom.Equipment) (bom.Equipment, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment (manufacturer, model, sku, category, subcategory, description, unit_cost, unit_msrp, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Manufacturer, e.Model, e.SKU, string(e.Category), e.Subcategory, e.Description, e.UnitCost, e.UnitMsrp, e.Active)
	if err != nil {
		return bom.Equipment{}, wrapConstraint("insert equipment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return bom.Equipment{}, fmt.Errorf("read equipment id: %w", err)
	}
	e.ID = id
	return e, nil
}

// UpdateEquipment overwrites the catalog entry with e.ID.
func (s *Store) UpdateEquipment(ctx context.Context, e bom.Equipment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE equipment
		SET
			manufacturer = ?,
			model = ?,
			sku = ?,
			category = ?,
			subcategory = ?,
			description = ?,
			unit_cost = ?,
			unit_msrp = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Manufacturer, e.Model, e.SKU, string(e.Category), e.Subcategory, e.Description, e.UnitCost, e.UnitMsrp, e.Active, e.ID)
	if err != nil {
		return wrapConstraint("update equipment", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("equipment %d: %w", e.ID, ErrNotFound)
	}
	return nil
}

const equipmentColumns = `id, manufacturer, model, sku, category, subcategory, description, unit_cost, unit_msrp, active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row rowScanner) (bom.Equipment, error) {
	var e bom.Equipment
	var category string
	if err := row.Scan(&e.ID, &e.Manufacturer, &e.Model, &e.SKU, &category, &e.Subcategory, &e.Description, &e.UnitCost, &e.UnitMsrp, &e.Active); err != nil {
		return bom.Equipment{}, err
	}
	e.Category = pricing.Category(category)
	return e, nil
}

// Equipment returns the catalog entry with the given ID.
func (s *Store) Equipment(ctx context.Context, id int64) (bom.Equipment, error) {
	e, err := scanEquipment(s.db.QueryRowContext(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bom.Equipment{}, fmt.Errorf("equipment %d: %w", id, ErrNotFound)
		}
		return bom.Equipment{}, fmt.Errorf("query equipment: %w", err)
	}
	return e, nil
}

// ListEquipment returns catalog entries ordered by manufacturer and model.
func (s *Store) ListEquipment(ctx context.Context, activeOnly bool) ([]bom.Equipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE (? = 0 OR active = 1)
		ORDER BY manufacturer, model, id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	entries := make([]bom.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}
	return entries, nil
}

// Catalog returns a snapshot of the active catalog for BOM generation.
func (s *Store) Catalog(ctx context.Context) (bom.MapCatalog, error) {
	entries, err := s.ListEquipment(ctx, true)
	if err != nil {
		return nil, err
	}
	return bom.NewMapCatalog(entries), nil
}
