package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/config"
	"github.com/Simplici0/avquote/internal/export"
	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/quote"
)

// bomFile is the YAML document read by the calc command.
type bomFile struct {
	Title         string          `yaml:"title"`
	Notes         string          `yaml:"notes"`
	MarginPercent *float64        `yaml:"margin_percent"`
	Catalog       []bomFileEntry  `yaml:"catalog"`
	Placements    []bom.Placement `yaml:"placements"`
}

type bomFileEntry struct {
	ID           int64   `yaml:"id"`
	Manufacturer string  `yaml:"manufacturer"`
	Model        string  `yaml:"model"`
	SKU          string  `yaml:"sku"`
	Category     string  `yaml:"category"`
	Subcategory  string  `yaml:"subcategory"`
	Description  string  `yaml:"description"`
	UnitCost     float64 `yaml:"unit_cost"`
	UnitMsrp     float64 `yaml:"unit_msrp"`
}

func readBOMFile(path string) (bomFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bomFile{}, fmt.Errorf("read bom file: %w", err)
	}

	var f bomFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return bomFile{}, fmt.Errorf("parse bom file %s: %w", path, err)
	}
	return f, nil
}

func (f bomFile) catalog() (bom.MapCatalog, error) {
	entries := make([]bom.Equipment, 0, len(f.Catalog))
	for _, e := range f.Catalog {
		category, err := pricing.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", e.ID, err)
		}
		entries = append(entries, bom.Equipment{
			ID:           e.ID,
			Manufacturer: e.Manufacturer,
			Model:        e.Model,
			SKU:          e.SKU,
			Category:     category,
			Subcategory:  e.Subcategory,
			Description:  e.Description,
			UnitCost:     e.UnitCost,
			UnitMsrp:     e.UnitMsrp,
			Active:       true,
		})
	}
	return bom.NewMapCatalog(entries), nil
}

func (a *app) calcCmd() *cobra.Command {
	var (
		path   string
		margin float64
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price a YAML bill of materials without a database",
		Example: `  avquote calc --file boardroom.yaml
  avquote calc --file boardroom.yaml --margin 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readBOMFile(path)
			if err != nil {
				return err
			}
			catalog, err := f.catalog()
			if err != nil {
				return err
			}
			defaults, err := config.LoadPricingDefaults(a.cfg.PricingFile)
			if err != nil {
				return err
			}

			req := quote.Request{
				Title:         f.Title,
				Notes:         f.Notes,
				MarginPercent: f.MarginPercent,
				Placements:    f.Placements,
			}
			if cmd.Flags().Changed("margin") {
				req.MarginPercent = &margin
			}

			q, err := quote.Price(req, catalog, quote.Settings{
				DefaultMargin: defaults.MarginPercent,
				Labor:         defaults.LaborConfig(),
				Tax:           defaults.TaxConfig(),
			})
			if err != nil {
				return err
			}

			a.logger.Debug("calculated quote", zap.String("file", path), zap.Float64("total", q.Totals.Total))
			fmt.Fprint(cmd.OutOrStdout(), export.Text(export.Document{Quote: q, Currency: a.cfg.Currency}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "YAML bill of materials")
	cmd.Flags().Float64Var(&margin, "margin", 0, "Margin percentage, overrides the file and pricing defaults")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
