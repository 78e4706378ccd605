// Package quote prices room designs against the stored catalog and settings
// and keeps the resulting snapshots.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/pricing"
	"github.com/Simplici0/avquote/internal/store"
)

// ErrInvalidRequest marks request validation failures.
var ErrInvalidRequest = errors.New("invalid quote request")

// Repository is the persistence the service needs.
type Repository interface {
	LaborConfig(ctx context.Context) (pricing.LaborConfig, error)
	TaxConfig(ctx context.Context) (pricing.TaxConfig, error)
	Catalog(ctx context.Context) (bom.MapCatalog, error)
	CreateQuote(ctx context.Context, q store.QuoteRecord) (store.QuoteRecord, error)
	Quote(ctx context.Context, id string) (store.QuoteRecord, error)
	ListQuotes(ctx context.Context, query string) ([]store.QuoteListItem, error)
}

// Request describes a room design to price.
type Request struct {
	Title string `json:"title" yaml:"title"`
	Notes string `json:"notes" yaml:"notes"`
	// MarginPercent falls back to the service default when nil.
	MarginPercent *float64        `json:"marginPercent,omitempty" yaml:"margin_percent,omitempty"`
	Placements    []bom.Placement `json:"placements" yaml:"placements"`
}

// Quote is a priced room design.
type Quote struct {
	ID               string            `json:"id,omitempty"`
	CreatedAt        time.Time         `json:"createdAt,omitempty"`
	Title            string            `json:"title"`
	Notes            string            `json:"notes"`
	// MarginPercent is the margin the quote was priced with. Totals report 0
	// for a room without equipment cost.
	MarginPercent    float64           `json:"marginPercent"`
	Items            []pricing.BOMItem `json:"items"`
	Summary          bom.Summary       `json:"summary"`
	Totals           pricing.Result    `json:"totals"`
	MarkupPercentage float64           `json:"markupPercentage"`
}

// Service prices and stores quotes.
type Service struct {
	repo          Repository
	defaultMargin float64
	logger        *zap.Logger
}

// NewService returns a Service using defaultMargin when a request carries none.
func NewService(repo Repository, defaultMargin float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, defaultMargin: defaultMargin, logger: logger.Named("quote")}
}

// Preview prices req without storing it.
func (s *Service) Preview(ctx context.Context, req Request) (Quote, error) {
	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load catalog: %w", err)
	}
	labor, err := s.repo.LaborConfig(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load labor settings: %w", err)
	}
	tax, err := s.repo.TaxConfig(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load tax settings: %w", err)
	}

	q, err := Price(req, catalog, Settings{DefaultMargin: s.defaultMargin, Labor: labor, Tax: tax})
	if err != nil {
		return Quote{}, err
	}

	s.logger.Debug("priced quote",
		zap.Int("items", len(q.Items)),
		zap.Float64("marginPercent", q.MarginPercent),
		zap.Float64("total", q.Totals.Total))
	return q, nil
}

// Settings are the pricing inputs that do not come from the request.
type Settings struct {
	DefaultMargin float64
	Labor         pricing.LaborConfig
	Tax           pricing.TaxConfig
}

// Price prices req against catalog without touching storage.
func Price(req Request, catalog bom.Catalog, settings Settings) (Quote, error) {
	if err := req.validate(); err != nil {
		return Quote{}, err
	}

	items, err := bom.Generate(req.Placements, catalog)
	if err != nil {
		return Quote{}, err
	}

	margin := settings.DefaultMargin
	if req.MarginPercent != nil {
		margin = *req.MarginPercent
	}

	totals, err := pricing.CalculateQuoteTotals(items, margin, settings.Labor, settings.Tax)
	if err != nil {
		return Quote{}, err
	}
	q := newQuote(req.Title, req.Notes, items, totals)
	q.MarginPercent = margin
	return q, nil
}

// Create prices req and stores the snapshot.
func (s *Service) Create(ctx context.Context, req Request) (Quote, error) {
	q, err := s.Preview(ctx, req)
	if err != nil {
		return Quote{}, err
	}

	record, err := s.repo.CreateQuote(ctx, store.QuoteRecord{
		Title:         q.Title,
		Notes:         q.Notes,
		MarginPercent: q.MarginPercent,
		Items:         q.Items,
		Totals:        q.Totals,
	})
	if err != nil {
		return Quote{}, fmt.Errorf("save quote: %w", err)
	}

	q.ID = record.ID
	q.CreatedAt = record.CreatedAt
	s.logger.Info("quote created", zap.String("id", q.ID), zap.Float64("total", q.Totals.Total))
	return q, nil
}

// Get loads a stored quote as it was priced.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	record, err := s.repo.Quote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	q := newQuote(record.Title, record.Notes, record.Items, record.Totals)
	q.MarginPercent = record.MarginPercent
	q.ID = record.ID
	q.CreatedAt = record.CreatedAt
	return q, nil
}

// List returns stored quotes, newest first.
func (s *Service) List(ctx context.Context, query string) ([]store.QuoteListItem, error) {
	return s.repo.ListQuotes(ctx, strings.TrimSpace(query))
}

func newQuote(title, notes string, items []pricing.BOMItem, totals pricing.Result) Quote {
	if items == nil {
		items = []pricing.BOMItem{}
	}
	return Quote{
		Title:            title,
		Notes:            notes,
		Items:            items,
		Summary:          bom.Summarize(items),
		Totals:           totals,
		MarkupPercentage: pricing.CalculateMarkup(totals.EquipmentCost, totals.EquipmentPrice),
	}
}

func (r Request) validate() error {
	if r.MarginPercent != nil && *r.MarginPercent < 0 {
		return fmt.Errorf("%w: margin must not be negative", ErrInvalidRequest)
	}
	for i, p := range r.Placements {
		if p.EquipmentID <= 0 {
			return fmt.Errorf("%w: placement %d has no equipment id", ErrInvalidRequest, i)
		}
		if p.Quantity < 0 {
			return fmt.Errorf("%w: placement %d has a negative quantity", ErrInvalidRequest, i)
		}
	}
	return nil
}
