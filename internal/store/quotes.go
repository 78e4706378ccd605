package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/avquote/internal/pricing"
)

// createdAtLayout has a fixed width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// QuoteRecord is a persisted quote snapshot. Totals are stored as computed
// and never recalculated on read.
type QuoteRecord struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"createdAt"`
	Title         string            `json:"title"`
	Notes         string            `json:"notes"`
	MarginPercent float64           `json:"marginPercent"`
	Items         []pricing.BOMItem `json:"items"`
	Totals        pricing.Result    `json:"totals"`
}

// QuoteListItem is the summary row returned by ListQuotes.
type QuoteListItem struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Total     float64   `json:"total"`
}

// CreateQuote stores q, assigning an ID and creation time when unset.
func (s *Store) CreateQuote(ctx context.Context, q QuoteRecord) (QuoteRecord, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Items == nil {
		q.Items = []pricing.BOMItem{}
	}

	itemsJSON, err := json.Marshal(q.Items)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("marshal quote items: %w", err)
	}
	totalsJSON, err := json.Marshal(q.Totals)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("marshal quote totals: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, created_at, title, notes, margin_percent, items_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.CreatedAt.UTC().Format(createdAtLayout), q.Title, q.Notes, q.MarginPercent, string(itemsJSON), string(totalsJSON)); err != nil {
		return QuoteRecord{}, fmt.Errorf("insert quote: %w", err)
	}

	return q, nil
}

// Quote loads the snapshot with the given ID.
func (s *Store) Quote(ctx context.Context, id string) (QuoteRecord, error) {
	var q QuoteRecord
	var createdAt, itemsJSON, totalsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, notes, margin_percent, items_json, totals_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(&q.ID, &createdAt, &q.Title, &q.Notes, &q.MarginPercent, &itemsJSON, &totalsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuoteRecord{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		return QuoteRecord{}, fmt.Errorf("query quote: %w", err)
	}

	if q.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return QuoteRecord{}, fmt.Errorf("parse quote created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &q.Items); err != nil {
		return QuoteRecord{}, fmt.Errorf("decode quote items: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &q.Totals); err != nil {
		return QuoteRecord{}, fmt.Errorf("decode quote totals: %w", err)
	}
	return q, nil
}

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListQuotes returns quotes newest first, filtered by title or notes when
// query is non-empty.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]QuoteListItem, error) {
	search := "%" + likeEscaper.Replace(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, title, totals_json
		FROM quotes
		WHERE (? = '' OR title LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]QuoteListItem, 0)
	for rows.Next() {
		var item QuoteListItem
		var createdAt, totalsJSON string
		if err := rows.Scan(&item.ID, &createdAt, &item.Title, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if item.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse quote created_at: %w", err)
		}
		item.Total = totalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// totalFromJSON reads the total out of a totals snapshot, yielding 0 for a
// malformed snapshot so one bad row does not hide the list.
func totalFromJSON(totalsJSON string) float64 {
	var totals struct {
		Total *float64 `json:"total"`
	}
	if err := json.Unmarshal([]byte(totalsJSON), &totals); err != nil || totals.Total == nil {
		return 0
	}
	return *totals.Total
}
