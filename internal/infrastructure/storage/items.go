package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ContentCurator/internal/domain"
)

var itemColumns = []string{
	"id", "source_id", "external_id", "title", "content", "url", "metadata", "collected_at",
	"quality_score", "quality_breakdown", "filtered_out", "processed_at",
}

// UpsertItem inserts an item or refreshes the existing row keyed by
// (source_id, external_id). Scoring and processing fields are left untouched.
func (s *Store) UpsertItem(ctx context.Context, item domain.CollectedItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CollectedAt.IsZero() {
		item.CollectedAt = s.utcNow()
	}
	meta := item.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	rawMeta, err := encodeJSON(meta)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, s.sb.Insert("collected_items").
		Columns("id", "source_id", "external_id", "title", "content", "url", "metadata", "collected_at").
		Values(item.ID, item.SourceID, item.ExternalID, item.Title, item.Content, item.URL, rawMeta, item.CollectedAt.UTC()).
		Suffix(`ON CONFLICT (source_id, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			metadata = EXCLUDED.metadata,
			collected_at = EXCLUDED.collected_at`))
	if err != nil {
		return fmt.Errorf("upsert item %s/%s: %w", item.SourceID, item.ExternalID, err)
	}
	return nil
}

// ListUnscored returns items without a quality score, newest first.
func (s *Store) ListUnscored(ctx context.Context, limit int) ([]domain.CollectedItem, error) {
	return s.listItems(ctx, sq.Eq{"quality_score": nil}, limit)
}

// ListUnprocessed returns items of the given sources not yet analyzed, newest first.
func (s *Store) ListUnprocessed(ctx context.Context, sourceIDs []string, limit int) ([]domain.CollectedItem, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	return s.listItems(ctx, sq.And{
		sq.Eq{"source_id": sourceIDs},
		sq.Eq{"processed_at": nil},
	}, limit)
}

// ListCollectedSince returns items collected at or after since, newest first.
func (s *Store) ListCollectedSince(ctx context.Context, since time.Time, limit int) ([]domain.CollectedItem, error) {
	return s.listItems(ctx, sq.GtOrEq{"collected_at": since.UTC()}, limit)
}

// ListItemsBySource returns every item of a source, newest first.
func (s *Store) ListItemsBySource(ctx context.Context, sourceID string) ([]domain.CollectedItem, error) {
	return s.listItems(ctx, sq.Eq{"source_id": sourceID}, 0)
}

// UpdateQuality stores the scorer output on the item row.
func (s *Store) UpdateQuality(ctx context.Context, itemID string, result domain.QualityResult) error {
	breakdown, err := encodeJSON(result.Breakdown)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.sb.Update("collected_items").
		Set("quality_score", result.Score).
		Set("quality_breakdown", breakdown).
		Set("filtered_out", !result.ShouldProcess).
		Where(sq.Eq{"id": itemID}))
	if err != nil {
		return fmt.Errorf("update quality %s: %w", itemID, err)
	}
	return nil
}

// MarkProcessed stamps the item so the unprocessed query no longer returns it.
func (s *Store) MarkProcessed(ctx context.Context, itemID string, at time.Time) error {
	_, err := s.exec(ctx, s.sb.Update("collected_items").
		Set("processed_at", at.UTC()).
		Where(sq.Eq{"id": itemID}))
	if err != nil {
		return fmt.Errorf("mark processed %s: %w", itemID, err)
	}
	return nil
}

// ResetProcessed clears processed_at on processed, non-filtered items so they
// are analyzed again. An empty sourceIDs resets across all sources.
func (s *Store) ResetProcessed(ctx context.Context, sourceIDs []string) (int, error) {
	where := sq.And{
		sq.NotEq{"processed_at": nil},
		sq.Eq{"filtered_out": false},
	}
	if len(sourceIDs) > 0 {
		where = append(where, sq.Eq{"source_id": sourceIDs})
	}

	res, err := s.exec(ctx, s.sb.Update("collected_items").Set("processed_at", nil).Where(where))
	if err != nil {
		return 0, fmt.Errorf("reset processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) listItems(ctx context.Context, where sq.Sqlizer, limit int) ([]domain.CollectedItem, error) {
	b := s.sb.Select(itemColumns...).From("collected_items").Where(where).OrderBy("collected_at DESC", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.CollectedItem
	for rows.Next() {
		item, err := s.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

// scanItem keeps rows whose JSON columns cannot be decoded. The broken field
// is left empty.
func (s *Store) scanItem(rows *sql.Rows) (domain.CollectedItem, error) {
	var (
		item        domain.CollectedItem
		rawMeta     sql.NullString
		collectedAt sql.NullTime
		score       sql.NullFloat64
		breakdown   sql.NullString
		processedAt sql.NullTime
	)
	err := rows.Scan(
		&item.ID, &item.SourceID, &item.ExternalID, &item.Title, &item.Content, &item.URL,
		&rawMeta, &collectedAt, &score, &breakdown, &item.FilteredOut, &processedAt,
	)
	if err != nil {
		return domain.CollectedItem{}, fmt.Errorf("scan item: %w", err)
	}

	item.Metadata = map[string]any{}
	if err := decodeJSON(rawMeta, &item.Metadata); err != nil {
		item.Metadata = map[string]any{}
		s.logger.Warn("malformed item metadata", "item_id", item.ID, "error", err)
	}
	if breakdown.Valid {
		if err := decodeJSON(breakdown, &item.QualityBreakdown); err != nil {
			item.QualityBreakdown = nil
			s.logger.Warn("malformed quality breakdown", "item_id", item.ID, "error", err)
		}
	}
	if collectedAt.Valid {
		item.CollectedAt = collectedAt.Time.UTC()
	}
	if score.Valid {
		v := score.Float64
		item.QualityScore = &v
	}
	item.ProcessedAt = timePtr(processedAt)
	return item, nil
}
