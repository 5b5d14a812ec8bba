package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ContentCurator/internal/domain"
)

var principleColumns = []string{"id", "content", "category", "confidence", "active"}

// SavePrinciple inserts a principle or replaces it when the id exists.
func (s *Store) SavePrinciple(ctx context.Context, p domain.Principle) (domain.Principle, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, s.sb.Insert("principles").
		Columns(principleColumns...).
		Values(p.ID, p.Content, p.Category, p.Confidence, p.Active).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			confidence = EXCLUDED.confidence,
			active = EXCLUDED.active`))
	if err != nil {
		return domain.Principle{}, fmt.Errorf("save principle %s: %w", p.ID, err)
	}
	return p, nil
}

// ListActivePrinciples returns active principles by descending confidence.
func (s *Store) ListActivePrinciples(ctx context.Context, limit int) ([]domain.Principle, error) {
	b := s.sb.Select(principleColumns...).From("principles").
		Where(sq.Eq{"active": true}).
		OrderBy("confidence DESC", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return s.listPrinciples(ctx, b)
}

// ListLowConfidence returns active principles with confidence strictly below the floor.
func (s *Store) ListLowConfidence(ctx context.Context, below float64) ([]domain.Principle, error) {
	return s.listPrinciples(ctx, s.sb.Select(principleColumns...).From("principles").
		Where(sq.And{sq.Eq{"active": true}, sq.Lt{"confidence": below}}).
		OrderBy("confidence", "id"))
}

// GetPrinciple loads one principle.
func (s *Store) GetPrinciple(ctx context.Context, id string) (domain.Principle, error) {
	query, args, err := s.sb.Select(principleColumns...).From("principles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Principle{}, fmt.Errorf("build query: %w", err)
	}
	var p domain.Principle
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Content, &p.Category, &p.Confidence, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Principle{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Principle{}, fmt.Errorf("query principle: %w", err)
	}
	return p, nil
}

// UpdateConfidence persists a new confidence value.
func (s *Store) UpdateConfidence(ctx context.Context, id string, confidence float64) error {
	res, err := s.exec(ctx, s.sb.Update("principles").Set("confidence", confidence).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("update confidence %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) listPrinciples(ctx context.Context, b sq.SelectBuilder) ([]domain.Principle, error) {
	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query principles: %w", err)
	}
	defer rows.Close()

	var out []domain.Principle
	for rows.Next() {
		var p domain.Principle
		if err := rows.Scan(&p.ID, &p.Content, &p.Category, &p.Confidence, &p.Active); err != nil {
			return nil, fmt.Errorf("scan principle: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
