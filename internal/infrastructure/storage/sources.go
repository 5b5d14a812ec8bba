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

var sourceColumns = []string{"id", "topic_id", "kind", "locator", "config", "active", "last_collected_at"}

// SaveSource inserts the source or updates its definition when the id exists.
// last_collected_at is owned by collection and never overwritten here.
func (s *Store) SaveSource(ctx context.Context, src domain.Source) (domain.Source, error) {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	cfg := src.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	rawConfig, err := encodeJSON(cfg)
	if err != nil {
		return domain.Source{}, err
	}

	var topicID any
	if src.TopicID != "" {
		topicID = src.TopicID
	}

	_, err = s.exec(ctx, s.sb.Insert("sources").
		Columns(sourceColumns...).
		Values(src.ID, topicID, string(src.Kind), src.Locator, rawConfig, src.Active, nullableTime(src.LastCollectedAt)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			topic_id = EXCLUDED.topic_id,
			kind = EXCLUDED.kind,
			locator = EXCLUDED.locator,
			config = EXCLUDED.config,
			active = EXCLUDED.active`))
	if err != nil {
		return domain.Source{}, fmt.Errorf("save source %s: %w", src.ID, err)
	}
	return src, nil
}

// ListActiveSources returns active sources, optionally restricted to one topic.
func (s *Store) ListActiveSources(ctx context.Context, topicID string) ([]domain.Source, error) {
	where := sq.Eq{"active": true}
	if topicID != "" {
		where["topic_id"] = topicID
	}
	return s.listSources(ctx, where)
}

// ListSourcesByIDs loads the given sources regardless of active flag.
func (s *Store) ListSourcesByIDs(ctx context.Context, ids []string) ([]domain.Source, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.listSources(ctx, sq.Eq{"id": ids})
}

// ListSourceIDsByTopic returns ids of every source under a topic.
func (s *Store) ListSourceIDsByTopic(ctx context.Context, topicID string) ([]string, error) {
	rows, err := s.query(ctx, s.sb.Select("id").From("sources").Where(sq.Eq{"topic_id": topicID}).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query source ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan source id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

// TouchCollected records the last collection attempt.
func (s *Store) TouchCollected(ctx context.Context, sourceID string, at time.Time) error {
	_, err := s.exec(ctx, s.sb.Update("sources").
		Set("last_collected_at", at.UTC()).
		Where(sq.Eq{"id": sourceID}))
	if err != nil {
		return fmt.Errorf("touch source %s: %w", sourceID, err)
	}
	return nil
}

func (s *Store) listSources(ctx context.Context, where sq.Sqlizer) ([]domain.Source, error) {
	rows, err := s.query(ctx, s.sb.Select(sourceColumns...).From("sources").Where(where).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var (
			src       domain.Source
			topicID   sql.NullString
			kind      string
			rawConfig sql.NullString
			lastColl  sql.NullTime
		)
		if err := rows.Scan(&src.ID, &topicID, &kind, &src.Locator, &rawConfig, &src.Active, &lastColl); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.TopicID = topicID.String
		src.Kind = domain.SourceKind(kind)
		src.LastCollectedAt = timePtr(lastColl)
		src.Config = map[string]any{}
		if err := decodeJSON(rawConfig, &src.Config); err != nil {
			src.Config = map[string]any{}
			src.ConfigErr = fmt.Errorf("malformed source config: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return sources, nil
}
