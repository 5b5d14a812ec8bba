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

var topicColumns = []string{"id", "name", "keywords", "active"}

// SaveTopic inserts the topic or updates it when the id already exists.
func (s *Store) SaveTopic(ctx context.Context, topic domain.Topic) (domain.Topic, error) {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	keywords := topic.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	rawKeywords, err := encodeJSON(keywords)
	if err != nil {
		return domain.Topic{}, err
	}

	_, err = s.exec(ctx, s.sb.Insert("topics").
		Columns(topicColumns...).
		Values(topic.ID, topic.Name, rawKeywords, topic.Active).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, keywords = EXCLUDED.keywords, active = EXCLUDED.active"))
	if err != nil {
		return domain.Topic{}, fmt.Errorf("save topic %s: %w", topic.Name, err)
	}
	return topic, nil
}

// GetTopic loads a topic by id.
func (s *Store) GetTopic(ctx context.Context, id string) (domain.Topic, error) {
	return s.getTopic(ctx, sq.Eq{"id": id})
}

// GetTopicByName loads a topic by its unique name.
func (s *Store) GetTopicByName(ctx context.Context, name string) (domain.Topic, error) {
	return s.getTopic(ctx, sq.Eq{"name": name})
}

func (s *Store) getTopic(ctx context.Context, where sq.Eq) (domain.Topic, error) {
	query, args, err := s.sb.Select(topicColumns...).From("topics").Where(where).Limit(1).ToSql()
	if err != nil {
		return domain.Topic{}, fmt.Errorf("build query: %w", err)
	}

	var (
		topic    domain.Topic
		keywords sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&topic.ID, &topic.Name, &keywords, &topic.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Topic{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Topic{}, fmt.Errorf("query topic: %w", err)
	}
	if err := decodeJSON(keywords, &topic.Keywords); err != nil {
		return domain.Topic{}, err
	}
	return topic, nil
}
