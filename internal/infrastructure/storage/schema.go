package storage

// schema is portable between Postgres and SQLite. Timestamps are written in UTC.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		keywords TEXT NOT NULL DEFAULT '[]',
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		topic_id TEXT REFERENCES topics(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		locator TEXT NOT NULL DEFAULT '',
		config TEXT NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_collected_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS collected_items (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
		external_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		collected_at TIMESTAMP NOT NULL,
		quality_score DOUBLE PRECISION,
		quality_breakdown TEXT,
		filtered_out BOOLEAN NOT NULL DEFAULT FALSE,
		processed_at TIMESTAMP,
		UNIQUE (source_id, external_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_collected_items_collected_at ON collected_items (collected_at)`,
	`CREATE TABLE IF NOT EXISTS principles (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL,
		report_type TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		reviewed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		action_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		confirmed_at TIMESTAMP,
		executed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		feedback_type TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
}
