package storage

// Migrations is the ordered schema history for the service.
// DDL is written in the portable subset that SQLite and Postgres share:
// TEXT primary keys, no autoincrement, timestamps written by the
// application as RFC 3339 text.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "initial",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS meme_analyses (
				content_hash    TEXT PRIMARY KEY,
				platform        TEXT NOT NULL DEFAULT '',
				source          TEXT NOT NULL DEFAULT '',
				permalink       TEXT NOT NULL DEFAULT '',
				image_url       TEXT NOT NULL DEFAULT '',
				content_text    TEXT NOT NULL DEFAULT '',
				sentiment       TEXT NOT NULL DEFAULT '{}',
				virality_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
				engagement_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				trend_velocity  DOUBLE PRECISION NOT NULL DEFAULT 0,
				crypto_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
				meme_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
				topics          TEXT NOT NULL DEFAULT '[]',
				hashtags        TEXT NOT NULL DEFAULT '[]',
				related_coins   TEXT NOT NULL DEFAULT '[]',
				insight         TEXT NOT NULL DEFAULT '',
				post_created_at TEXT NOT NULL DEFAULT '',
				created_at      TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_meme_analyses_created
				ON meme_analyses(created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_meme_analyses_platform
				ON meme_analyses(platform, created_at)`,

			`CREATE TABLE IF NOT EXISTS platform_posts (
				platform     TEXT NOT NULL,
				post_id      TEXT NOT NULL,
				source       TEXT NOT NULL DEFAULT '',
				title        TEXT NOT NULL DEFAULT '',
				content_text TEXT NOT NULL DEFAULT '',
				author       TEXT NOT NULL DEFAULT '',
				image_url    TEXT NOT NULL DEFAULT '',
				permalink    TEXT NOT NULL DEFAULT '',
				metrics      TEXT NOT NULL DEFAULT '{}',
				hashtags     TEXT NOT NULL DEFAULT '[]',
				created_at   TEXT NOT NULL DEFAULT '',
				collected_at TEXT NOT NULL,
				PRIMARY KEY (platform, post_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_platform_posts_created
				ON platform_posts(platform, created_at)`,

			`CREATE TABLE IF NOT EXISTS channel_metrics (
				id               TEXT PRIMARY KEY,
				platform         TEXT NOT NULL DEFAULT '',
				source           TEXT NOT NULL DEFAULT '',
				window_start     TEXT NOT NULL DEFAULT '',
				window_end       TEXT NOT NULL DEFAULT '',
				post_count       BIGINT NOT NULL DEFAULT 0,
				total_engagement BIGINT NOT NULL DEFAULT 0,
				avg_sentiment    DOUBLE PRECISION NOT NULL DEFAULT 0,
				avg_virality     DOUBLE PRECISION NOT NULL DEFAULT 0,
				top_topics       TEXT NOT NULL DEFAULT '[]',
				created_at       TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_channel_metrics_source
				ON channel_metrics(platform, source, window_start)`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS channel_metrics`,
			`DROP TABLE IF EXISTS platform_posts`,
			`DROP TABLE IF EXISTS meme_analyses`,
		},
	},
	{
		Version: 2,
		Name:    "coin_reports",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS coin_reports (
				id                TEXT PRIMARY KEY,
				symbol            TEXT NOT NULL,
				sentiment_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
				virality_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
				trend_strength    DOUBLE PRECISION NOT NULL DEFAULT 0,
				volume_prediction DOUBLE PRECISION NOT NULL DEFAULT 0,
				price_impact      DOUBLE PRECISION NOT NULL DEFAULT 0,
				confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
				sample_size       BIGINT NOT NULL DEFAULT 0,
				supporting        TEXT NOT NULL DEFAULT '{}',
				created_at        TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_coin_reports_symbol
				ON coin_reports(symbol, created_at)`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS coin_reports`,
		},
	},
}
