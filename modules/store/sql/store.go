package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// Fixed-width UTC timestamp layout. Unlike RFC3339Nano it never trims
// trailing zeros, so lexicographic order on the column matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements storage.Store over a SQL database. Queries are written
// with ?-placeholders and rebound per dialect.
type Store struct {
	db      *sql.DB
	dialect storage.Dialect
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, dialect storage.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Ping implements storage.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("store: marshal: %w", err)
	}
	return string(data), nil
}

func unmarshalJSON(data string, v any) error {
	if data == "" || data == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("store: unmarshal: %w", err)
	}
	return nil
}

// SaveAnalysis implements storage.AnalysisStore.
func (s *Store) SaveAnalysis(ctx context.Context, a storage.MemeAnalysis) error {
	sentiment, err := marshalJSON(a.Sentiment)
	if err != nil {
		return err
	}
	topics, err := marshalJSON(a.Topics)
	if err != nil {
		return err
	}
	hashtags, err := marshalJSON(a.Hashtags)
	if err != nil {
		return err
	}
	coins, err := marshalJSON(a.RelatedCoins)
	if err != nil {
		return err
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO meme_analyses (
			content_hash, platform, source, permalink, image_url, content_text,
			sentiment, virality_score, engagement_rate, trend_velocity,
			crypto_score, meme_score, topics, hashtags, related_coins,
			insight, post_created_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO UPDATE SET
			platform = excluded.platform,
			source = excluded.source,
			permalink = excluded.permalink,
			image_url = excluded.image_url,
			content_text = excluded.content_text,
			sentiment = excluded.sentiment,
			virality_score = excluded.virality_score,
			engagement_rate = excluded.engagement_rate,
			trend_velocity = excluded.trend_velocity,
			crypto_score = excluded.crypto_score,
			meme_score = excluded.meme_score,
			topics = excluded.topics,
			hashtags = excluded.hashtags,
			related_coins = excluded.related_coins,
			insight = excluded.insight,
			post_created_at = excluded.post_created_at,
			created_at = excluded.created_at`),
		a.Hash, string(a.Platform), a.Source, a.Permalink, a.ImageURL, a.Text,
		sentiment, a.ViralityScore, a.EngagementRate, a.TrendVelocity,
		a.CryptoScore, a.MemeScore, topics, hashtags, coins,
		a.Insight, formatTime(a.PostCreatedAt), formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("store: save analysis %s: %w", a.Hash, err)
	}

	return nil
}

// GetAnalysis implements storage.AnalysisStore.
func (s *Store) GetAnalysis(ctx context.Context, hash string) (storage.MemeAnalysis, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+analysisColumns+`
		FROM meme_analyses
		WHERE content_hash = ?`),
		hash,
	)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MemeAnalysis{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.MemeAnalysis{}, fmt.Errorf("store: get analysis %s: %w", hash, err)
	}

	return a, nil
}

// RecentAnalyses implements storage.AnalysisStore.
func (s *Store) RecentAnalyses(ctx context.Context, since time.Time, limit int) ([]storage.MemeAnalysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM meme_analyses
		WHERE created_at >= ?
		ORDER BY created_at DESC`
	args := []any{formatTime(since)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: recent analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var analyses []storage.MemeAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("store: recent analyses: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent analyses rows: %w", err)
	}

	return analyses, nil
}

const analysisColumns = `content_hash, platform, source, permalink, image_url, content_text,
		sentiment, virality_score, engagement_rate, trend_velocity,
		crypto_score, meme_score, topics, hashtags, related_coins,
		insight, post_created_at, created_at`

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (storage.MemeAnalysis, error) {
	var (
		a                             storage.MemeAnalysis
		platform                      string
		sentiment, topics, hashtags   string
		coins, postCreated, createdAt string
	)

	if err := row.Scan(
		&a.Hash, &platform, &a.Source, &a.Permalink, &a.ImageURL, &a.Text,
		&sentiment, &a.ViralityScore, &a.EngagementRate, &a.TrendVelocity,
		&a.CryptoScore, &a.MemeScore, &topics, &hashtags, &coins,
		&a.Insight, &postCreated, &createdAt,
	); err != nil {
		return storage.MemeAnalysis{}, err
	}

	a.Platform = post.Platform(platform)
	if err := unmarshalJSON(sentiment, &a.Sentiment); err != nil {
		return storage.MemeAnalysis{}, err
	}
	if err := unmarshalJSON(topics, &a.Topics); err != nil {
		return storage.MemeAnalysis{}, err
	}
	if err := unmarshalJSON(hashtags, &a.Hashtags); err != nil {
		return storage.MemeAnalysis{}, err
	}
	if err := unmarshalJSON(coins, &a.RelatedCoins); err != nil {
		return storage.MemeAnalysis{}, err
	}

	var err error
	if a.PostCreatedAt, err = parseTime(postCreated); err != nil {
		return storage.MemeAnalysis{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.MemeAnalysis{}, err
	}

	return a, nil
}

// PruneBefore implements storage.Store. Analyses and raw posts older than
// cutoff are removed; rollups and reports are long-term history.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	mark := formatTime(cutoff)
	var total int64

	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM meme_analyses WHERE created_at < ?`), mark)
	if err != nil {
		return 0, fmt.Errorf("store: prune analyses: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM platform_posts WHERE collected_at < ?`), mark)
	if err != nil {
		return total, fmt.Errorf("store: prune posts: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}
