package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// SaveChannelMetrics implements storage.MetricsStore.
func (s *Store) SaveChannelMetrics(ctx context.Context, m storage.ChannelMetrics) error {
	topics, err := marshalJSON(m.TopTopics)
	if err != nil {
		return err
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO channel_metrics (
			id, platform, source, window_start, window_end,
			post_count, total_engagement, avg_sentiment, avg_virality,
			top_topics, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			post_count = excluded.post_count,
			total_engagement = excluded.total_engagement,
			avg_sentiment = excluded.avg_sentiment,
			avg_virality = excluded.avg_virality,
			top_topics = excluded.top_topics,
			created_at = excluded.created_at`),
		m.ID, string(m.Platform), m.Source,
		formatTime(m.WindowStart), formatTime(m.WindowEnd),
		m.PostCount, m.TotalEngagement, m.AvgSentiment, m.AvgVirality,
		topics, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("store: save channel metrics %s: %w", m.ID, err)
	}

	return nil
}

// LatestChannelMetrics implements storage.MetricsStore. One row is returned
// per (platform, source) pair: the rollup with the newest window.
func (s *Store) LatestChannelMetrics(ctx context.Context, platform post.Platform) ([]storage.ChannelMetrics, error) {
	query := `
		SELECT id, platform, source, window_start, window_end,
			post_count, total_engagement, avg_sentiment, avg_virality,
			top_topics, created_at
		FROM channel_metrics cm
		WHERE cm.window_start = (
			SELECT MAX(window_start) FROM channel_metrics
			WHERE platform = cm.platform AND source = cm.source
		)`
	var args []any
	if platform != "" {
		query += " AND cm.platform = ?"
		args = append(args, string(platform))
	}
	query += " ORDER BY cm.platform, cm.source"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: latest channel metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []storage.ChannelMetrics
	for rows.Next() {
		var (
			m                               storage.ChannelMetrics
			plat, topics                    string
			windowStart, windowEnd, created string
		)
		if err := rows.Scan(
			&m.ID, &plat, &m.Source, &windowStart, &windowEnd,
			&m.PostCount, &m.TotalEngagement, &m.AvgSentiment, &m.AvgVirality,
			&topics, &created,
		); err != nil {
			return nil, fmt.Errorf("store: scan channel metrics: %w", err)
		}

		m.Platform = post.Platform(plat)
		if err := unmarshalJSON(topics, &m.TopTopics); err != nil {
			return nil, err
		}
		if m.WindowStart, err = parseTime(windowStart); err != nil {
			return nil, err
		}
		if m.WindowEnd, err = parseTime(windowEnd); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}

		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: latest channel metrics rows: %w", err)
	}

	return metrics, nil
}

// SaveCoinReport implements storage.ReportStore.
func (s *Store) SaveCoinReport(ctx context.Context, r storage.CoinReport) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	supporting := r.Supporting
	if supporting == "" {
		supporting = "{}"
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO coin_reports (
			id, symbol, sentiment_score, virality_score, trend_strength,
			volume_prediction, price_impact, confidence, sample_size,
			supporting, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			sentiment_score = excluded.sentiment_score,
			virality_score = excluded.virality_score,
			trend_strength = excluded.trend_strength,
			volume_prediction = excluded.volume_prediction,
			price_impact = excluded.price_impact,
			confidence = excluded.confidence,
			sample_size = excluded.sample_size,
			supporting = excluded.supporting,
			created_at = excluded.created_at`),
		r.ID, strings.ToUpper(r.Symbol),
		r.SentimentScore, r.ViralityScore, r.TrendStrength,
		r.VolumePrediction, r.PriceImpact, r.Confidence, r.SampleSize,
		supporting, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("store: save coin report %s: %w", r.ID, err)
	}

	return nil
}

// LatestCoinReport implements storage.ReportStore.
func (s *Store) LatestCoinReport(ctx context.Context, symbol string) (storage.CoinReport, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+reportColumns+`
		FROM coin_reports
		WHERE symbol = ?
		ORDER BY created_at DESC
		LIMIT 1`),
		strings.ToUpper(symbol),
	)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CoinReport{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CoinReport{}, fmt.Errorf("store: latest report %s: %w", symbol, err)
	}

	return r, nil
}

// ReportHistory implements storage.ReportStore.
func (s *Store) ReportHistory(ctx context.Context, symbol string, limit int) ([]storage.CoinReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM coin_reports
		WHERE symbol = ?
		ORDER BY created_at DESC`
	args := []any{strings.ToUpper(symbol)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: report history %s: %w", symbol, err)
	}
	defer func() { _ = rows.Close() }()

	var reports []storage.CoinReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("store: report history %s: %w", symbol, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: report history rows: %w", err)
	}

	return reports, nil
}

const reportColumns = `id, symbol, sentiment_score, virality_score, trend_strength,
		volume_prediction, price_impact, confidence, sample_size,
		supporting, created_at`

func scanReport(row scanner) (storage.CoinReport, error) {
	var (
		r         storage.CoinReport
		createdAt string
	)

	if err := row.Scan(
		&r.ID, &r.Symbol, &r.SentimentScore, &r.ViralityScore, &r.TrendStrength,
		&r.VolumePrediction, &r.PriceImpact, &r.Confidence, &r.SampleSize,
		&r.Supporting, &createdAt,
	); err != nil {
		return storage.CoinReport{}, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.CoinReport{}, err
	}

	return r, nil
}
