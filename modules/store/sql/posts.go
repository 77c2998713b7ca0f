package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/azura-ai/azura/pkg/post"
)

// SavePosts implements storage.PostStore. The batch is written in one
// transaction; re-collecting a post refreshes its metrics snapshot.
func (s *Store) SavePosts(ctx context.Context, posts []post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin save posts: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := s.rebind(`
		INSERT INTO platform_posts (
			platform, post_id, source, title, content_text, author,
			image_url, permalink, metrics, hashtags, created_at, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform, post_id) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			content_text = excluded.content_text,
			author = excluded.author,
			image_url = excluded.image_url,
			permalink = excluded.permalink,
			metrics = excluded.metrics,
			hashtags = excluded.hashtags,
			created_at = excluded.created_at,
			collected_at = excluded.collected_at`)

	collectedAt := formatTime(time.Now().UTC())
	for _, p := range posts {
		metrics, err := marshalJSON(p.Metrics)
		if err != nil {
			return err
		}
		hashtags, err := marshalJSON(p.Hashtags)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query,
			string(p.Platform), p.ID, p.Source, p.Title, p.Text, p.Author,
			p.ImageURL, p.Permalink, metrics, hashtags,
			formatTime(p.CreatedAt), collectedAt,
		); err != nil {
			return fmt.Errorf("store: save post %s/%s: %w", p.Platform, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save posts: %w", err)
	}

	return nil
}

// RecentPosts implements storage.PostStore.
func (s *Store) RecentPosts(ctx context.Context, platform post.Platform, since time.Time, limit int) ([]post.Post, error) {
	query := `
		SELECT platform, post_id, source, title, content_text, author,
			image_url, permalink, metrics, hashtags, created_at
		FROM platform_posts
		WHERE created_at >= ?`
	args := []any{formatTime(since)}
	if platform != "" {
		query += " AND platform = ?"
		args = append(args, string(platform))
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: recent posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []post.Post
	for rows.Next() {
		var (
			p                       post.Post
			plat, metrics, hashtags string
			createdAt               string
		)
		if err := rows.Scan(
			&plat, &p.ID, &p.Source, &p.Title, &p.Text, &p.Author,
			&p.ImageURL, &p.Permalink, &metrics, &hashtags, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan post: %w", err)
		}

		p.Platform = post.Platform(plat)
		if err := unmarshalJSON(metrics, &p.Metrics); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(hashtags, &p.Hashtags); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent posts rows: %w", err)
	}

	return posts, nil
}
