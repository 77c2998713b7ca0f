// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// MemStore is an in-memory implementation of storage.Store.
// All methods are safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	analyses map[string]storage.MemeAnalysis
	posts    map[string]post.Post
	metrics  []storage.ChannelMetrics
	reports  []storage.CoinReport

	// FailWith, when set, is returned by every method.
	FailWith error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		analyses: make(map[string]storage.MemeAnalysis),
		posts:    make(map[string]post.Post),
	}
}

// Interface guard.
var _ storage.Store = (*MemStore)(nil)

func (s *MemStore) SaveAnalysis(_ context.Context, a storage.MemeAnalysis) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.Hash] = a
	return nil
}

func (s *MemStore) GetAnalysis(_ context.Context, hash string) (storage.MemeAnalysis, error) {
	if s.FailWith != nil {
		return storage.MemeAnalysis{}, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[hash]
	if !ok {
		return storage.MemeAnalysis{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *MemStore) RecentAnalyses(_ context.Context, since time.Time, limit int) ([]storage.MemeAnalysis, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.MemeAnalysis
	for _, a := range s.analyses {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) SavePosts(_ context.Context, posts []post.Post) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range posts {
		s.posts[string(p.Platform)+"/"+p.ID] = p
	}
	return nil
}

func (s *MemStore) RecentPosts(_ context.Context, platform post.Platform, since time.Time, limit int) ([]post.Post, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []post.Post
	for _, p := range s.posts {
		if platform != "" && p.Platform != platform {
			continue
		}
		if !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) SaveChannelMetrics(_ context.Context, m storage.ChannelMetrics) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
	return nil
}

func (s *MemStore) LatestChannelMetrics(_ context.Context, platform post.Platform) ([]storage.ChannelMetrics, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]storage.ChannelMetrics)
	for _, m := range s.metrics {
		if platform != "" && m.Platform != platform {
			continue
		}
		key := string(m.Platform) + "/" + m.Source
		if prev, ok := latest[key]; !ok || m.WindowStart.After(prev.WindowStart) {
			latest[key] = m
		}
	}

	out := make([]storage.ChannelMetrics, 0, len(latest))
	for _, m := range latest {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].Platform)+"/"+out[i].Source < string(out[j].Platform)+"/"+out[j].Source
	})
	return out, nil
}

func (s *MemStore) SaveCoinReport(_ context.Context, r storage.CoinReport) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *MemStore) LatestCoinReport(_ context.Context, symbol string) (storage.CoinReport, error) {
	if s.FailWith != nil {
		return storage.CoinReport{}, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbol = strings.ToUpper(symbol)
	var found *storage.CoinReport
	for i := range s.reports {
		r := &s.reports[i]
		if r.Symbol != symbol {
			continue
		}
		if found == nil || r.CreatedAt.After(found.CreatedAt) {
			found = r
		}
	}
	if found == nil {
		return storage.CoinReport{}, storage.ErrNotFound
	}
	return *found, nil
}

func (s *MemStore) ReportHistory(_ context.Context, symbol string, limit int) ([]storage.CoinReport, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbol = strings.ToUpper(symbol)
	var out []storage.CoinReport
	for _, r := range s.reports {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for hash, a := range s.analyses {
		if a.CreatedAt.Before(cutoff) {
			delete(s.analyses, hash)
			pruned++
		}
	}
	for key, p := range s.posts {
		if p.CreatedAt.Before(cutoff) {
			delete(s.posts, key)
			pruned++
		}
	}
	return pruned, nil
}

func (s *MemStore) Ping(_ context.Context) error {
	return s.FailWith
}

// AnalysisCount returns the number of stored analyses.
func (s *MemStore) AnalysisCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}

// PostCount returns the number of stored posts.
func (s *MemStore) PostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Reports returns a copy of all stored reports.
func (s *MemStore) Reports() []storage.CoinReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.CoinReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Metrics returns a copy of all stored rollups.
func (s *MemStore) Metrics() []storage.ChannelMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.ChannelMetrics, len(s.metrics))
	copy(out, s.metrics)
	return out
}
