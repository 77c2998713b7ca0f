package analysis

import (
	"fmt"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// BuildRollup aggregates the analyses for one (platform, source) pair over
// a time window into a ChannelMetrics record. The caller filters the
// analyses; an empty slice yields a zero-count record, which is still
// stored so gaps in activity are visible.
func BuildRollup(platform post.Platform, source string, analyses []storage.MemeAnalysis, windowStart, windowEnd time.Time) storage.ChannelMetrics {
	m := storage.ChannelMetrics{
		ID:          fmt.Sprintf("%s-%s-%d", platform, source, windowStart.Unix()),
		Platform:    platform,
		Source:      source,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		PostCount:   len(analyses),
		CreatedAt:   windowEnd,
	}

	if len(analyses) == 0 {
		return m
	}

	var sentimentSum, viralitySum float64
	topicFreq := make(map[string]int)
	for _, a := range analyses {
		sentimentSum += a.Sentiment.Compound
		viralitySum += a.ViralityScore
		// EngagementRate saturates at 10k interactions; reverse the
		// normalization to accumulate a comparable absolute total.
		m.TotalEngagement += int(a.EngagementRate * 10000)
		for _, topic := range a.Topics {
			topicFreq[topic]++
		}
	}

	n := float64(len(analyses))
	m.AvgSentiment = sentimentSum / n
	m.AvgVirality = viralitySum / n
	m.TopTopics = topByFrequency(topicFreq, 5)

	return m
}

// GroupBySource partitions analyses by (platform, source).
func GroupBySource(analyses []storage.MemeAnalysis) map[post.Platform]map[string][]storage.MemeAnalysis {
	grouped := make(map[post.Platform]map[string][]storage.MemeAnalysis)
	for _, a := range analyses {
		if grouped[a.Platform] == nil {
			grouped[a.Platform] = make(map[string][]storage.MemeAnalysis)
		}
		grouped[a.Platform][a.Source] = append(grouped[a.Platform][a.Source], a)
	}
	return grouped
}
