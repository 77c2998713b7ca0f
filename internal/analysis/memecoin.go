package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// ErrInsufficientData is returned when too few relevant analyses exist
// to produce a trustworthy coin report.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// minRelevantAnalyses is the minimum number of relevant analyses a coin
// report requires. Below this, any prediction is noise.
const minRelevantAnalyses = 3

// platformWeights bias the weighted sentiment toward platforms with
// stronger memecoin signal. Unlisted platforms get a residual weight.
var platformWeights = map[post.Platform]float64{
	post.PlatformReddit:   0.4,
	post.PlatformTwitter:  0.3,
	post.PlatformTelegram: 0.3,
}

const defaultPlatformWeight = 0.1

// ViralPost is a supporting-evidence reference to a high-virality post.
type ViralPost struct {
	Platform  post.Platform `json:"platform"`
	Virality  float64       `json:"virality"`
	Permalink string        `json:"permalink,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// ReportEvidence is the supporting data attached to a coin report.
type ReportEvidence struct {
	AnalysisCount    int                     `json:"analysis_count"`
	PlatformCounts   map[post.Platform]int   `json:"platform_counts"`
	SentimentAverage storage.SentimentScores `json:"sentiment_average"`
	ViralPosts       []ViralPost             `json:"viral_posts,omitempty"`
	CommonTopics     []string                `json:"common_topics,omitempty"`
	CommonHashtags   []string                `json:"common_hashtags,omitempty"`
}

// AnalyzeCoin aggregates stored analyses into a market impact prediction
// for one symbol. Only analyses mentioning the symbol (or its aliases)
// within the timeframe are considered; fewer than three relevant analyses
// yields ErrInsufficientData.
func AnalyzeCoin(symbol string, analyses []storage.MemeAnalysis, timeframe time.Duration, now time.Time) (storage.CoinReport, ReportEvidence, error) {
	symbol = strings.ToUpper(symbol)
	relevant := filterRelevant(symbol, analyses, timeframe, now)
	if len(relevant) < minRelevantAnalyses {
		return storage.CoinReport{}, ReportEvidence{}, fmt.Errorf("%w: %s has %d relevant analyses, need %d",
			ErrInsufficientData, symbol, len(relevant), minRelevantAnalyses)
	}

	sentiment := weightedSentiment(relevant)
	virality := viralityImpact(relevant)
	trend := trendStrength(relevant)

	report := storage.CoinReport{
		Symbol:         symbol,
		SentimentScore: sentiment,
		ViralityScore:  virality,
		TrendStrength:  trend,
		// Volume reacts to virality most; price is dampened since memes
		// move volume far more reliably than they move price.
		VolumePrediction: (sentiment*0.3 + virality*0.4 + trend*0.3) * 100,
		PriceImpact:      (sentiment*0.4 + virality*0.3 + trend*0.3) * 0.7 * 100,
		Confidence:       confidence(relevant),
		SampleSize:       len(relevant),
		CreatedAt:        now,
	}

	return report, buildEvidence(relevant), nil
}

// filterRelevant keeps analyses within the timeframe that mention the
// symbol through related-coin detection or raw text match.
func filterRelevant(symbol string, analyses []storage.MemeAnalysis, timeframe time.Duration, now time.Time) []storage.MemeAnalysis {
	cutoff := now.Add(-timeframe)
	aliases := append([]string{strings.ToLower(symbol)}, CoinSymbols[symbol]...)

	var relevant []storage.MemeAnalysis
	for _, a := range analyses {
		created := a.PostCreatedAt
		if created.IsZero() {
			created = a.CreatedAt
		}
		if created.Before(cutoff) {
			continue
		}

		if slices.Contains(a.RelatedCoins, symbol) {
			relevant = append(relevant, a)
			continue
		}

		text := strings.ToLower(a.Text + " " + strings.Join(a.Topics, " "))
		for _, alias := range aliases {
			if strings.Contains(text, alias) {
				relevant = append(relevant, a)
				break
			}
		}
	}

	// Oldest first, so recency weighting in viralityImpact lines up.
	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].PostCreatedAt.Before(relevant[j].PostCreatedAt)
	})
	return relevant
}

// weightedSentiment averages per-platform compound sentiment, weighted
// by platform signal strength.
func weightedSentiment(analyses []storage.MemeAnalysis) float64 {
	sums := make(map[post.Platform]float64)
	counts := make(map[post.Platform]int)
	for _, a := range analyses {
		sums[a.Platform] += a.Sentiment.Positive - a.Sentiment.Negative
		counts[a.Platform]++
	}

	var weighted, totalWeight float64
	for platform, count := range counts {
		weight, ok := platformWeights[platform]
		if !ok {
			weight = defaultPlatformWeight
		}
		weighted += (sums[platform] / float64(count)) * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// viralityImpact averages virality scores with recent analyses weighted
// up to twice as heavily as the oldest.
func viralityImpact(analyses []storage.MemeAnalysis) float64 {
	n := len(analyses)
	if n == 0 {
		return 0
	}

	var sum, totalWeight float64
	for i, a := range analyses {
		weight := 0.5
		if n > 1 {
			weight = 0.5 + 0.5*float64(i)/float64(n-1)
		}
		sum += a.ViralityScore * weight
		totalWeight += weight
	}
	return sum / totalWeight
}

// trendStrength measures engagement growth across the sample: the spread
// between the weakest and strongest engagement, relative to the weakest.
func trendStrength(analyses []storage.MemeAnalysis) float64 {
	rates := make([]float64, 0, len(analyses))
	for _, a := range analyses {
		rates = append(rates, a.EngagementRate)
	}
	if len(rates) == 0 {
		return 0
	}

	sort.Float64s(rates)
	low := rates[0]
	if low < 0.0001 {
		low = 0.0001
	}
	return clamp01((rates[len(rates)-1] - rates[0]) / low)
}

// confidence scores how trustworthy the report is: sample size, and the
// consistency of sentiment and virality across the sample.
func confidence(analyses []storage.MemeAnalysis) float64 {
	dataConfidence := math.Min(float64(len(analyses))/10, 1)

	sentiments := make([]float64, 0, len(analyses))
	viralities := make([]float64, 0, len(analyses))
	for _, a := range analyses {
		sentiments = append(sentiments, a.Sentiment.Positive-a.Sentiment.Negative)
		viralities = append(viralities, a.ViralityScore)
	}

	sentimentConfidence := 1 - math.Min(stddev(sentiments), 1)
	viralityConfidence := 1 - math.Min(stddev(viralities), 1)

	return dataConfidence*0.4 + sentimentConfidence*0.3 + viralityConfidence*0.3
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// buildEvidence compiles the supporting data for a report.
func buildEvidence(analyses []storage.MemeAnalysis) ReportEvidence {
	ev := ReportEvidence{
		AnalysisCount:  len(analyses),
		PlatformCounts: make(map[post.Platform]int),
	}

	var sum storage.SentimentScores
	topicFreq := make(map[string]int)
	hashtagFreq := make(map[string]int)

	for _, a := range analyses {
		ev.PlatformCounts[a.Platform]++
		sum.Positive += a.Sentiment.Positive
		sum.Negative += a.Sentiment.Negative
		sum.Neutral += a.Sentiment.Neutral
		sum.Compound += a.Sentiment.Compound
		for _, topic := range a.Topics {
			topicFreq[topic]++
		}
		for _, tag := range a.Hashtags {
			hashtagFreq[tag]++
		}
	}

	n := float64(len(analyses))
	if n > 0 {
		ev.SentimentAverage = storage.SentimentScores{
			Positive: sum.Positive / n,
			Negative: sum.Negative / n,
			Neutral:  sum.Neutral / n,
			Compound: sum.Compound / n,
		}
	}

	ev.CommonTopics = topByFrequency(topicFreq, 5)
	ev.CommonHashtags = topByFrequency(hashtagFreq, 5)
	ev.ViralPosts = topViralPosts(analyses, 5)

	return ev
}

func topByFrequency(freq map[string]int, limit int) []string {
	items := make([]string, 0, len(freq))
	for item := range freq {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if freq[items[i]] != freq[items[j]] {
			return freq[items[i]] > freq[items[j]]
		}
		return items[i] < items[j]
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func topViralPosts(analyses []storage.MemeAnalysis, limit int) []ViralPost {
	sorted := make([]storage.MemeAnalysis, len(analyses))
	copy(sorted, analyses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ViralityScore > sorted[j].ViralityScore
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	posts := make([]ViralPost, 0, len(sorted))
	for _, a := range sorted {
		posts = append(posts, ViralPost{
			Platform:  a.Platform,
			Virality:  a.ViralityScore,
			Permalink: a.Permalink,
			CreatedAt: a.PostCreatedAt,
		})
	}
	return posts
}
