package bot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// sentimentLabel maps a compound score to a market mood.
func sentimentLabel(compound float64) string {
	switch {
	case compound >= 0.05:
		return "bullish 🟢"
	case compound <= -0.05:
		return "bearish 🔴"
	default:
		return "neutral ⚪"
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// formatAnalysis renders a single meme analysis reply.
func formatAnalysis(a storage.MemeAnalysis, cached bool) string {
	var sb strings.Builder
	sb.WriteString("🧠 *Meme Analysis*\n\n")
	fmt.Fprintf(&sb, "Sentiment: %s (compound %.2f)\n", sentimentLabel(a.Sentiment.Compound), a.Sentiment.Compound)
	fmt.Fprintf(&sb, "Virality: %s\n", pct(a.ViralityScore))
	fmt.Fprintf(&sb, "Crypto relevance: %s  |  Meme energy: %s\n", pct(a.CryptoScore), pct(a.MemeScore))

	if len(a.RelatedCoins) > 0 {
		fmt.Fprintf(&sb, "Related coins: %s\n", strings.Join(a.RelatedCoins, ", "))
	}
	if len(a.Topics) > 0 {
		fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(a.Topics, ", "))
	}

	if insightText := renderInsight(a.Insight); insightText != "" {
		sb.WriteString("\n💡 ")
		sb.WriteString(insightText)
		sb.WriteString("\n")
	}

	if cached {
		sb.WriteString("\n_Seen this one before - served from memory._")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderInsight extracts the human-readable parts of a stored model
// insight. Malformed or empty insight renders nothing.
func renderInsight(raw string) string {
	if raw == "" {
		return ""
	}
	var insight analysis.MemeInsight
	if err := json.Unmarshal([]byte(raw), &insight); err != nil {
		return ""
	}

	var parts []string
	if r := insight.MarketImpact.Reasoning; r != "" {
		parts = append(parts, r)
	}
	if insight.AdditionalInsights != "" {
		parts = append(parts, insight.AdditionalInsights)
	}
	return strings.Join(parts, " ")
}

// formatRadar renders the /radar leaderboard.
func formatRadar(analyses []storage.MemeAnalysis) string {
	var sb strings.Builder
	sb.WriteString("🔍 *Meme Radar* - trending right now\n\n")
	for i, a := range analyses {
		title := truncate(a.Text, 60)
		if title == "" {
			title = "(image meme)"
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
		fmt.Fprintf(&sb, "   %s via %s | virality %s", sentimentLabel(a.Sentiment.Compound), a.Source, pct(a.ViralityScore))
		if a.Permalink != "" {
			fmt.Fprintf(&sb, " | [link](%s)", a.Permalink)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatReport renders a /detective memecoin report.
func formatReport(r storage.CoinReport, ev analysis.ReportEvidence) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 *Memecoin Detective: %s*\n\n", r.Symbol)
	fmt.Fprintf(&sb, "Sentiment: %s (%.2f)\n", sentimentLabel(r.SentimentScore), r.SentimentScore)
	fmt.Fprintf(&sb, "Virality impact: %s\n", pct(r.ViralityScore))
	fmt.Fprintf(&sb, "Trend strength: %s\n", pct(r.TrendStrength))
	fmt.Fprintf(&sb, "Predicted volume change: %+.1f%%\n", r.VolumePrediction)
	fmt.Fprintf(&sb, "Predicted price impact: %+.1f%%\n", r.PriceImpact)
	fmt.Fprintf(&sb, "Confidence: %s (from %d posts)\n", pct(r.Confidence), r.SampleSize)

	if len(ev.PlatformCounts) > 0 {
		sb.WriteString("\nWhere the chatter is:\n")
		for _, pl := range sortedPlatforms(ev.PlatformCounts) {
			fmt.Fprintf(&sb, "  %s: %d posts\n", pl, ev.PlatformCounts[pl])
		}
	}
	if len(ev.CommonTopics) > 0 {
		fmt.Fprintf(&sb, "\nHot topics: %s\n", strings.Join(ev.CommonTopics, ", "))
	}

	sb.WriteString("\n_Not financial advice. Memes are volatile._")
	return sb.String()
}

func sortedPlatforms(counts map[post.Platform]int) []post.Platform {
	platforms := make([]post.Platform, 0, len(counts))
	for pl := range counts {
		platforms = append(platforms, pl)
	}
	sort.Slice(platforms, func(i, j int) bool {
		if counts[platforms[i]] != counts[platforms[j]] {
			return counts[platforms[i]] > counts[platforms[j]]
		}
		return platforms[i] < platforms[j]
	})
	return platforms
}

// formatVibe renders the /vibe sentiment breakdown.
func formatVibe(analyses []storage.MemeAnalysis, filter string) string {
	var bullish, bearish, neutral int
	var compoundSum, viralitySum float64
	for _, a := range analyses {
		switch {
		case a.Sentiment.Compound >= 0.05:
			bullish++
		case a.Sentiment.Compound <= -0.05:
			bearish++
		default:
			neutral++
		}
		compoundSum += a.Sentiment.Compound
		viralitySum += a.ViralityScore
	}
	n := float64(len(analyses))

	var sb strings.Builder
	sb.WriteString("🎭 *Vibe Check*")
	if filter != "" {
		fmt.Fprintf(&sb, " for %q", filter)
	}
	fmt.Fprintf(&sb, " - last 24h, %d posts\n\n", len(analyses))
	fmt.Fprintf(&sb, "Overall mood: %s\n\n", sentimentLabel(compoundSum/n))
	fmt.Fprintf(&sb, "🟢 Bullish: %d (%s)\n", bullish, pct(float64(bullish)/n))
	fmt.Fprintf(&sb, "🔴 Bearish: %d (%s)\n", bearish, pct(float64(bearish)/n))
	fmt.Fprintf(&sb, "⚪ Neutral: %d (%s)\n", neutral, pct(float64(neutral)/n))
	fmt.Fprintf(&sb, "\nAverage virality: %s", pct(viralitySum/n))
	return sb.String()
}

// formatPrediction renders a model-backed /crystal forecast.
func formatPrediction(subject storage.MemeAnalysis, p analysis.MarketPrediction) string {
	var sb strings.Builder
	sb.WriteString("🔮 *Crystal Ball* - market forecast\n\n")
	fmt.Fprintf(&sb, "Based on the most viral recent meme (%s, virality %s):\n\n",
		subject.Source, pct(subject.ViralityScore))

	if d := p.MarketMovement.Direction; d != "" {
		fmt.Fprintf(&sb, "Movement: *%s* (confidence %s", d, pct(p.MarketMovement.Confidence))
		if p.MarketMovement.Timeframe != "" {
			fmt.Fprintf(&sb, ", %s", p.MarketMovement.Timeframe)
		}
		sb.WriteString(")\n")
	}
	if p.VolumeImpact.ExpectedChange != 0 {
		fmt.Fprintf(&sb, "Volume impact: %+.1f%%\n", p.VolumeImpact.ExpectedChange)
	}
	if len(p.VolumeImpact.AffectedCoins) > 0 {
		fmt.Fprintf(&sb, "Coins to watch: %s\n", strings.Join(p.VolumeImpact.AffectedCoins, ", "))
	}
	if len(p.Timeline) > 0 {
		sb.WriteString("\nTimeline:\n")
		for _, step := range p.Timeline {
			fmt.Fprintf(&sb, "  • %s\n", step)
		}
	}
	if len(p.RiskFactors) > 0 {
		sb.WriteString("\nRisks:\n")
		for _, risk := range p.RiskFactors {
			fmt.Fprintf(&sb, "  ⚠ %s\n", risk)
		}
	}

	sb.WriteString("\n_Not financial advice. The crystal ball has been wrong before._")
	return sb.String()
}

// formatHeuristicForecast renders the /crystal degraded mode: a summary
// built from lexical scores only, used when no model is configured.
func formatHeuristicForecast(analyses []storage.MemeAnalysis) string {
	var compoundSum, viralitySum float64
	coins := map[string]int{}
	for _, a := range analyses {
		compoundSum += a.Sentiment.Compound
		viralitySum += a.ViralityScore
		for _, c := range a.RelatedCoins {
			coins[c]++
		}
	}
	n := float64(len(analyses))
	avgCompound := compoundSum / n
	avgVirality := viralitySum / n

	direction := "sideways"
	if avgCompound >= 0.05 {
		direction = "up"
	} else if avgCompound <= -0.05 {
		direction = "down"
	}

	var sb strings.Builder
	sb.WriteString("🔮 *Crystal Ball* - heuristic read\n\n")
	fmt.Fprintf(&sb, "From %d recent memes: sentiment %s, average virality %s.\n",
		len(analyses), sentimentLabel(avgCompound), pct(avgVirality))
	fmt.Fprintf(&sb, "Short-term meme momentum points *%s*.\n", direction)

	if len(coins) > 0 {
		top := make([]string, 0, len(coins))
		for c := range coins {
			top = append(top, c)
		}
		sort.Slice(top, func(i, j int) bool {
			if coins[top[i]] != coins[top[j]] {
				return coins[top[i]] > coins[top[j]]
			}
			return top[i] < top[j]
		})
		if len(top) > 5 {
			top = top[:5]
		}
		fmt.Fprintf(&sb, "Most mentioned coins: %s\n", strings.Join(top, ", "))
	}

	sb.WriteString("\n_Configure a model provider for deeper forecasts._")
	return sb.String()
}

// formatObserve renders the /observe cross-platform summary.
func formatObserve(metrics []storage.ChannelMetrics) string {
	byPlatform := map[post.Platform][]storage.ChannelMetrics{}
	for _, m := range metrics {
		byPlatform[m.Platform] = append(byPlatform[m.Platform], m)
	}

	platforms := make([]post.Platform, 0, len(byPlatform))
	for pl := range byPlatform {
		platforms = append(platforms, pl)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	var sb strings.Builder
	sb.WriteString("🌐 *Meme Observatory* - latest rollups\n")
	for _, pl := range platforms {
		group := byPlatform[pl]

		var posts, engagement int
		topics := map[string]int{}
		for _, m := range group {
			posts += m.PostCount
			engagement += m.TotalEngagement
			for _, topic := range m.TopTopics {
				topics[topic]++
			}
		}

		fmt.Fprintf(&sb, "\n*%s* - %d sources, %d posts\n", pl, len(group), posts)
		if posts > 0 {
			fmt.Fprintf(&sb, "  Avg engagement: %d per post\n", engagement/posts)
		}
		if len(topics) > 0 {
			top := make([]string, 0, len(topics))
			for topic := range topics {
				top = append(top, topic)
			}
			sort.Slice(top, func(i, j int) bool {
				if topics[top[i]] != topics[top[j]] {
					return topics[top[i]] > topics[top[j]]
				}
				return top[i] < top[j]
			})
			if len(top) > 5 {
				top = top[:5]
			}
			fmt.Fprintf(&sb, "  Top topics: %s\n", strings.Join(top, ", "))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// truncate caps a title at max runes, appending an ellipsis. Meme titles
// are emoji-heavy, so the cut must never split a multibyte rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
