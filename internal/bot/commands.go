package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/message"
	"github.com/azura-ai/azura/pkg/post"
)

const welcomeText = `🚀 *Welcome to Azura AI* - your meme & memecoin analysis companion!

Use these commands to navigate:
/radar - spot trending memes
/detective <SYMBOL> - track memecoin movements
/vibe - check social sentiment
/crystal - get meme market predictions
/observe - monitor meme evolution across platforms

You can also send me a meme photo and I'll analyze it.`

// handleRadar sweeps the collectors, analyzes what they found, and
// replies with the top memes by virality.
func (b *Bot) handleRadar(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	if err := b.allow(security.KindAnalysis, in.Chat.ID); err != nil {
		return reply(in, analysisLimitText), nil
	}

	limit := defaultRadarLimit
	if len(in.Args) > 0 {
		if n, err := strconv.Atoi(in.Args[0]); err == nil && n > 0 {
			limit = min(n, maxRadarLimit)
		}
	}

	analyses, err := b.sweep(ctx, limit)
	if err != nil {
		return reply(in, "🔍 Meme Radar is offline right now. Try again in a few minutes."), err
	}
	if len(analyses) == 0 {
		return reply(in, "🔍 Meme Radar found nothing trending. The timeline is quiet."), nil
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].ViralityScore > analyses[j].ViralityScore
	})
	if len(analyses) > limit {
		analyses = analyses[:limit]
	}

	return reply(in, formatRadar(analyses)), nil
}

// sweep runs every registered collector, stores the posts, and analyzes
// them. Collector failures are tolerated; analysis failures on single
// posts are logged and skipped.
func (b *Bot) sweep(ctx context.Context, limit int) ([]storage.MemeAnalysis, error) {
	if b.scrapers == nil {
		// No collectors loaded: fall back to what the cron sweep stored.
		return b.store.RecentAnalyses(ctx, b.now().Add(-reportWindow), limit*3)
	}

	var (
		analyses []storage.MemeAnalysis
		swept    int
	)
	for _, s := range b.scrapers.All() {
		posts, err := s.TrendingPosts(ctx, limit*2)
		if err != nil {
			b.logger.Warn("collector failed during radar sweep",
				"platform", s.Platform(),
				"error", err)
			continue
		}
		swept++

		if err := b.store.SavePosts(ctx, posts); err != nil {
			return nil, fmt.Errorf("bot: save posts: %w", err)
		}
		for _, p := range posts {
			a, _, err := b.analyzer.AnalyzePost(ctx, p)
			if err != nil {
				b.logger.Warn("post analysis failed",
					"platform", p.Platform,
					"post", p.ID,
					"error", err)
				continue
			}
			analyses = append(analyses, a)
		}
	}
	if swept == 0 {
		return nil, errors.New("bot: all collectors failed")
	}
	return analyses, nil
}

// handleDetective builds a memecoin report for the requested symbol.
func (b *Bot) handleDetective(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	if len(in.Args) == 0 {
		return reply(in, "📈 Which coin? Usage: /detective DOGE"), nil
	}
	if err := b.allow(security.KindAnalysis, in.Chat.ID); err != nil {
		return reply(in, analysisLimitText), nil
	}

	symbol := strings.ToUpper(strings.TrimPrefix(in.Args[0], "$"))

	report, evidence, err := b.analyzer.CoinReport(ctx, symbol, reportWindow)
	if errors.Is(err, analysis.ErrInsufficientData) {
		return reply(in, fmt.Sprintf(
			"📈 Not enough recent chatter about *%s* to build a report. I need at least a few mentions in the last 24h.",
			symbol)), nil
	}
	if err != nil {
		return reply(in, "📈 Memecoin Detective hit a snag. Try again shortly."), err
	}

	return reply(in, formatReport(report, evidence)), nil
}

// handleVibe aggregates sentiment over recent analyses, optionally
// filtered by platform or source substring.
func (b *Bot) handleVibe(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	analyses, err := b.store.RecentAnalyses(ctx, b.now().Add(-reportWindow), 0)
	if err != nil {
		return reply(in, "🎭 Vibe Check is unavailable right now."), err
	}

	filter := ""
	if len(in.Args) > 0 {
		filter = strings.ToLower(in.Args[0])
		analyses = filterBySource(analyses, filter)
	}
	if len(analyses) == 0 {
		if filter != "" {
			return reply(in, fmt.Sprintf("🎭 No recent posts matching %q to vibe-check.", filter)), nil
		}
		return reply(in, "🎭 Nothing analyzed in the last 24h. Run /radar first."), nil
	}

	return reply(in, formatVibe(analyses, filter)), nil
}

// filterBySource keeps analyses whose platform or source contains the
// filter string.
func filterBySource(analyses []storage.MemeAnalysis, filter string) []storage.MemeAnalysis {
	out := analyses[:0:0]
	for _, a := range analyses {
		if string(a.Platform) == filter || strings.Contains(strings.ToLower(a.Source), filter) {
			out = append(out, a)
		}
	}
	return out
}

// handleCrystal asks the model for a market forecast built on the most
// viral recent analysis, degrading to a heuristic summary when no
// provider is configured.
func (b *Bot) handleCrystal(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	if err := b.allow(security.KindAnalysis, in.Chat.ID); err != nil {
		return reply(in, analysisLimitText), nil
	}

	analyses, err := b.store.RecentAnalyses(ctx, b.now().Add(-reportWindow), 50)
	if err != nil {
		return reply(in, "🔮 The crystal ball is cloudy. Try again shortly."), err
	}
	if len(analyses) == 0 {
		return reply(in, "🔮 No recent meme data to read. Run /radar first."), nil
	}

	subject := analyses[0]
	for _, a := range analyses[1:] {
		if a.ViralityScore > subject.ViralityScore {
			subject = a
		}
	}

	prediction, err := b.analyzer.MarketPrediction(ctx, subject)
	if err != nil {
		if !errors.Is(err, provider.ErrNoProvider) {
			b.logger.Warn("market prediction failed", "error", err)
		}
		return reply(in, formatHeuristicForecast(analyses)), nil
	}

	return reply(in, formatPrediction(subject, prediction)), nil
}

// handleObserve summarizes the stored per-source rollups.
func (b *Bot) handleObserve(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	metrics, err := b.store.LatestChannelMetrics(ctx, "")
	if err != nil {
		return reply(in, "🌐 Meme Observatory is unavailable right now."), err
	}
	if len(metrics) == 0 {
		return reply(in, "🌐 No monitoring data yet. Rollups are built hourly from collected posts."), nil
	}

	return reply(in, formatObserve(metrics)), nil
}

// handlePhoto analyzes a photo sent to the bot as a single meme.
func (b *Bot) handlePhoto(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	if err := b.allow(security.KindAnalysis, in.Chat.ID); err != nil {
		return reply(in, analysisLimitText), nil
	}

	p := post.Post{
		ID:        in.ID,
		Platform:  post.PlatformTelegram,
		Source:    "telegram/" + in.Chat.ID,
		Text:      in.Caption,
		Author:    in.Sender.Username,
		ImageURL:  in.PhotoURL,
		CreatedAt: in.Timestamp,
	}

	result, cached, err := b.analyzer.AnalyzePost(ctx, p)
	if err != nil {
		return reply(in, "😵 I couldn't analyze that meme. Try another one."), err
	}

	return reply(in, formatAnalysis(result, cached)), nil
}

const analysisLimitText = "⏳ Analysis limit reached for this chat. The models need a breather; try again in a minute."
