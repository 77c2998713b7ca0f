package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Completer routes completion requests by role. *provider.Chain satisfies it.
type Completer interface {
	Complete(ctx context.Context, role provider.Role, req provider.CompletionRequest) (provider.CompletionResponse, error)
}

const memeAnalystPrompt = `You are an expert meme analyst specializing in crypto and memecoin trends.
Analyze the meme for:
1. Cultural references and symbolism
2. Potential impact on crypto markets
3. Memetic value and viral potential
4. Hidden meanings or subtle jokes
5. Related cryptocurrencies or projects
Respond with a JSON object with keys: cultural_references (array of strings),
market_impact (object with sentiment, strength, reasoning), viral_potential
(object with score, factors), hidden_meanings (array of strings),
related_cryptos (array of strings), additional_insights (string).`

const marketAnalystPrompt = `You are a crypto market analyst specializing in memecoin trends.
Based on the meme analysis data, predict:
1. Potential market movements
2. Trading volume impact
3. Social sentiment spread
4. Timeline of effects
Be specific but cautious with predictions.
Respond with a JSON object with keys: market_movement (object with direction,
confidence, timeframe), volume_impact (object with expected_change,
affected_coins), sentiment_spread (object with velocity, platforms),
timeline (array of strings), risk_factors (array of strings).`

// MemeInsight is the model's structured read of a single meme.
type MemeInsight struct {
	CulturalReferences []string `json:"cultural_references"`
	MarketImpact       struct {
		Sentiment string  `json:"sentiment"`
		Strength  float64 `json:"strength"`
		Reasoning string  `json:"reasoning"`
	} `json:"market_impact"`
	ViralPotential struct {
		Score   float64  `json:"score"`
		Factors []string `json:"factors"`
	} `json:"viral_potential"`
	HiddenMeanings     []string `json:"hidden_meanings"`
	RelatedCryptos     []string `json:"related_cryptos"`
	AdditionalInsights string   `json:"additional_insights"`
}

// MarketPrediction is the model's structured market forecast for a report.
type MarketPrediction struct {
	MarketMovement struct {
		Direction  string  `json:"direction"`
		Confidence float64 `json:"confidence"`
		Timeframe  string  `json:"timeframe"`
	} `json:"market_movement"`
	VolumeImpact struct {
		ExpectedChange float64  `json:"expected_change"`
		AffectedCoins  []string `json:"affected_coins"`
	} `json:"volume_impact"`
	SentimentSpread struct {
		Velocity  float64  `json:"velocity"`
		Platforms []string `json:"platforms"`
	} `json:"sentiment_spread"`
	Timeline    []string `json:"timeline"`
	RiskFactors []string `json:"risk_factors"`
}

// Analyzer scores content and persists the results. Model-backed insight
// is optional: a nil Completer degrades to purely lexical analysis.
type Analyzer struct {
	store     storage.Store
	completer Completer
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalyzer creates an Analyzer over the given store.
func NewAnalyzer(store storage.Store, completer Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:     store,
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
}

// AnalyzePost analyzes a single post, consulting the store first so
// identical content is never analyzed twice. The second return value
// reports whether the result came from the cache.
func (a *Analyzer) AnalyzePost(ctx context.Context, p post.Post) (storage.MemeAnalysis, bool, error) {
	ctx, span := otel.Tracer("azura/analysis").Start(ctx, "analysis.post")
	span.SetAttributes(
		attribute.String("post.platform", string(p.Platform)),
		attribute.String("post.source", p.Source),
	)
	defer span.End()

	hash := ContentHash(p)

	cached, err := a.store.GetAnalysis(ctx, hash)
	if err == nil {
		span.SetAttributes(attribute.Bool("analysis.cached", true))
		return cached, true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.MemeAnalysis{}, false, fmt.Errorf("analysis: lookup %s: %w", hash, err)
	}

	now := a.now().UTC()
	trends := ExtractTrends(p)

	result := storage.MemeAnalysis{
		Hash:           hash,
		Platform:       p.Platform,
		Source:         p.Source,
		Permalink:      p.Permalink,
		ImageURL:       p.ImageURL,
		Text:           p.Content(),
		Sentiment:      ScoreSentiment(p.Content()),
		ViralityScore:  ViralityScore(p.Metrics),
		EngagementRate: EngagementRate(p.Metrics),
		TrendVelocity:  TrendVelocity(p, now),
		CryptoScore:    trends.CryptoScore,
		MemeScore:      trends.MemeScore,
		Topics:         trends.Topics,
		Hashtags:       p.Hashtags,
		RelatedCoins:   trends.RelatedCoins,
		PostCreatedAt:  p.CreatedAt,
		CreatedAt:      now,
	}

	if insight, err := a.memeInsight(ctx, p); err != nil {
		// Lexical scores stand on their own; insight is best-effort.
		a.logger.Warn("model insight unavailable", "hash", hash, "error", err)
	} else {
		result.Insight = insight
	}

	if err := a.store.SaveAnalysis(ctx, result); err != nil {
		return storage.MemeAnalysis{}, false, fmt.Errorf("analysis: save %s: %w", hash, err)
	}

	return result, false, nil
}

// memeInsight requests a structured model read of the post. Posts with an
// image go to the vision role; text-only posts go to the primary role.
func (a *Analyzer) memeInsight(ctx context.Context, p post.Post) (string, error) {
	if a.completer == nil {
		return "", nil
	}

	role := provider.RolePrimary
	userMsg := provider.Message{
		Role:    provider.MessageRoleUser,
		Content: "Analyze this meme. Additional context: " + p.Content(),
	}
	if p.HasImage() {
		role = provider.RoleVision
		userMsg.Images = []provider.ImageInput{{URL: p.ImageURL}}
	}

	resp, err := a.completer.Complete(ctx, role, provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.MessageRoleSystem, Content: memeAnalystPrompt},
			userMsg,
		},
		MaxTokens: 500,
		JSONOnly:  true,
	})
	if err != nil {
		return "", err
	}

	// Validate before storing so downstream readers can trust the field.
	var insight MemeInsight
	if err := json.Unmarshal([]byte(resp.Content), &insight); err != nil {
		return "", fmt.Errorf("analysis: malformed insight: %w", err)
	}

	return resp.Content, nil
}

// CoinReport builds, persists, and returns a market impact report for a
// symbol from analyses stored within the timeframe.
func (a *Analyzer) CoinReport(ctx context.Context, symbol string, timeframe time.Duration) (storage.CoinReport, ReportEvidence, error) {
	now := a.now().UTC()

	analyses, err := a.store.RecentAnalyses(ctx, now.Add(-timeframe), 0)
	if err != nil {
		return storage.CoinReport{}, ReportEvidence{}, fmt.Errorf("analysis: load analyses: %w", err)
	}

	report, evidence, err := AnalyzeCoin(symbol, analyses, timeframe, now)
	if err != nil {
		return storage.CoinReport{}, ReportEvidence{}, err
	}

	supporting, err := json.Marshal(evidence)
	if err != nil {
		return storage.CoinReport{}, ReportEvidence{}, fmt.Errorf("analysis: encode evidence: %w", err)
	}
	report.Supporting = string(supporting)
	report.ID = fmt.Sprintf("%s-%d", strings.ToLower(report.Symbol), now.UnixNano())

	if err := a.store.SaveCoinReport(ctx, report); err != nil {
		return storage.CoinReport{}, ReportEvidence{}, fmt.Errorf("analysis: save report: %w", err)
	}

	return report, evidence, nil
}

// MarketPrediction asks the model for a qualitative forecast built on a
// stored analysis. Returns an error if no model is configured.
func (a *Analyzer) MarketPrediction(ctx context.Context, analysis storage.MemeAnalysis) (MarketPrediction, error) {
	var prediction MarketPrediction
	if a.completer == nil {
		return prediction, provider.ErrNoProvider
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return prediction, fmt.Errorf("analysis: encode context: %w", err)
	}

	resp, err := a.completer.Complete(ctx, provider.RolePrimary, provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.MessageRoleSystem, Content: marketAnalystPrompt},
			{Role: provider.MessageRoleUser, Content: "Analyze this meme data for market predictions: " + string(payload)},
		},
		MaxTokens: 300,
		JSONOnly:  true,
	})
	if err != nil {
		return prediction, err
	}

	if err := json.Unmarshal([]byte(resp.Content), &prediction); err != nil {
		return prediction, fmt.Errorf("analysis: malformed prediction: %w", err)
	}

	return prediction, nil
}
