package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const radarMaxLimit = 50

// registerTools wires the three query tools into the MCP server.
func registerTools(s *server.MCPServer, store storage.Store, analyzer *analysis.Analyzer) {
	s.AddTool(mcp.NewTool("meme_radar",
		mcp.WithDescription("List the most viral memes analyzed recently, ranked by virality score."),
		mcp.WithNumber("hours",
			mcp.Description("Lookback window in hours (default 24)."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of memes to return (default 10, max 50)."),
		),
		mcp.WithString("platform",
			mcp.Description("Restrict to one platform (reddit, twitter, tiktok)."),
		),
	), memeRadarHandler(store))

	s.AddTool(mcp.NewTool("coin_report",
		mcp.WithDescription("Build a market impact report for a memecoin from recent meme analyses."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Coin symbol, e.g. DOGE or $PEPE. Known symbols: "+strings.Join(analysis.KnownSymbols(), ", ")+"."),
		),
		mcp.WithNumber("hours",
			mcp.Description("Timeframe in hours to draw evidence from (default 24)."),
		),
	), coinReportHandler(analyzer))

	s.AddTool(mcp.NewTool("vibe_check",
		mcp.WithDescription("Score arbitrary text for sentiment, crypto relevance, and meme energy."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to score."),
		),
	), vibeCheckHandler())
}

// radarEntry is the per-meme summary returned by meme_radar.
type radarEntry struct {
	Platform     post.Platform          `json:"platform"`
	Source       string                 `json:"source"`
	Text         string                 `json:"text,omitempty"`
	Permalink    string                 `json:"permalink,omitempty"`
	Virality     float64                `json:"virality"`
	Sentiment    storage.SentimentScores `json:"sentiment"`
	Topics       []string               `json:"topics,omitempty"`
	RelatedCoins []string               `json:"related_coins,omitempty"`
}

func memeRadarHandler(store storage.AnalysisStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hours := req.GetFloat("hours", 24)
		if hours <= 0 {
			hours = 24
		}
		limit := req.GetInt("limit", 10)
		if limit <= 0 || limit > radarMaxLimit {
			limit = 10
		}
		platform := strings.ToLower(req.GetString("platform", ""))

		since := time.Now().UTC().Add(-time.Duration(hours * float64(time.Hour)))
		analyses, err := store.RecentAnalyses(ctx, since, 0)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading analyses: %v", err)), nil
		}

		entries := make([]radarEntry, 0, len(analyses))
		for _, a := range analyses {
			if platform != "" && string(a.Platform) != platform {
				continue
			}
			entries = append(entries, radarEntry{
				Platform:     a.Platform,
				Source:       a.Source,
				Text:         a.Text,
				Permalink:    a.Permalink,
				Virality:     a.ViralityScore,
				Sentiment:    a.Sentiment,
				Topics:       a.Topics,
				RelatedCoins: a.RelatedCoins,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Virality > entries[j].Virality
		})
		if len(entries) > limit {
			entries = entries[:limit]
		}

		return jsonResult(entries)
	}
}

func coinReportHandler(analyzer *analysis.Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := req.RequireString("symbol")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		symbol = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(symbol), "$"))

		hours := req.GetFloat("hours", 24)
		if hours <= 0 {
			hours = 24
		}

		report, evidence, err := analyzer.CoinReport(ctx, symbol, time.Duration(hours*float64(time.Hour)))
		if errors.Is(err, analysis.ErrInsufficientData) {
			return mcp.NewToolResultError(fmt.Sprintf("not enough recent meme data mentioning %s", symbol)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("building report: %v", err)), nil
		}

		return jsonResult(map[string]any{
			"report":   report,
			"evidence": evidence,
		})
	}
}

func vibeCheckHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		sentiment := analysis.ScoreSentiment(text)
		trends := analysis.ExtractTrends(post.Post{Text: text})

		verdict := "neutral"
		switch {
		case sentiment.Compound >= 0.2:
			verdict = "bullish"
		case sentiment.Compound <= -0.2:
			verdict = "bearish"
		}

		return jsonResult(map[string]any{
			"verdict":       verdict,
			"sentiment":     sentiment,
			"crypto_score":  trends.CryptoScore,
			"meme_score":    trends.MemeScore,
			"topics":        trends.Topics,
			"related_coins": trends.RelatedCoins,
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
