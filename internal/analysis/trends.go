package analysis

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/azura-ai/azura/pkg/post"
)

// cryptoTerms are tokens that mark content as crypto-relevant.
var cryptoTerms = map[string]struct{}{
	"bullish": {}, "bearish": {}, "moon": {}, "hodl": {}, "fud": {},
	"dyor": {}, "btc": {}, "eth": {}, "altcoin": {}, "defi": {},
	"nft": {}, "blockchain": {}, "token": {}, "wallet": {}, "dex": {},
	"mining": {}, "staking": {}, "yield": {}, "apy": {}, "dao": {},
}

// memeTerms are tokens that mark content as meme-culture relevant.
var memeTerms = map[string]struct{}{
	"pepe": {}, "wojak": {}, "chad": {}, "doge": {}, "stonks": {},
	"wen": {}, "lambo": {}, "ape": {}, "moon": {}, "fomo": {},
	"rekt": {}, "based": {}, "ngmi": {}, "wagmi": {}, "ser": {}, "gm": {},
}

// stopwords are filtered out before topic extraction.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {},
	"with": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "i": {}, "you": {}, "we": {}, "they": {},
	"he": {}, "she": {}, "my": {}, "your": {}, "our": {}, "their": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "should": {},
	"just": {}, "so": {}, "if": {}, "then": {}, "than": {}, "too": {},
	"very": {}, "not": {}, "no": {}, "all": {}, "some": {}, "what": {},
	"when": {}, "who": {}, "how": {}, "why": {}, "from": {}, "by": {},
	"as": {}, "up": {}, "out": {}, "about": {}, "into": {}, "over": {},
}

// CoinSymbols maps known memecoin symbols to their text aliases.
// The symbol itself (lowercased) always counts as an alias.
var CoinSymbols = map[string][]string{
	"DOGE":  {"doge", "dogecoin", "shibainu", "shib"},
	"PEPE":  {"pepe", "pepecoin"},
	"WOJAK": {"wojak", "wojakcoin"},
	"FLOKI": {"floki", "flokiinu"},
	"BONK":  {"bonk", "bonkcoin"},
	"MEME":  {"meme", "memecoin"},
}

// KnownSymbols returns the tracked coin symbols in sorted order.
func KnownSymbols() []string {
	symbols := make([]string, 0, len(CoinSymbols))
	for s := range CoinSymbols {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Tokenize lowercases text and splits it into word tokens.
// Punctuation is stripped except inline apostrophes ("don't").
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// TrendIndicators is the per-post trend signal bundle.
type TrendIndicators struct {
	Topics       []string
	CryptoScore  float64
	MemeScore    float64
	RelatedCoins []string
}

// ExtractTrends tokenizes a post's content and derives its trend signals:
// the dominant topics, how crypto- and meme-relevant it is, and which
// tracked coin symbols it mentions.
func ExtractTrends(p post.Post) TrendIndicators {
	tokens := Tokenize(p.Content())
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := stopwords[tok]; !ok {
			kept = append(kept, tok)
		}
	}

	var ind TrendIndicators
	if len(kept) == 0 {
		return ind
	}

	cryptoHits := make(map[string]struct{})
	memeHits := make(map[string]struct{})
	for _, tok := range kept {
		if _, ok := cryptoTerms[tok]; ok {
			cryptoHits[tok] = struct{}{}
		}
		if _, ok := memeTerms[tok]; ok {
			memeHits[tok] = struct{}{}
		}
	}

	ind.CryptoScore = float64(len(cryptoHits)) / float64(len(kept))
	ind.MemeScore = float64(len(memeHits)) / float64(len(kept))
	ind.Topics = topTopics(kept, 5)
	ind.RelatedCoins = matchCoins(kept, p.Hashtags)

	return ind
}

// topTopics returns the most frequent tokens, skipping short and
// purely numeric ones. Ties break alphabetically for determinism.
func topTopics(tokens []string, limit int) []string {
	freq := make(map[string]int)
	for _, tok := range tokens {
		if len(tok) <= 2 || isNumeric(tok) {
			continue
		}
		freq[tok]++
	}

	topics := make([]string, 0, len(freq))
	for tok := range freq {
		topics = append(topics, tok)
	}
	sort.Slice(topics, func(i, j int) bool {
		if freq[topics[i]] != freq[topics[j]] {
			return freq[topics[i]] > freq[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// matchCoins returns the tracked symbols whose aliases appear in the
// tokens or hashtags, in sorted order.
func matchCoins(tokens []string, hashtags []string) []string {
	present := make(map[string]struct{}, len(tokens)+len(hashtags))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}
	for _, tag := range hashtags {
		present[strings.ToLower(strings.TrimPrefix(tag, "#"))] = struct{}{}
	}

	var coins []string
	for symbol, aliases := range CoinSymbols {
		terms := append([]string{strings.ToLower(symbol)}, aliases...)
		for _, term := range terms {
			if _, ok := present[term]; ok {
				coins = append(coins, symbol)
				break
			}
		}
	}
	sort.Strings(coins)
	return coins
}

// EngagementRate normalizes total engagement to [0, 1], saturating
// at 10k interactions.
func EngagementRate(m post.Metrics) float64 {
	return clamp01(float64(m.Engagement()) / 10000)
}

// ViralityScore normalizes sharing activity to [0, 1], saturating
// at 1k shares. Shares spread content to new audiences, so they are
// scored separately from raw engagement.
func ViralityScore(m post.Metrics) float64 {
	return clamp01(float64(m.Shares+m.Quotes) / 1000)
}

// TrendVelocity measures how quickly content gains traction: the
// engagement rate divided by the post's age in hours (floored at one
// hour). A zero creation time yields zero velocity.
func TrendVelocity(p post.Post, now time.Time) float64 {
	if p.CreatedAt.IsZero() {
		return 0
	}
	ageHours := now.Sub(p.CreatedAt).Hours()
	if ageHours < 1 {
		ageHours = 1
	}
	return clamp01(EngagementRate(p.Metrics) / ageHours)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
