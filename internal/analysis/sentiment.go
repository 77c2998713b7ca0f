package analysis

import (
	"math"

	"github.com/azura-ai/azura/internal/storage"
)

// sentimentLexicon maps tokens to polarity valences in [-4, 4], following
// the usual social-media sentiment lexicon convention. The base entries
// cover general English; the crypto entries cover the slang that dominates
// memecoin discussion, where "moon" and "rekt" carry more signal than
// dictionary words.
var sentimentLexicon = map[string]float64{
	// general
	"good": 1.9, "great": 3.1, "awesome": 3.1, "amazing": 2.8,
	"love": 3.2, "like": 1.5, "best": 3.2, "win": 2.8, "winning": 2.4,
	"huge": 1.5, "insane": 1.7, "crazy": 1.4, "excited": 2.4,
	"bad": -2.5, "terrible": -3.1, "awful": -2.9, "worst": -3.1,
	"hate": -2.7, "scam": -3.3, "rug": -3.0, "rugpull": -3.4,
	"crash": -2.8, "dump": -2.6, "dumping": -2.6, "fear": -2.2,
	"panic": -2.6, "dead": -2.4, "loss": -2.1, "losses": -2.1,

	// crypto slang
	"moon": 2.9, "mooning": 3.1, "bullish": 2.7, "pump": 2.2,
	"pumping": 2.4, "hodl": 1.8, "wagmi": 2.5, "gm": 1.2,
	"based": 1.9, "lambo": 2.1, "ath": 2.3, "gains": 2.4,
	"breakout": 2.0, "rally": 2.2, "moonshot": 2.8, "gem": 2.1,
	"bearish": -2.7, "fud": -2.3, "rekt": -2.9, "ngmi": -2.4,
	"bagholder": -2.2, "exit": -1.4, "liquidated": -2.8,
	"ponzi": -3.2, "shitcoin": -1.9, "capitulation": -2.6,
}

// negators flip the valence of the following token.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "dont": {}, "don't": {},
	"isnt": {}, "isn't": {}, "wont": {}, "won't": {}, "aint": {}, "ain't": {},
}

// boosters scale the valence of the following token.
var boosters = map[string]float64{
	"very": 1.3, "super": 1.3, "extremely": 1.4, "absolutely": 1.3,
	"so": 1.2, "really": 1.2, "mega": 1.3, "ultra": 1.4,
	"slightly": 0.7, "kinda": 0.8, "somewhat": 0.8, "barely": 0.6,
}

// ScoreSentiment computes a normalized sentiment breakdown for text.
// Positive, Negative, and Neutral sum to 1; Compound is the overall
// polarity in [-1, 1]. Empty or signal-free text scores fully neutral.
func ScoreSentiment(text string) storage.SentimentScores {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return storage.SentimentScores{Neutral: 1}
	}

	var posSum, negSum float64
	scored := 0

	for i, tok := range tokens {
		valence, ok := sentimentLexicon[tok]
		if !ok {
			continue
		}
		scored++

		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				valence *= boost
			}
			if _, ok := negators[tokens[i-1]]; ok {
				valence = -valence * 0.74
			} else if i > 1 {
				// Negation one token back ("not very bullish").
				if _, ok := negators[tokens[i-2]]; ok {
					valence = -valence * 0.74
				}
			}
		}

		if valence > 0 {
			posSum += valence
		} else {
			negSum += -valence
		}
	}

	neutral := float64(len(tokens) - scored)
	total := posSum + negSum + neutral
	if total == 0 {
		return storage.SentimentScores{Neutral: 1}
	}

	// Compound normalization keeps the score in (-1, 1) while letting
	// strong consistent signals approach the extremes.
	raw := posSum - negSum
	compound := raw / math.Sqrt(raw*raw+15)

	return storage.SentimentScores{
		Positive: posSum / total,
		Negative: negSum / total,
		Neutral:  neutral / total,
		Compound: compound,
	}
}
