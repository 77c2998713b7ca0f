// Package analysis implements content scoring: sentiment, trend and
// virality metrics for individual posts, and aggregated market impact
// predictions for memecoin symbols.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/azura-ai/azura/pkg/post"
)

// ContentHash returns a stable SHA-256 digest of a post's identifying
// content. Identical content always hashes the same, so the hash doubles
// as a dedupe key: a post seen again (or cross-posted with the same text
// and image) is a cache hit against stored analyses.
func ContentHash(p post.Post) string {
	// json.Marshal sorts map keys, giving a canonical encoding.
	canonical := map[string]string{
		"platform":  string(p.Platform),
		"source":    p.Source,
		"title":     p.Title,
		"text":      p.Text,
		"image_url": p.ImageURL,
	}

	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
