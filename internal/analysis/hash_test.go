package analysis

import (
	"testing"
	"time"

	"github.com/azura-ai/azura/pkg/post"
)

func TestContentHash_Stable(t *testing.T) {
	t.Parallel()

	p := post.Post{
		ID:       "abc123",
		Platform: post.PlatformReddit,
		Source:   "r/cryptomemes",
		Title:    "doge to the moon",
		Text:     "wagmi",
		ImageURL: "https://example.com/doge.jpg",
	}

	if got, want := ContentHash(p), ContentHash(p); got != want {
		t.Errorf("hash not stable: %q vs %q", got, want)
	}
	if len(ContentHash(p)) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(ContentHash(p)))
	}
}

func TestContentHash_DiffersByContent(t *testing.T) {
	t.Parallel()

	a := post.Post{Platform: post.PlatformReddit, Title: "doge up"}
	b := post.Post{Platform: post.PlatformReddit, Title: "doge down"}
	if ContentHash(a) == ContentHash(b) {
		t.Error("different content should hash differently")
	}

	c := post.Post{Platform: post.PlatformTwitter, Title: "doge up"}
	if ContentHash(a) == ContentHash(c) {
		t.Error("different platform should hash differently")
	}
}

func TestContentHash_IgnoresMetrics(t *testing.T) {
	t.Parallel()

	a := post.Post{
		Platform: post.PlatformReddit,
		Title:    "pepe season",
		Metrics:  post.Metrics{Score: 10, Comments: 2},
	}
	b := a
	b.Metrics = post.Metrics{Score: 9000, Comments: 500}
	b.CreatedAt = time.Now()

	// The same meme re-scraped with updated engagement must dedupe.
	if ContentHash(a) != ContentHash(b) {
		t.Error("metrics and timestamps should not affect the hash")
	}
}
