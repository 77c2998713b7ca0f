package router

import (
	"context"
	"sync"
	"testing"

	"github.com/azura-ai/azura/pkg/message"
)

func TestWorkerPoolProcessesAll(t *testing.T) {
	t.Parallel()

	inbox := make(chan envelope, 32)
	var mu sync.Mutex
	seen := 0

	pool := NewWorkerPool(4)
	pool.Start(context.Background(), inbox, func(_ context.Context, _ envelope) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		inbox <- envelope{Message: message.InboundMessage{ID: "x"}}
	}
	close(inbox)
	pool.Wait()

	if seen != 20 {
		t.Errorf("processed %d envelopes, want 20", seen)
	}
}

func TestNewWorkerPoolDefaultSize(t *testing.T) {
	t.Parallel()

	pool := NewWorkerPool(0)
	if pool.size != DefaultWorkerCount {
		t.Errorf("size = %d, want %d", pool.size, DefaultWorkerCount)
	}
}
