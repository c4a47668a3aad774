package core

import (
	"sync"
	"testing"
	"time"
)

// captureNotifier records events for assertions. Offers go through a
// buffered channel so tests can block until one arrives.
type captureNotifier struct {
	mu           sync.Mutex
	peersUpdated int
	progress     []Progress
	completions  []Completion

	offers chan BatchOffer
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{offers: make(chan BatchOffer, 8)}
}

func (c *captureNotifier) PeersUpdated() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.peersUpdated++
}

func (c *captureNotifier) FileOffer(offer BatchOffer) {
	c.offers <- offer
}

func (c *captureNotifier) TransferProgress(p Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.progress = append(c.progress, p)
}

func (c *captureNotifier) TransferComplete(done Completion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completions = append(c.completions, done)
}

func (c *captureNotifier) peersUpdatedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.peersUpdated
}

func (c *captureNotifier) progressFor(subject string) []Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Progress
	for _, p := range c.progress {
		if p.Subject == subject {
			out = append(out, p)
		}
	}

	return out
}

func (c *captureNotifier) completionFor(subject string) (Completion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, done := range c.completions {
		if done.Subject == subject {
			return done, true
		}
	}

	return Completion{}, false
}

func (c *captureNotifier) completionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.completions)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal(msg)
}
