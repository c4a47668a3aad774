package core

import (
	"sync"

	"github.com/google/uuid"
)

// Offers tracks inbound batches whose connections are paused on a
// human decision. Each offer resolves at most once: the first Resolve
// for an id wins and later calls are no-ops.
type Offers struct {
	mu      sync.Mutex
	pending map[string]chan bool
}

func NewOffers() *Offers {
	return &Offers{
		pending: make(map[string]chan bool),
	}
}

// Create registers a new pending offer and returns its id together
// with the channel the decision arrives on.
func (o *Offers) Create() (string, <-chan bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := uuid.NewString()
	decision := make(chan bool, 1)
	o.pending[id] = decision

	return id, decision
}

// Resolve delivers the decision for a pending offer. It reports false
// when the id is unknown or already resolved.
func (o *Offers) Resolve(id string, accepted bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	decision, ok := o.pending[id]
	if !ok {
		return false
	}

	delete(o.pending, id)
	decision <- accepted

	return true
}

// Len reports how many offers are still waiting for a decision.
func (o *Offers) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.pending)
}
