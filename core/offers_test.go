package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffersResolveDeliversDecision(t *testing.T) {
	tests := []struct {
		name     string
		accepted bool
	}{
		{name: "accepted", accepted: true},
		{name: "rejected", accepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offers := NewOffers()

			id, decision := offers.Create()
			assert.True(t, offers.Resolve(id, tt.accepted))

			select {
			case got := <-decision:
				assert.Equal(t, tt.accepted, got)
			case <-time.After(time.Second):
				t.Fatal("decision never arrived")
			}

			assert.Zero(t, offers.Len())
		})
	}
}

func TestOffersCreateReturnsDistinctIDs(t *testing.T) {
	offers := NewOffers()

	a, _ := offers.Create()
	b, _ := offers.Create()

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, offers.Len())
}

func TestOffersResolveUnknownID(t *testing.T) {
	offers := NewOffers()

	assert.False(t, offers.Resolve("nope", true))
}

func TestOffersResolveOnlyOnce(t *testing.T) {
	offers := NewOffers()

	id, decision := offers.Create()

	assert.True(t, offers.Resolve(id, true))
	assert.False(t, offers.Resolve(id, false))

	got := <-decision
	assert.True(t, got, "the first decision wins")

	select {
	case extra := <-decision:
		t.Fatalf("unexpected second decision: %v", extra)
	default:
	}
}

func TestOffersConcurrentResolve(t *testing.T) {
	offers := NewOffers()

	id, decision := offers.Create()

	var wg sync.WaitGroup
	results := make(chan bool, 2)

	for _, accepted := range []bool{true, false} {
		wg.Add(1)
		go func(accepted bool) {
			defer wg.Done()
			results <- offers.Resolve(id, accepted)
		}(accepted)
	}

	wg.Wait()
	close(results)

	wins := 0
	for resolved := range results {
		if resolved {
			wins++
		}
	}

	assert.Equal(t, 1, wins, "exactly one resolver wins the race")
	require.Len(t, decision, 1)
}

func TestOffersResolveNeverBlocks(t *testing.T) {
	offers := NewOffers()

	id, _ := offers.Create()

	done := make(chan struct{})
	go func() {
		offers.Resolve(id, true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resolve blocked with no reader on the decision channel")
	}
}
