package core

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Peer is a remote machine currently announcing itself. The address
// alone is its identity; the username is display data that may change
// between announcements.
type Peer struct {
	Username string    `json:"username"`
	Address  string    `json:"address"`
	LastSeen time.Time `json:"-"`
}

// Settings is the local node configuration. Updates replace it
// wholesale, never merge.
type Settings struct {
	Username            string `json:"username"`
	BroadcastingEnabled bool   `json:"broadcasting_enabled"`
	BroadcastAddress    string `json:"broadcast_address"`
}

func DefaultSettings() Settings {
	return Settings{
		Username:            hostname(),
		BroadcastingEnabled: true,
		BroadcastAddress:    BroadcastAll,
	}
}

// UpsertResult reports what UpsertPeer did with the candidate.
type UpsertResult int

const (
	// PeerRefreshed means the peer was already known and only its
	// LastSeen moved.
	PeerRefreshed UpsertResult = iota
	// PeerInserted means the peer was not in the table before.
	PeerInserted
	// PeerRenamed means the address was known under another username.
	PeerRenamed
)

// Registry owns the peer table and the local settings. Every access
// goes through one mutex and no I/O ever happens under it.
type Registry struct {
	mu       sync.Mutex
	peers    map[string]Peer
	settings Settings
}

func NewRegistry(settings Settings) *Registry {
	return &Registry{
		peers:    make(map[string]Peer),
		settings: settings,
	}
}

// ListPeers returns a snapshot copy in no particular order.
func (r *Registry) ListPeers() []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}

	return peers
}

func (r *Registry) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.settings
}

func (r *Registry) SetSettings(settings Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = settings
}

// UpsertPeer stores p, replacing any entry with the same address.
func (r *Registry) UpsertPeer(p Peer) UpsertResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, known := r.peers[p.Address]
	r.peers[p.Address] = p

	switch {
	case !known:
		return PeerInserted
	case old.Username != p.Username:
		return PeerRenamed
	default:
		return PeerRefreshed
	}
}

// EvictStale removes every peer whose LastSeen age reached timeout and
// returns how many went. A peer that was never timestamped is always
// stale.
func (r *Registry) EvictStale(timeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	removed := 0

	for addr, p := range r.peers {
		if p.LastSeen.IsZero() || now.Sub(p.LastSeen) >= timeout {
			delete(r.peers, addr)
			removed++
		}
	}

	return removed
}

func hostname() string {
	hn, err := os.Hostname()
	if err != nil {
		hn = fmt.Sprintf("%s-%s", "unknown", uuid.NewString())
	}

	return hn
}
