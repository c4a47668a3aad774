package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertPeerResults(t *testing.T) {
	registry := NewRegistry(DefaultSettings())
	now := time.Now()

	result := registry.UpsertPeer(Peer{Username: "bob", Address: "192.168.1.7", LastSeen: now})
	assert.Equal(t, PeerInserted, result)

	result = registry.UpsertPeer(Peer{Username: "bob", Address: "192.168.1.7", LastSeen: now.Add(time.Second)})
	assert.Equal(t, PeerRefreshed, result)

	result = registry.UpsertPeer(Peer{Username: "robert", Address: "192.168.1.7", LastSeen: now.Add(2 * time.Second)})
	assert.Equal(t, PeerRenamed, result)

	result = registry.UpsertPeer(Peer{Username: "robert", Address: "192.168.1.8", LastSeen: now})
	assert.Equal(t, PeerInserted, result)

	assert.Len(t, registry.ListPeers(), 2)
}

func TestUpsertPeerRefreshesLastSeen(t *testing.T) {
	registry := NewRegistry(DefaultSettings())

	stale := time.Now().Add(-time.Hour)
	registry.UpsertPeer(Peer{Username: "bob", Address: "192.168.1.7", LastSeen: stale})

	fresh := time.Now()
	registry.UpsertPeer(Peer{Username: "bob", Address: "192.168.1.7", LastSeen: fresh})

	peers := registry.ListPeers()
	require.Len(t, peers, 1)
	assert.Equal(t, fresh, peers[0].LastSeen)
}

func TestEvictStale(t *testing.T) {
	registry := NewRegistry(DefaultSettings())
	now := time.Now()

	registry.UpsertPeer(Peer{Username: "fresh", Address: "10.0.0.1", LastSeen: now})
	registry.UpsertPeer(Peer{Username: "stale", Address: "10.0.0.2", LastSeen: now.Add(-3 * time.Second)})
	registry.UpsertPeer(Peer{Username: "never", Address: "10.0.0.3"})

	removed := registry.EvictStale(2 * time.Second)
	assert.Equal(t, 2, removed)

	peers := registry.ListPeers()
	require.Len(t, peers, 1)
	assert.Equal(t, "fresh", peers[0].Username)

	assert.Zero(t, registry.EvictStale(2*time.Second))
}

func TestEvictStaleBoundary(t *testing.T) {
	registry := NewRegistry(DefaultSettings())

	registry.UpsertPeer(Peer{Username: "edge", Address: "10.0.0.4", LastSeen: time.Now().Add(-2 * time.Second)})

	removed := registry.EvictStale(2 * time.Second)
	assert.Equal(t, 1, removed, "a peer aged exactly timeout is stale")
}

func TestListPeersReturnsSnapshot(t *testing.T) {
	registry := NewRegistry(DefaultSettings())
	registry.UpsertPeer(Peer{Username: "bob", Address: "10.0.0.1", LastSeen: time.Now()})

	peers := registry.ListPeers()
	require.Len(t, peers, 1)
	peers[0].Username = "mallory"

	assert.Equal(t, "bob", registry.ListPeers()[0].Username)
}

func TestSettingsReplacedWholesale(t *testing.T) {
	registry := NewRegistry(DefaultSettings())

	registry.SetSettings(Settings{Username: "fox"})

	settings := registry.Settings()
	assert.Equal(t, "fox", settings.Username)
	assert.False(t, settings.BroadcastingEnabled)
	assert.Empty(t, settings.BroadcastAddress)
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.NotEmpty(t, settings.Username)
	assert.True(t, settings.BroadcastingEnabled)
	assert.Equal(t, BroadcastAll, settings.BroadcastAddress)
}
