package core

import (
	"context"
	"net"

	"github.com/SprintFox/Kitsunet-Share/logger"
	"golang.org/x/sync/errgroup"
)

// VERSION is the application version reported by the CLI.
const VERSION = "0.1.0"

// Node wires the registry, the offer table, discovery and both
// transfer sides into one runnable unit. Everything a frontend needs
// goes through here.
type Node struct {
	Registry  *Registry
	Offers    *Offers
	Discovery *Discovery
	Server    *Server
	Sender    *Sender
}

func NewNode(settings Settings, dir string, notifier Notifier, log logger.Logger) *Node {
	registry := NewRegistry(settings)
	offers := NewOffers()

	server := NewServer(offers, notifier, log)
	server.Dir = dir

	return &Node{
		Registry:  registry,
		Offers:    offers,
		Discovery: NewDiscovery(registry, notifier, log),
		Server:    server,
		Sender:    NewSender(notifier, log),
	}
}

// Run drives discovery and the transfer server until ctx is cancelled
// or either fails to start.
func (n *Node) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return n.Discovery.Run(ctx)
	})

	g.Go(func() error {
		return n.Server.Serve(ctx)
	})

	return g.Wait()
}

func (n *Node) ListPeers() []Peer {
	return n.Registry.ListPeers()
}

func (n *Node) Settings() Settings {
	return n.Registry.Settings()
}

// UpdateSettings swaps the live settings. The next heartbeat picks
// them up.
func (n *Node) UpdateSettings(settings Settings) {
	n.Registry.SetSettings(settings)
}

// SendFiles offers the given local files to recipient and blocks until
// the transfer finishes or fails.
func (n *Node) SendFiles(ctx context.Context, recipient string, paths []string) error {
	return n.Sender.Send(ctx, recipient, paths)
}

// AcceptOffer resolves a pending inbound offer. Unknown or already
// resolved ids are a quiet no-op.
func (n *Node) AcceptOffer(id string) {
	n.Offers.Resolve(id, true)
}

// RejectOffer declines a pending inbound offer. Unknown or already
// resolved ids are a quiet no-op.
func (n *Node) RejectOffer(id string) {
	n.Offers.Resolve(id, false)
}

// Interfaces lists the broadcast-capable local interfaces.
func (n *Node) Interfaces() []InterfaceInfo {
	return Interfaces()
}

// OwnAddress reports the address other peers see this node as.
func (n *Node) OwnAddress() (net.IP, error) {
	return OutboundIP()
}
