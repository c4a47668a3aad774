package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/SprintFox/Kitsunet-Share/logger"
)

const (
	// DiscoveryPort is the well-known UDP port peers announce on.
	DiscoveryPort = 5000

	// TickInterval drives both presence announcements and stale-peer
	// eviction.
	TickInterval = time.Second

	// PeerTimeout is how long a peer may stay silent before eviction.
	// Twice the tick, so one lost announcement is tolerated.
	PeerTimeout = 2 * TickInterval
)

// Discovery owns the UDP discovery socket. A heartbeat goroutine
// announces presence and sweeps stale peers on a fixed tick while the
// Run loop receives announcements from other machines on the same
// socket.
type Discovery struct {
	registry *Registry
	notifier Notifier
	log      logger.Logger

	Port    int
	Tick    time.Duration
	Timeout time.Duration

	ln *net.UDPConn

	localAddrs     func() map[string]struct{}
	broadcastAddrs func(port int) []*net.UDPAddr
}

func NewDiscovery(registry *Registry, notifier Notifier, log logger.Logger) *Discovery {
	return &Discovery{
		registry:       registry,
		notifier:       notifier,
		log:            log,
		Port:           DiscoveryPort,
		Tick:           TickInterval,
		Timeout:        PeerTimeout,
		localAddrs:     LocalAddrSet,
		broadcastAddrs: defaultBroadcastAddrs,
	}
}

// Init binds the discovery socket and enables broadcast on it. Run
// calls Init itself when needed; calling it first only makes bind
// failures surface earlier.
func (d *Discovery) Init() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", d.Port))
	if err != nil {
		return fmt.Errorf("failed to resolve discovery address: %w", err)
	}

	ln, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind discovery socket: %w", err)
	}

	file, err := ln.File()
	if err != nil {
		ln.Close()
		return err
	}
	defer file.Close()

	if err := setBroadcast(file.Fd()); err != nil {
		ln.Close()
		return fmt.Errorf("failed to enable broadcast: %w", err)
	}

	d.ln = ln
	return nil
}

func (d *Discovery) Close() error {
	if d.ln != nil {
		return d.ln.Close()
	}
	return nil
}

// Run starts the heartbeat and blocks receiving presence datagrams
// until ctx is cancelled. A bind failure comes back as-is: a node that
// cannot hear its peers cannot work.
func (d *Discovery) Run(ctx context.Context) error {
	if d.ln == nil {
		if err := d.Init(); err != nil {
			return err
		}
	}
	defer d.Close()

	go func() {
		<-ctx.Done()
		d.ln.Close()
	}()

	go d.heartbeat(ctx)

	buf := make([]byte, maxDatagramSize)
	for {
		n, remoteAddr, err := d.ln.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			d.log.WithStr("error", err.Error()).Warn("discovery receive failed")
			continue
		}

		d.handleDatagram(buf[:n], remoteAddr)
	}
}

func (d *Discovery) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(d.Tick)
	defer ticker.Stop()

	d.tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Discovery) tick() {
	if d.registry.EvictStale(d.Timeout) > 0 {
		d.notifier.PeersUpdated()
	}

	d.announce()
}

func (d *Discovery) announce() {
	settings := d.registry.Settings()
	if !settings.BroadcastingEnabled {
		return
	}

	encoded, err := NewPresence(settings.Username).Encoded()
	if err != nil {
		d.log.WithStr("error", err.Error()).Error("failed to encode presence message")
		return
	}

	for _, addr := range d.announceTargets(settings.BroadcastAddress) {
		if _, err := d.ln.WriteToUDP(*encoded, addr); err != nil {
			d.log.WithStr("target", addr.String()).
				WithStr("error", err.Error()).
				Warn("presence announcement failed")
		}
	}
}

// announceTargets resolves the configured broadcast address into
// concrete destinations. BroadcastAll fans out to every interface.
func (d *Discovery) announceTargets(broadcastAddress string) []*net.UDPAddr {
	if broadcastAddress == BroadcastAll {
		return d.broadcastAddrs(d.Port)
	}

	ip := net.ParseIP(broadcastAddress)
	if ip == nil {
		d.log.WithStr("address", broadcastAddress).Warn("invalid broadcast address in settings")
		return nil
	}

	return []*net.UDPAddr{{IP: ip, Port: d.Port}}
}

func (d *Discovery) handleDatagram(buf []byte, remote *net.UDPAddr) {
	if _, own := d.localAddrs()[remote.IP.String()]; own {
		return
	}

	encoded := EncodedDatagram(buf)
	msg, err := encoded.Parse()
	if err != nil {
		return
	}

	result := d.registry.UpsertPeer(Peer{
		Username: msg.Username,
		Address:  remote.IP.String(),
		LastSeen: time.Now(),
	})

	switch result {
	case PeerInserted, PeerRenamed:
		d.log.WithStr("peer", msg.Username).
			WithStr("address", remote.IP.String()).
			Debug("peer announced")
		d.notifier.PeersUpdated()
	}
}

func defaultBroadcastAddrs(port int) []*net.UDPAddr {
	var addrs []*net.UDPAddr
	for _, ip := range BroadcastAddrs() {
		addrs = append(addrs, &net.UDPAddr{IP: ip, Port: port})
	}

	return addrs
}
