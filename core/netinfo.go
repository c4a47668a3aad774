package core

import (
	"net"
)

// BroadcastAll is the limited broadcast address. As a settings value
// it means "announce on every interface's own broadcast address".
const BroadcastAll = "255.255.255.255"

// InterfaceInfo is one usable network interface with its directed
// broadcast address.
type InterfaceInfo struct {
	Name      string `json:"name"`
	IP        string `json:"ip"`
	Broadcast string `json:"broadcast"`
}

// Interfaces lists non-loopback IPv4 interfaces that are up, plus a
// final pseudo-entry for the limited broadcast address.
func Interfaces() []InterfaceInfo {
	var infos []InterfaceInfo

	ifaces, err := net.Interfaces()
	if err != nil {
		ifaces = nil
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			ip := ipnet.IP.To4()
			if ip == nil {
				continue
			}

			bcast := broadcastAddr(ip, ipnet.Mask)
			if bcast == nil {
				continue
			}

			infos = append(infos, InterfaceInfo{
				Name:      iface.Name,
				IP:        ip.String(),
				Broadcast: bcast.String(),
			})
		}
	}

	return append(infos, InterfaceInfo{
		Name:      "All",
		IP:        BroadcastAll,
		Broadcast: BroadcastAll,
	})
}

// BroadcastAddrs returns the directed broadcast address of every
// usable interface. An empty result falls back to limited broadcast.
func BroadcastAddrs() []net.IP {
	var addrs []net.IP

	for _, info := range Interfaces() {
		if info.Name == "All" {
			continue
		}

		if ip := net.ParseIP(info.Broadcast); ip != nil {
			addrs = append(addrs, ip)
		}
	}

	if len(addrs) == 0 {
		addrs = append(addrs, net.ParseIP(BroadcastAll))
	}

	return addrs
}

// broadcastAddr computes the directed broadcast address of an IPv4
// network, ip|^mask. Returns nil for anything that is not IPv4.
func broadcastAddr(ip net.IP, mask net.IPMask) net.IP {
	ip = ip.To4()
	if ip == nil {
		return nil
	}

	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil
	}

	bcast := make(net.IP, net.IPv4len)
	for i := range bcast {
		bcast[i] = ip[i] | ^mask[i]
	}

	return bcast
}

// LocalAddrSet returns every IP assigned to this machine, loopback
// included. Discovery uses it to drop our own announcements.
func LocalAddrSet() map[string]struct{} {
	set := make(map[string]struct{})

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return set
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			set[ipnet.IP.String()] = struct{}{}
		}
	}

	return set
}

// OutboundIP reports the local address the default route would use.
// No packet is sent; a UDP dial only binds the socket.
func OutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
