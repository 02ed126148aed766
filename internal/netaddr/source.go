// Package netaddr discovers the host addresses reported to clients on request.
package netaddr

import (
	"fmt"
	"net"
	"net/netip"
	"slices"

	"github.com/wlynxg/anet"
)

//go:generate mockgen -destination=mock_source.go -package=netaddr . Source

// Source yields host interface addresses.
type Source interface {
	Addrs() ([]net.Addr, error)
}

// HostSource enumerates the local interfaces. anet keeps this working on
// Android, where net.Interfaces is denied.
type HostSource struct{}

func (HostSource) Addrs() ([]net.Addr, error) {
	ifaces, err := anet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	var out []net.Addr
	for i := range ifaces {
		addrs, err := anet.InterfaceAddrsByInterface(&ifaces[i])
		if err != nil {
			return nil, fmt.Errorf("addrs of %s: %w", ifaces[i].Name, err)
		}
		out = append(out, addrs...)
	}
	return out, nil
}

// ParseExclusions validates the configured exclusion list.
func ParseExclusions(raw []string) ([]netip.Addr, error) {
	out := make([]netip.Addr, 0, len(raw))
	for _, s := range raw {
		a, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("exclusion %q: %w", s, err)
		}
		out = append(out, a.Unmap())
	}
	return out, nil
}

// Filter keeps IPv4, non-loopback addresses that are not excluded, in order.
func Filter(addrs []net.Addr, exclude []netip.Addr) []string {
	var out []string
	for _, a := range addrs {
		ip, ok := toAddr(a)
		if !ok || !ip.Is4() || ip.IsLoopback() || slices.Contains(exclude, ip) {
			continue
		}
		out = append(out, ip.String())
	}
	return out
}

func toAddr(a net.Addr) (netip.Addr, bool) {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return netip.Addr{}, false
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
