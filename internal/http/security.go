package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// securityMetrics tracks security-related events.
type securityMetrics struct {
	rateLimitHits int64
}

// Forwarding headers are honored only when the direct peer sits inside
// one of these networks.
var trustedProxyNets = func() []netip.Prefix {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	}
	nets := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		nets[i] = netip.MustParsePrefix(c)
	}
	return nets
}()

func fromTrustedProxy(addr netip.Addr) bool {
	for _, p := range trustedProxyNets {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// extractClientIP resolves the real client address. X-Forwarded-For and
// X-Real-IP are believed only when the TCP peer is a trusted proxy;
// anything a client can spoof from outside those networks is ignored.
func extractClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}

	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !fromTrustedProxy(peerAddr) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}

	return peer
}
