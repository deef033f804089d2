package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only for requests whose connection comes from a trusted proxy. Other
// requests keep their RemoteAddr, so clients cannot spoof their address to
// dodge per-IP rate limits.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrusted(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTrusted(extractIP(r.RemoteAddr), trusted) {
				if ip := forwardedIP(r.Header); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrusted parses CIDRs and bare IPs; invalid entries are logged and
// skipped.
func parseTrusted(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, network, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "entry", entry)
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// forwardedIP returns the client address a proxy reported: X-Real-IP, else
// the first entry of X-Forwarded-For. Unparseable values are ignored.
func forwardedIP(h http.Header) net.IP {
	if rip := h.Get("X-Real-IP"); rip != "" {
		return net.ParseIP(strings.TrimSpace(rip))
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return net.ParseIP(strings.TrimSpace(first))
	}
	return nil
}

// extractIP parses an IP address from a host:port string or plain IP.
func extractIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
