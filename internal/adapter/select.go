package adapter

import (
	"sort"
	"strings"

	"netmeter/internal/model"
)

var tunnelKinds = map[string]struct{}{
	"tunnel":       {},
	"tuntap":       {},
	"tun":          {},
	"tap":          {},
	"wireguard":    {},
	"ipip":         {},
	"gre":          {},
	"gretap":       {},
	"ip6gre":       {},
	"ip6gretap":    {},
	"ip6tnl":       {},
	"sit":          {},
	"vti":          {},
	"vti6":         {},
	"ppp":          {},
	"pointtopoint": {},
}

func IsTunnelKind(kind string) bool {
	_, ok := tunnelKinds[strings.ToLower(strings.TrimSpace(kind))]
	return ok
}

// Best picks the fastest adapter that is up, skipping loopback and tunnel kinds.
// Equal speeds keep enumeration order.
func Best(adapters []model.AdapterInfo) (string, bool) {
	candidates := make([]model.AdapterInfo, 0, len(adapters))
	for _, a := range adapters {
		if !a.Up || a.Loopback || strings.EqualFold(a.Kind, "loopback") || IsTunnelKind(a.Kind) {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SpeedMbps > candidates[j].SpeedMbps
	})
	return candidates[0].Name, true
}
