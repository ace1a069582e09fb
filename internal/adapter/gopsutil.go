package adapter

import (
	"context"
	"fmt"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"

	"netmeter/internal/model"
)

// GopsutilSource reads interfaces and counters through gopsutil. It works on every
// platform gopsutil supports; link speed and operational state are only known where sysfs exists.
type GopsutilSource struct {
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
	ioCounters func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
	operState  func(name string) (string, bool)
}

func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{
		interfaces: psnet.InterfacesWithContext,
		ioCounters: psnet.IOCountersWithContext,
		operState:  readOperState,
	}
}

func (s *GopsutilSource) Adapters(ctx context.Context) ([]model.AdapterInfo, error) {
	ifaces, err := s.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	out := make([]model.AdapterInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		out = append(out, model.AdapterInfo{
			Name:      iface.Name,
			Index:     iface.Index,
			Kind:      kindFromFlags(iface.Name, iface.Flags),
			Loopback:  hasFlag(iface.Flags, "loopback"),
			Up:        s.up(iface),
			SpeedMbps: readLinkSpeedMbps(iface.Name),
		})
	}
	return out, nil
}

// Counters fails with ErrAdapterDown for an interface that exists but is not up.
func (s *GopsutilSource) Counters(ctx context.Context, name string) (Counters, error) {
	ifaces, err := s.interfaces(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("%w: list interfaces: %v", ErrAdapterUnavailable, err)
	}
	found := false
	for _, iface := range ifaces {
		if iface.Name != name {
			continue
		}
		if !s.up(iface) {
			return Counters{}, ErrAdapterDown
		}
		found = true
		break
	}
	if !found {
		return Counters{}, fmt.Errorf("%w: %q not found", ErrAdapterUnavailable, name)
	}

	stats, err := s.ioCounters(ctx, true)
	if err != nil {
		return Counters{}, fmt.Errorf("%w: io counters: %v", ErrAdapterUnavailable, err)
	}
	for _, st := range stats {
		if st.Name == name {
			return Counters{RxBytes: st.BytesRecv, TxBytes: st.BytesSent}, nil
		}
	}
	return Counters{}, fmt.Errorf("%w: %q has no counters", ErrAdapterUnavailable, name)
}

// up needs the admin flag and, where the OS reports one, an operational state of up.
// "unknown" is accepted the same way the netlink backend accepts OperUnknown.
func (s *GopsutilSource) up(iface psnet.InterfaceStat) bool {
	if !hasFlag(iface.Flags, "up") {
		return false
	}
	if s.operState == nil {
		return true
	}
	state, ok := s.operState(iface.Name)
	if !ok {
		return true
	}
	switch state {
	case "up", "unknown":
		return true
	default:
		return false
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(strings.TrimSpace(f), want) {
			return true
		}
	}
	return false
}

func kindFromFlags(name string, flags []string) string {
	if hasFlag(flags, "loopback") {
		return "loopback"
	}
	lower := strings.ToLower(name)
	for _, prefix := range []string{"tun", "tap", "utun", "wg", "ppp", "gif", "stf"} {
		if strings.HasPrefix(lower, prefix) {
			return "tunnel"
		}
	}
	if hasFlag(flags, "pointtopoint") {
		return "pointtopoint"
	}
	return "device"
}
