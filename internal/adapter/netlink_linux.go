//go:build linux

package adapter

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vishvananda/netlink"

	"netmeter/internal/model"
	"netmeter/internal/system"
)

// NetlinkSource enumerates links over rtnetlink and reads their 64-bit statistics.
type NetlinkSource struct{}

func NewNetlinkSource() (*NetlinkSource, error) {
	return &NetlinkSource{}, nil
}

func (s *NetlinkSource) Adapters(ctx context.Context) ([]model.AdapterInfo, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	out := make([]model.AdapterInfo, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		loopback := attrs.Flags&net.FlagLoopback != 0
		kind := link.Type()
		if loopback {
			kind = "loopback"
		} else if attrs.EncapType == "ppp" {
			kind = "ppp"
		}
		out = append(out, model.AdapterInfo{
			Name:      attrs.Name,
			Index:     attrs.Index,
			Kind:      kind,
			Loopback:  loopback,
			Up:        linkUp(attrs),
			SpeedMbps: readLinkSpeedMbps(attrs.Name),
		})
	}
	return out, nil
}

func (s *NetlinkSource) Counters(ctx context.Context, name string) (Counters, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return Counters{}, fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}
	attrs := link.Attrs()
	if !linkUp(attrs) {
		return Counters{}, ErrAdapterDown
	}
	if attrs.Statistics == nil {
		c, err := system.ReadInterfaceCounters(name)
		if err != nil {
			return Counters{}, fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
		}
		return Counters{RxBytes: c.RxBytes, TxBytes: c.TxBytes}, nil
	}
	return Counters{RxBytes: attrs.Statistics.RxBytes, TxBytes: attrs.Statistics.TxBytes}, nil
}

// linkUp treats OperUnknown links (tun devices, some drivers) as up when the admin flag is set.
func linkUp(attrs *netlink.LinkAttrs) bool {
	switch attrs.OperState {
	case netlink.OperUp:
		return true
	case netlink.OperUnknown:
		return attrs.Flags&net.FlagUp != 0
	default:
		return false
	}
}

func readLinkSpeedMbps(name string) uint64 {
	raw, err := os.ReadFile(filepath.Join("/sys/class/net", name, "speed"))
	if err != nil {
		return 0
	}
	text := strings.TrimSpace(string(raw))
	if text == "" || strings.HasPrefix(text, "-") {
		return 0
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// readOperState returns the sysfs operstate ("up", "down", "dormant", ...) of name.
func readOperState(name string) (string, bool) {
	raw, err := os.ReadFile(filepath.Join("/sys/class/net", name, "operstate"))
	if err != nil {
		return "", false
	}
	state := strings.ToLower(strings.TrimSpace(string(raw)))
	return state, state != ""
}
