//go:build !linux

package adapter

import (
	"context"
	"errors"

	"netmeter/internal/model"
)

var errNetlinkUnsupported = errors.New("netlink backend is only available on linux")

type NetlinkSource struct{}

func NewNetlinkSource() (*NetlinkSource, error) {
	return nil, errNetlinkUnsupported
}

func (s *NetlinkSource) Adapters(ctx context.Context) ([]model.AdapterInfo, error) {
	return nil, errNetlinkUnsupported
}

func (s *NetlinkSource) Counters(ctx context.Context, name string) (Counters, error) {
	return Counters{}, ErrAdapterUnavailable
}

func readLinkSpeedMbps(string) uint64 {
	return 0
}

func readOperState(string) (string, bool) {
	return "", false
}
