package adapter

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"netmeter/internal/model"
)

var (
	ErrAdapterUnavailable = errors.New("adapter unavailable")
	ErrAdapterDown        = fmt.Errorf("%w: operationally down", ErrAdapterUnavailable)
)

const (
	BackendNetlink  = "netlink"
	BackendGopsutil = "gopsutil"
)

type Counters struct {
	RxBytes uint64
	TxBytes uint64
}

// Source is the OS boundary: interface enumeration and cumulative counters.
type Source interface {
	// Adapters lists every interface in OS-reported order.
	Adapters(ctx context.Context) ([]model.AdapterInfo, error)
	// Counters returns cumulative byte counters. It fails with ErrAdapterUnavailable (or
	// ErrAdapterDown) when the interface is gone or not up.
	Counters(ctx context.Context, name string) (Counters, error)
}

func NewSource(backend string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendNetlink:
		src, err := NewNetlinkSource()
		if err != nil {
			return nil, err
		}
		return src, nil
	case BackendGopsutil:
		return NewGopsutilSource(), nil
	default:
		return nil, fmt.Errorf("unsupported adapter backend %q", backend)
	}
}

// DefaultBackend is netlink on Linux and gopsutil everywhere else.
func DefaultBackend() string {
	if runtime.GOOS == "linux" {
		return BackendNetlink
	}
	return BackendGopsutil
}

// ListUp returns the names of adapters currently up, in enumeration order.
// A failed query yields an empty list.
func ListUp(ctx context.Context, src Source) []string {
	adapters, err := src.Adapters(ctx)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		if a.Up {
			out = append(out, a.Name)
		}
	}
	return out
}
