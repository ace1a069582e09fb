package adapter

import (
	"context"
	"fmt"
	"strings"
)

// Handle is a non-owning reference to one OS interface. The interface may go down or
// disappear at any time; every query reports that as an error instead of failing hard.
type Handle struct {
	source Source
	name   string
}

// Bind resolves name against the source. The adapter must exist and be up.
func Bind(ctx context.Context, src Source, name string) (*Handle, error) {
	name = strings.TrimSpace(name)
	if src == nil || name == "" {
		return nil, ErrAdapterUnavailable
	}
	adapters, err := src.Adapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	}
	for _, a := range adapters {
		if a.Name != name {
			continue
		}
		if !a.Up {
			return nil, ErrAdapterDown
		}
		return &Handle{source: src, name: name}, nil
	}
	return nil, fmt.Errorf("%w: %q not found", ErrAdapterUnavailable, name)
}

func (h *Handle) Name() string {
	return h.name
}

// Up reports the current operational status.
func (h *Handle) Up(ctx context.Context) bool {
	adapters, err := h.source.Adapters(ctx)
	if err != nil {
		return false
	}
	for _, a := range adapters {
		if a.Name == h.name {
			return a.Up
		}
	}
	return false
}

// Read queries the current counters. Panics raised below the source are converted to
// ErrAdapterUnavailable.
func (h *Handle) Read(ctx context.Context) (c Counters, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = Counters{}
			err = fmt.Errorf("%w: counter query panicked: %v", ErrAdapterUnavailable, r)
		}
	}()
	return h.source.Counters(ctx, h.name)
}
