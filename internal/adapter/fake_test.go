package adapter

import (
	"context"
	"errors"

	"netmeter/internal/model"
)

type fakeSource struct {
	adapters []model.AdapterInfo
	counters map[string]Counters
	listErr  error
	panicOn  string
}

func (f *fakeSource) Adapters(ctx context.Context) ([]model.AdapterInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.adapters, nil
}

func (f *fakeSource) Counters(ctx context.Context, name string) (Counters, error) {
	if name == f.panicOn {
		panic("driver exploded")
	}
	c, ok := f.counters[name]
	if !ok {
		return Counters{}, ErrAdapterUnavailable
	}
	return c, nil
}

var errBoom = errors.New("boom")
