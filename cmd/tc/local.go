package main

import (
	"context"

	"github.com/zsiec/timecode/internal/api"
	"github.com/zsiec/timecode/pkg/timecode"
)

// localBackend runs conversions in-process through the same operations the
// service uses, so both return identical payloads.
type localBackend struct {
	sink timecode.Sink
}

func (b localBackend) FromSeconds(_ context.Context, req api.FromSecondsRequest) (*api.FromSecondsResponse, error) {
	return api.FromSeconds(b.sink, req)
}

func (b localBackend) ToSeconds(_ context.Context, req api.ToSecondsRequest) (*api.ToSecondsResponse, error) {
	return api.ToSeconds(b.sink, req)
}

func (b localBackend) Short(_ context.Context, req api.ShortRequest) (*api.ShortResponse, error) {
	return api.Short(b.sink, req)
}

func (b localBackend) Validate(_ context.Context, req api.ValidateRequest) (*api.ValidateResponse, error) {
	return api.Validate(b.sink, req), nil
}

func (b localBackend) Ranges(_ context.Context, req api.RangesRequest) (*api.RangesResponse, error) {
	return api.Ranges(b.sink, req)
}

func (localBackend) Rates(context.Context) (*api.RatesResponse, error) {
	return api.Rates(), nil
}
