package adapters

import (
	"context"

	"github.com/iamwavecut/hrbots/internal/adapters/weather"
)

// Weather defines the interface for current-conditions lookups
type Weather interface {
	// Current fetches the current conditions for a free-form location query
	Current(ctx context.Context, location string) (weather.Report, error)
}
