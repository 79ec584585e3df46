package points

import (
	"context"
	"errors"
)

// ErrFitUnavailable means the sample was too small or degenerate to fit. The
// filter variant stays on its previous parameters, or unscored if it has none.
var ErrFitUnavailable = errors.New("distribution fit unavailable")

// Fitter fits a distribution to a set of completion times sorted ascending.
// Implementations fill the curve fields; FilterID and Variant are set by the caller.
type Fitter interface {
	Fit(ctx context.Context, times []float64) (Distribution, error)
}
