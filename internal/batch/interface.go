package batch

import (
	"context"
	"mapslinks/pkg/domain"
)

//go:generate mockgen -package mockbatch -source=interface.go -destination=mock/mockbatch.go *
type Runner interface {
	// Run resolves links sequentially in one browser session and returns one
	// result per link in input order. Per-link failures are reported in the
	// results; an error means the batch could not run at all.
	Run(ctx context.Context, links []string) ([]domain.ResolvedLocation, error)
}
