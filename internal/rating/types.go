package rating

import (
	"sync"

	"github.com/beniksen/topspin/internal/glicko"
	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
)

// engine serializes every rating mutation behind a single mutex so that a
// concurrent apply and recompute can never interleave their writes.
type engine struct {
	store   league.Store
	metrics metrics.Metrics
	opts    glicko.Options
	mu      sync.Mutex
}
