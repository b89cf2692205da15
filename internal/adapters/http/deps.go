package http

import (
	"github.com/nats-io/nats.go"

	"github.com/arjunrs/saferoutes/internal/adapters/postgres"
	"github.com/arjunrs/saferoutes/internal/adapters/valkey"
	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Optimizer *usecases.OptimizeService
	Geocode   *usecases.GeocodeService
	Feedback  *usecases.FeedbackService
	Heatmaps  *usecases.HeatmapService
	ML        ports.MLPredictor
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
