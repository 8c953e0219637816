package health

import (
	"context"
	"time"

	"doc-analyzer/internal/extract"
	"doc-analyzer/internal/llm"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	extractors *extract.Set
	gateway    *llm.Gateway
	db         Pinger
}

// Status is the health payload.
type Status struct {
	OK         bool     `json:"ok"`
	Extractors []string `json:"extractors"`
	Gateway    string   `json:"gateway"`
	Database   string   `json:"database"`
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(extractors *extract.Set, gateway *llm.Gateway, db Pinger) *Service {
	return &Service{extractors: extractors, gateway: gateway, db: db}
}

// Status reports which extractors and provider are usable and whether the
// database answers. Only the database affects OK.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		OK:         true,
		Extractors: s.extractors.Available(),
		Gateway:    "not_configured",
		Database:   "memory",
	}
	if s.gateway.Ready() {
		st.Gateway = s.gateway.ProviderName()
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			st.OK = false
			st.Database = "unavailable"
		} else {
			st.Database = "ok"
		}
	}
	return st
}
