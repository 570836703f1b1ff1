// context.go defines the Context interface for extension access to fermi
// internals.
//
// Extensions receive Context during Init(), not at construction, to support
// the two-phase initialisation pattern where extensions register before
// the service is available.

package extension

import (
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/service"
)

// Context provides extensions controlled access to fermi internals.
type Context interface {
	// Service returns the record service.
	Service() service.Service

	// Config returns the live configuration. Updates made through it are
	// persisted and applied to the running service.
	Config() *config.Provider
}

// extContext implements Context.
type extContext struct {
	svc service.Service
	cfg *config.Provider
}

// NewContext creates a new extension context.
func NewContext(svc service.Service, cfg *config.Provider) Context {
	return &extContext{svc: svc, cfg: cfg}
}

func (c *extContext) Service() service.Service {
	return c.svc
}

func (c *extContext) Config() *config.Provider {
	return c.cfg
}
