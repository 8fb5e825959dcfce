package module

import (
	"hashvault/internal/services/api/hashes/domain"
)

// Ports is what other modules may consume from hashes
type Ports struct {
	Service   domain.ServicePort
	Stats     domain.StatsPort
	Blocklist domain.BlocklistPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
