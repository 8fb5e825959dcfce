package module

import (
	"hashvault/internal/services/api/auth/domain"
)

// Ports is what other modules may consume from auth
type Ports struct {
	Service domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
