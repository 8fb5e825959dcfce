// Package module wires auth into the API using modkit
package module

import (
	"net/http"

	modkit "hashvault/internal/modkit"
	"hashvault/internal/modkit/httpkit"
	str "hashvault/internal/platform/strings"
	authhttp "hashvault/internal/services/api/auth/http"
	authrepo "hashvault/internal/services/api/auth/repo"
	authsvc "hashvault/internal/services/api/auth/service"
)

// Module implements the auth module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc authsvc.Service
}

// New constructs the auth module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("auth"), modkit.WithPrefix("/auth")}, opts...)...)

	repo := authrepo.NewPG()
	svc := authsvc.New(deps.PG, repo)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		authhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service exposes the auth service for wiring at mount time
func (m *Module) Service() authsvc.Service { return m.svc }

// MountRoutes mounts the public auth routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// MountProtectedRoutes mounts the session-gated auth routes
func (m *Module) MountProtectedRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		authhttp.RegisterProtected(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
