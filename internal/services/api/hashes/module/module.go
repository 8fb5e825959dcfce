// Package module wires the hash blocklist into the API using modkit
package module

import (
	"net/http"

	modkit "hashvault/internal/modkit"
	"hashvault/internal/modkit/httpkit"
	str "hashvault/internal/platform/strings"
	hasheshttp "hashvault/internal/services/api/hashes/http"
	hashesrepo "hashvault/internal/services/api/hashes/repo"
	hashessvc "hashvault/internal/services/api/hashes/service"
	ingestsvc "hashvault/internal/services/ingest/service"
)

// Module implements the hashes module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc    hashessvc.Service
	ingest ingestsvc.Service
}

// New constructs the hashes module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("hashes"), modkit.WithPrefix("/hashes")}, opts...)...)

	repo := hashesrepo.NewPG()
	svc := hashessvc.New(deps.PG, repo)
	ingest := ingestsvc.New(svc, ingestsvc.OptionsFromConfig(deps.Cfg))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
		ingest:    ingest,
	}
	m.ports = Ports{Service: svc, Stats: svc, Blocklist: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		hasheshttp.Register(r, m.svc, m.ingest)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
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

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
