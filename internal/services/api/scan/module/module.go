// Package module wires scan into the API using modkit
package module

import (
	"net/http"

	"hashvault/internal/adapters/reputation"
	modkit "hashvault/internal/modkit"
	"hashvault/internal/modkit/httpkit"
	"hashvault/internal/platform/config"
	str "hashvault/internal/platform/strings"
	hashesdom "hashvault/internal/services/api/hashes/domain"
	scanhttp "hashvault/internal/services/api/scan/http"
	scanrepo "hashvault/internal/services/api/scan/repo"
	scansvc "hashvault/internal/services/api/scan/service"
)

// Module implements the scan module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc scansvc.Service
}

// Ports declares the injected ports this module requires
type Ports struct {
	Blocklist hashesdom.BlocklistPort
	// Reputation overrides the config-built client; nil means build from config
	Reputation reputation.Port
}

// reputationFromConfig builds the VirusTotal client from VT_ config keys
func reputationFromConfig(cfg config.Conf) reputation.Port {
	vt := cfg.Prefix("VT_")
	return reputation.NewClient(reputation.Options{
		BaseURL:   vt.MayString("BASE_URL", ""),
		Timeout:   vt.MayDuration("TIMEOUT", 0),
		APIKey:    vt.MayString("API_KEY", ""),
		URLAPIKey: vt.MayString("URL_API_KEY", ""),
	})
}

// New constructs the scan module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("scan"), modkit.WithPrefix("/scan")}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Blocklist == nil {
		panic("scan module requires the hashes Blocklist port")
	}
	rep := injected.Reputation
	if rep == nil {
		rep = reputationFromConfig(deps.Cfg)
	}

	binder := scanrepo.NewHybrid(deps.CH)
	svc := scansvc.New(deps.PG, binder, injected.Blocklist, rep)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptScanPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		scanhttp.Register(r, m.svc)
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
