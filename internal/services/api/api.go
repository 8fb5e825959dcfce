// Package api provides the HTTP API for the application
package api

import (
	"context"

	"hashvault/internal/platform/config"
	"hashvault/internal/platform/logger"
	phttp "hashvault/internal/platform/net/http"
	"hashvault/internal/platform/store"

	"hashvault/internal/modkit"
	"hashvault/internal/modkit/httpkit"
	"hashvault/internal/modkit/module"

	authmod "hashvault/internal/services/api/auth/module"
	dashmod "hashvault/internal/services/api/dashboard/module"
	hashesmod "hashvault/internal/services/api/hashes/module"
	metamod "hashvault/internal/services/api/meta/module"
	scanmod "hashvault/internal/services/api/scan/module"
	settingsmod "hashvault/internal/services/api/settings/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// auth first so its token parser can gate everything else
	auth := authmod.New(deps)
	authSvc := auth.(*authmod.Module).Service()
	if err := authSvc.EnsureDefaultAdmin(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("could not ensure default admin")
	}
	authPort := httpkit.NewPortFunc(func(token string) (string, error) {
		return authSvc.ParseToken(context.Background(), token)
	})

	// hashes owns the blocklist and its stats slices
	hashes := hashesmod.New(deps)
	hashesPorts := module.MustPortsOf[hashesmod.Ports](hashes)

	scan := scanmod.New(deps, modkit.WithPorts(scanmod.Ports{
		Blocklist: hashesPorts.Blocklist,
	}))
	dashboard := dashmod.New(deps, modkit.WithPorts(dashmod.Ports{
		Stats: hashesPorts.Stats,
	}))
	settings := settingsmod.New(deps, modkit.WithPorts(settingsmod.Ports{
		Auth: module.MustPortsOf[authmod.Ports](auth).Service,
	}))

	public := []module.Module{
		metamod.New(deps),
		auth,
	}
	protected := []module.Module{
		hashes,
		scan,
		dashboard,
		settings,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountSwagger(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range public {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}

		httpkit.Protected(api, authPort, func(gr httpkit.Router) {
			for _, m := range protected {
				module.Register(m.Name(), m.Ports())
				m.MountRoutes(gr)
			}
			// logout needs a live session to revoke
			auth.(*authmod.Module).MountProtectedRoutes(gr)
		})
	})
}
