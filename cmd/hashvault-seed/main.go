// hashvault-seed bulk-loads a hash list file into the blocklist through the
// same ingestion pipeline the API upload uses
package main

import (
	"context"
	"flag"
	"os"

	"hashvault/internal/core/hashtoken"
	"hashvault/internal/platform/config"
	"hashvault/internal/platform/logger"
	"hashvault/internal/platform/store"

	hashesrepo "hashvault/internal/services/api/hashes/repo"
	hashessvc "hashvault/internal/services/api/hashes/service"
	ingestdom "hashvault/internal/services/ingest/domain"
	ingestsvc "hashvault/internal/services/ingest/service"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	var (
		fFile = flag.String("file", "", "path to a newline separated hash list")
	)
	flag.Parse()
	if *fFile == "" {
		l.Panic().Msg("must provide -file")
	}

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	f, err := os.Open(*fFile)
	if err != nil {
		l.Panic().Err(err).Str("file", *fFile).Msg("could not open hash list")
	}
	defer func() { _ = f.Close() }()

	tokens, err := hashtoken.Extract(f)
	if err != nil {
		l.Panic().Err(err).Msg("could not read hash list")
	}
	l.Info().Int("tokens", len(tokens)).Str("file", *fFile).Msg("seeding blocklist")

	svc := hashessvc.New(st.PG, hashesrepo.NewPG())
	ingest := ingestsvc.New(svc, ingestsvc.OptionsFromConfig(root))

	summary := ingest.Run(context.Background(), tokens, func(ev ingestdom.ProgressEvent) {
		l.Info().
			Int("batch", ev.CurrentBatch).
			Int("batches", ev.TotalBatches).
			Int("processed", ev.Processed).
			Int("new", ev.NewCount).
			Int("duplicate", ev.DuplicateCount).
			Int("errors", ev.ErrorCount).
			Int("percent", ev.Percent).
			Msg("seed progress")
	})

	if summary.ErrorCount > 0 {
		l.Warn().
			Int("new", summary.NewCount).
			Int("duplicate", summary.DuplicateCount).
			Int("errors", summary.ErrorCount).
			Msg("seed finished with errors")
		os.Exit(1)
	}
	l.Info().
		Int("total", summary.Total).
		Int("new", summary.NewCount).
		Int("duplicate", summary.DuplicateCount).
		Msg("seed complete")
}
