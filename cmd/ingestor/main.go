package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stay_search/internal/adapters/aliasfile"
	"stay_search/internal/adapters/feed"
	"stay_search/internal/adapters/observability"
	redisad "stay_search/internal/adapters/redis"
	"stay_search/internal/app"
	"stay_search/internal/search"
	"stay_search/internal/shared"
	mysqlrepo "stay_search/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	observability.SetupGlobal(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.FeedBase).
		Int("workers", cfg.Workers).
		Int("rps", cfg.FeedRPS).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := feed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	// city slugs are derived with the same vocabulary the API searches with
	tables, err := app.CuratedAliases{Base: aliasfile.New(cfg.AliasFile), Repo: repo}.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("alias load failed")
	}
	ing := app.NewIngestionService(client, repo, cache, search.NewResolver(tables.Merged()))

	index, err := ing.ListIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing index failed")
	}

	start := time.Now()
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg     sync.WaitGroup
		ok     atomic.Int64
		failed atomic.Int64
	)

dispatch:
	for p, ids := range index {
		log.Info().Str("type", string(p)).Int("listings", len(ids)).Msg("ingesting partition")
		for _, id := range ids {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Warn().Err(err).Msg("ingestion interrupted")
				break dispatch
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)

				if err := ing.IngestListing(ctx, id, p); err != nil {
					failed.Add(1)
					log.Warn().Str("id", id).Str("type", string(p)).Err(err).Msg("ingest failed")
					return
				}
				ok.Add(1)
				log.Debug().Str("id", id).Msg("ingest ok")
			}()
		}
	}

	wg.Wait()
	log.Info().
		Int64("ok", ok.Load()).
		Int64("failed", failed.Load()).
		Dur("took", time.Since(start)).
		Msg("ingestion completed")
}
