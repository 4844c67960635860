package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"richrain/internal/catalog"
	"richrain/internal/game"
	"richrain/internal/results"
	"richrain/internal/session"
	"richrain/internal/web"
)

func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "match catalog (YAML)")
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Uint64("seed", 0, "fixed random seed for every match (0 = time based)")
	rounds := flag.Int("rounds", 0, "override the catalog round count")
	debug := flag.Bool("debug", false, "development logging")
	redisAddr := flag.String("redis", "", "archive results to this Redis address")
	sheets := flag.String("sheets", "", "write a PDF results sheet per match into this directory")
	flag.Parse()

	log := newLogger(*debug)
	defer func() { _ = log.Sync() }()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Fatal("load catalog", zap.String("path", *catalogPath), zap.Error(err))
	}
	if *rounds > 0 {
		cat.Rounds = *rounds
	}

	var (
		sinks   results.Fanout
		archive *results.Archive
	)
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal("redis unreachable", zap.String("addr", *redisAddr), zap.Error(err))
		}
		archive = results.NewArchive(rdb, "")
		sinks = append(sinks, archive)
	}
	if *sheets != "" {
		sinks = append(sinks, results.SheetWriter{Dir: *sheets})
	}
	var sink game.ResultsSink
	if len(sinks) > 0 {
		sink = sinks
	}

	store := catalog.NewStore(cat)
	srv := &web.Server{
		Catalog: store,
		Matches: session.NewMemoryStore[*web.Match](),
		Results: sink,
		Logger:  log,
		Seed:    *seed,
	}
	if archive != nil {
		srv.Archive = archive
	}

	// SIGHUP reloads the catalog; running matches keep their own setup.
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		for range hup {
			next, err := catalog.Load(*catalogPath)
			if err != nil {
				log.Error("reload catalog", zap.String("path", *catalogPath), zap.Error(err))
				continue
			}
			if *rounds > 0 {
				next.Rounds = *rounds
			}
			store.Replace(next)
			log.Info("catalog reloaded", zap.Int("players", len(next.Roster)), zap.Int("rounds", next.Rounds))
		}
	}()

	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for range t.C {
			srv.Reap(context.Background())
		}
	}()

	log.Info("listening",
		zap.String("addr", *addr),
		zap.Int("players", len(cat.Roster)),
		zap.Int("rounds", cat.Rounds),
	)
	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := hs.ListenAndServe(); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}
