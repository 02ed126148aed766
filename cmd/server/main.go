package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/pairsignal/internal/adapters/http"
	wssignal "github.com/dkeye/pairsignal/internal/adapters/signal"
	"github.com/dkeye/pairsignal/internal/app"
	"github.com/dkeye/pairsignal/internal/app/orch"
	"github.com/dkeye/pairsignal/internal/config"
	"github.com/dkeye/pairsignal/internal/core"
	"github.com/dkeye/pairsignal/internal/metrics"
	"github.com/dkeye/pairsignal/internal/netaddr"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	// Validate already checked both of these.
	policy, _ := app.ParsePolicy(cfg.Backpressure)
	exclude, _ := netaddr.ParseExclusions(cfg.IPExclude)

	m := metrics.New()
	rooms := core.NewRoomTable()
	reg := app.NewRegistry(rooms, policy, m)

	coord := orch.NewCoordinator(rooms, reg, netaddr.HostSource{})
	coord.Metrics = m
	coord.Exclude = exclude
	coord.ClientLog = cfg.ClientLog

	ctl := wssignal.NewSignalWSController(coord, reg, m, wssignal.Options{
		ReadLimit:         cfg.ReadLimit,
		PingPeriod:        cfg.PingPeriod,
		PongWait:          cfg.PongWait,
		WriteWait:         cfg.WriteWait,
		SendBuffer:        cfg.SendBuffer,
		RateLimitEvents:   cfg.RateLimitEvents,
		RateLimitInterval: cfg.RateLimitInterval,
	})

	r := router.SetupRouter(ctx, cfg, router.Deps{Signal: ctl, Rooms: rooms, Metrics: m})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("pairsignal server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
