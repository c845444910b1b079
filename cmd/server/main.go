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

	"github.com/dkeye/roomchat/internal/adapters/bus"
	router "github.com/dkeye/roomchat/internal/adapters/http"
	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/app/orch"
	"github.com/dkeye/roomchat/internal/config"
	"github.com/dkeye/roomchat/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad flags")
	}
	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	rooms := core.NewRoomRegistry()
	o := &orch.Orchestrator{
		Registry:    app.NewRegistry(),
		Rooms:       rooms,
		Broadcaster: core.NewBroadcaster(rooms),
		Policy:      app.SimplePolicy{},
	}

	if cfg.RedisAddr != "" {
		rdb, err := bus.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer rdb.Close()
		rb := bus.NewRedisBus(rdb, cfg.RedisChannel)
		o.Bus = rb
		go rb.Run(ctx, o.DeliverRemote)
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("roomchat server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	o.Shutdown()
	log.Info().Msg("Server exited gracefully")
}
