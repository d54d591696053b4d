package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/mockorbit/interviewd/internal/adapters/http"
	"github.com/mockorbit/interviewd/internal/adapters/rtc"
	ws "github.com/mockorbit/interviewd/internal/adapters/signal"
	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/app/orch"
	"github.com/mockorbit/interviewd/internal/auth"
	"github.com/mockorbit/interviewd/internal/config"
	"github.com/mockorbit/interviewd/internal/store"
	"github.com/mockorbit/interviewd/internal/store/mem"
	"github.com/mockorbit/interviewd/internal/store/mongo"
	"github.com/mockorbit/interviewd/internal/store/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogging(cfg *config.Config) {
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openStore picks the interview lookup backend. The returned closer may be nil.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Interviews, io.Closer, error) {
	switch cfg.Type {
	case "mongo":
		m, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return m, closerFunc(func() error { return m.Close(context.Background()) }), nil
	case "redis":
		r, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case "memory":
		return mem.New(cfg.Memory), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func run(ctx context.Context, cfg *config.Config) error {
	interviews, closer, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Type, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	policy, err := app.PolicyFor(cfg.SendQueue.Overflow)
	if err != nil {
		return err
	}
	ice, err := rtc.ICEServers(cfg.ICEServers)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	rooms := app.NewRoomManager(app.NewRegistry(), cfg.MaxMembersPerRoom)
	o := orch.New(rooms, policy)
	authz := auth.NewAuthorizer(auth.NewJWTValidator(cfg.JWTSecret), interviews)
	ctl := ws.NewController(gctx, o, authz, ws.Options{
		ReadLimit:       cfg.ReadLimit,
		PingPeriod:      cfg.PingPeriod,
		PongWait:        cfg.PongWait,
		WriteWait:       cfg.WriteWait,
		AuthTimeout:     cfg.AuthTimeout,
		QueueSize:       cfg.SendQueue.Size,
		EventsPerSecond: cfg.RateLimit.EventsPerSecond,
		Burst:           cfg.RateLimit.Burst,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(cfg, o, ctl, ice),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("interview signaling server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return o.RunReaper(gctx, cfg.ReapInterval, cfg.IdleTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		o.Shutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := ctl.Wait(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("connections still open at exit")
		}
		return nil
	})
	return g.Wait()
}
