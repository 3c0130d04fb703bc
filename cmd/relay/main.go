package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/webchat/relay/config"
	"github.com/webchat/relay/src/auth"
	"github.com/webchat/relay/src/bridge"
	"github.com/webchat/relay/src/hub"
	"github.com/webchat/relay/src/server"
	"github.com/webchat/relay/src/service"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.ConfigFromEnv()
	if cfg.SessionSecret == "" {
		logger.Fatal().Msg("SESSION_SECRET is required")
	}

	h := hub.New(logger)
	go h.Run()

	// Attempt the Redis bridge (non-fatal if unavailable).
	var b bridge.Bridge
	rb := bridge.NewRedisBridge(bridge.RedisConfigFromEnv(), h, logger)
	if err := rb.Start(); err != nil {
		logger.Warn().Err(err).Msg("redis bridge unavailable, running standalone")
	} else {
		b = rb
		h.SetBridge(rb)
	}

	gate := auth.NewGate(auth.Config{
		Secret:     cfg.SessionSecret,
		CookieName: cfg.SessionCookie,
	})
	svc := service.New(h, nil, logger)
	srv := server.New(cfg, gate, svc, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server stopped")
	}

	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	if b != nil {
		if err := b.Stop(); err != nil {
			logger.Error().Err(err).Msg("bridge stop error")
		}
	}
	h.Stop()
}
