package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/webchat/relay/config"
	"github.com/webchat/relay/src/auth"
	"github.com/webchat/relay/src/hub"
	"github.com/webchat/relay/src/service"
	"github.com/webchat/relay/src/types"
)

// Server hosts the relay's transport surface: the WebSocket endpoint plus a
// small HTTP API. The WebSocket upgrade runs as a raw fasthttp handler
// mounted beside the Fiber app, since Fiber v3 does not expose
// *fasthttp.RequestCtx.
type Server struct {
	cfg    *config.RelayConfig
	gate   *auth.Gate
	svc    *service.Service
	hub    *hub.Hub
	app    *fiber.App
	http   *fasthttp.Server
	logger zerolog.Logger
}

// New wires the transport surface around an already-running hub.
func New(cfg *config.RelayConfig, gate *auth.Gate, svc *service.Service, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		gate:   gate,
		svc:    svc,
		hub:    svc.Hub(),
		app:    fiber.New(),
		logger: logger.With().Str("component", "server").Logger(),
	}
	s.registerRoutes()
	s.registerFrameHandlers()

	fiberHandler := s.app.Handler()
	wsHandler := s.wsHandler()
	s.http = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) == cfg.WSPath {
				wsHandler(ctx)
				return
			}
			fiberHandler(ctx)
		},
	}
	return s
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info().
		Str("addr", s.cfg.Addr).
		Str("ws_path", s.cfg.WSPath).
		Msg("relay listening")
	return s.http.ListenAndServe(s.cfg.Addr)
}

// Shutdown stops accepting connections and closes the listener.
func (s *Server) Shutdown() error {
	return s.http.Shutdown()
}

// registerFrameHandlers binds the client-to-server wire events. Join and
// leave are the only frames a client may send; message events enter the
// relay exclusively through the publish endpoint after a durable write, so
// only server-confirmed records ever reach peers.
func (s *Server) registerFrameHandlers() {
	s.hub.RegisterHandler(types.EventJoinRoom, func(connID string, frame types.Frame) error {
		c, ok := s.hub.Get(connID)
		if !ok {
			return nil
		}
		return s.svc.Join(connID, c.UserID, frame.Room)
	})
	s.hub.RegisterHandler(types.EventLeaveRoom, func(connID string, frame types.Frame) error {
		return s.svc.Leave(connID, frame.Room)
	})
}
