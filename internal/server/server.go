package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

type HttpServerParams struct {
	fx.In

	Context context.Context

	Config HttpConfig

	Handlers []*HttpHandler `group:"handlers"`
	Logger   *zap.Logger
}

type HttpServer struct {
	ctx    context.Context
	addr   string
	server *http.Server
	log    *zap.Logger

	listening chan net.Addr
}

func NewHttpServer(params HttpServerParams) *HttpServer {
	log := params.Logger.Named("http")

	handler := NewHandler(params.Handlers, DefaultMiddleware(log)...)
	if params.Config.H2c {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	addr := fmt.Sprintf("%s:%d", params.Config.Host, params.Config.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: params.Config.ReadHeaderTimeout,
	}

	return &HttpServer{
		ctx:       params.Context,
		addr:      addr,
		server:    server,
		log:       log,
		listening: make(chan net.Addr, 1),
	}
}

func NewLifecycleServer(params HttpServerParams, lc fx.Lifecycle, shutdowner fx.Shutdowner) *HttpServer {
	server := NewHttpServer(params)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := server.Listen(ctx)
			if err != nil {
				return err
			}
			go func() {
				if err := server.Serve(listener); err != nil {
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
	return server
}

// Listen binds the configured address.
func (s *HttpServer) Listen(ctx context.Context) (net.Listener, error) {
	cfg := net.ListenConfig{}

	listener, err := cfg.Listen(ctx, "tcp", s.addr)
	if err != nil {
		s.log.Error("failed to listen", zap.Error(err), zap.String("address", s.addr))
		return nil, err
	}

	s.log.Info("listening", zap.String("address", listener.Addr().String()))
	s.listening <- listener.Addr()

	return listener, nil
}

// Addr blocks until the server is listening and returns its address.
func (s *HttpServer) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case addr := <-s.listening:
		s.listening <- addr
		return addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve serves requests on listener until the server is shut down.
func (s *HttpServer) Serve(listener net.Listener) error {
	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		s.log.Error("failed to serve", zap.Error(err))
		return err
	}

	return nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Error("failed to shutdown", zap.Error(err))
		return err
	}

	return nil
}
