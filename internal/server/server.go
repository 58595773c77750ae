package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config *Config
	server *http.Server
	svc    *Services
}

func New(ctx context.Context, config *Config) (*Server, error) {
	svc, err := NewServices(ctx, config)
	if err != nil {
		return nil, err
	}
	return newWithServices(config, svc), nil
}

func newWithServices(config *Config, svc *Services) *Server {
	return &Server{
		config: config,
		svc:    svc,
		server: &http.Server{
			Addr:         config.HTTP.Addr,
			Handler:      SetupRoutes(svc, &config.HTTP),
			ReadTimeout:  config.HTTP.ReadTimeout,
			WriteTimeout: config.HTTP.WriteTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("gfxtab server start")
	defer slog.Info("gfxtab server stop")

	if err := s.svc.Start(ctx); err != nil {
		_ = s.svc.Shutdown(context.WithoutCancel(ctx))
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := s.runHttpServer(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start error", "error", err)
			return err
		}
		slog.Info("http server stopped")
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("gfxtab shutdown signal")
		if err := s.Stop(context.WithoutCancel(ctx)); err != nil {
			slog.Error("gfxtab shutdown error", "error", err)
			return err
		}
		return nil
	})

	return eg.Wait()
}

// Stop drains the listener before releasing the shared clients, so no
// in-flight request sees a closed store.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.svc.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) runHttpServer() error {
	if s.config.HTTP.CertFile != "" && s.config.HTTP.KeyFile != "" {
		slog.Info("server start tls", "addr", s.config.HTTP.Addr, "cert", s.config.HTTP.CertFile, "key", s.config.HTTP.KeyFile)
		return s.server.ListenAndServeTLS(s.config.HTTP.CertFile, s.config.HTTP.KeyFile)
	}
	slog.Info("server start http", "addr", s.config.HTTP.Addr)
	return s.server.ListenAndServe()
}
