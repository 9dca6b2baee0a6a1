package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/internal/api/handler"
	"github.com/vfg2006/ppc-automation/internal/api/handler/router"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

// New monta o servidor de operações. lister pode ser nil quando a auditoria
// não é persistida.
func New(cfg *config.Config, service handler.RunService, lister handler.AuditLister) (*Server, error) {
	if cfg.Auth.Secret == "" {
		return nil, errors.New("api: AUTH_SECRET is required to serve the operations API")
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			Handler:           NewHandler(cfg.Auth.Secret, service, lister),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// NewHandler monta rotas e middlewares
func NewHandler(secret string, service handler.RunService, lister handler.AuditLister) http.Handler {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck(service)...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.Runs(service, lister)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.AuthMiddleware(secret),
	}

	return alice.New(middlewares...).Then(rt)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("api: iniciando servidor")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("api: erro no servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case <-done:
		logrus.Info("api: sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("api: contexto cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("api: iniciando desligamento gracioso")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("api: falha no desligamento")
		return err
	}

	logrus.Info("api: servidor parado")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
