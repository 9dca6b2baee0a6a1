package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/infrastructure/database/postgres"
	"github.com/vfg2006/ppc-automation/infrastructure/integrator/ads"
	"github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/adsclient"
	"github.com/vfg2006/ppc-automation/infrastructure/migration"
	"github.com/vfg2006/ppc-automation/infrastructure/repository"
	"github.com/vfg2006/ppc-automation/internal/api"
	"github.com/vfg2006/ppc-automation/internal/api/handler"
	"github.com/vfg2006/ppc-automation/internal/automation"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/pkg/log"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
	"github.com/vfg2006/ppc-automation/pkg/ratelimit"
	"github.com/vfg2006/ppc-automation/pkg/retry"
)

func main() {
	os.Exit(run())
}

// run devolve o código de saída; no modo once é 1 quando a execução falha
func run() int {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Error("optimizer: configuração inválida")
		return 1
	}

	log.Configure(cfg.App.LogLevel, os.Stdout)
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := automation.Dependencies{
		NewPlatform: platformFactory(cfg),
		Parse:       ads.ParseReport,
	}

	var auditRepo repository.AuditRepository
	if cfg.Warehouse.Enabled || cfg.Audit.Persist {
		pgConn, err := pgconn(ctx, cfg)
		if err != nil {
			logrus.WithError(err).Error("optimizer: banco de dados indisponível")
			return 1
		}
		defer pgConn.Close()

		if cfg.Warehouse.Enabled {
			deps.Loader = repository.NewWarehouseRepository(pgConn, cfg.Warehouse.BatchSize)
		}
		if cfg.Audit.Persist {
			auditRepo = repository.NewAuditRepository(pgConn)
			deps.AuditStore = auditRepo
		}
	}

	service := automation.NewService(cfg, deps)

	switch cfg.App.Mode {
	case config.ModeVerify:
		if err := verify(ctx, cfg); err != nil {
			logrus.WithError(err).Error("optimizer: falha ao verificar a conexão")
			return 1
		}

	case config.ModeServe:
		var lister handler.AuditLister
		if auditRepo != nil {
			lister = auditRepo
		}

		server, err := api.New(cfg, service, lister)
		if err != nil {
			logrus.WithError(err).Error("optimizer: erro ao criar o servidor da api")
			return 1
		}
		if err := server.Run(ctx); err != nil {
			logrus.WithError(err).Error("optimizer: servidor da api parou com erro")
			return 1
		}

	default:
		summary, err := service.Run(ctx)
		if err != nil {
			logrus.WithError(err).Error("optimizer: execução falhou")
		}
		if summary == nil || !summary.Succeeded() {
			return 1
		}
	}

	return 0
}

// platformFactory cria um cliente novo por execução: credenciais, token,
// limiter e retry não sobrevivem entre execuções
func platformFactory(cfg *config.Config) automation.PlatformFactory {
	secrets := config.NewRenderClient(cfg)

	return func(ctx context.Context) (automation.Platform, error) {
		platform, err := newAdsIntegrator(ctx, cfg, secrets)
		if err != nil {
			return nil, err
		}
		return platform, nil
	}
}

func newAdsIntegrator(ctx context.Context, cfg *config.Config, secrets config.SecretStorage) (*ads.AdsIntegrator, error) {
	creds, err := config.LoadCredentials(ctx, cfg, secrets)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	policy := retry.NewPolicy(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, cfg.Retry.MaxAttempts, cfg.Retry.JitterFraction)

	return ads.New(adsclient.NewClient(cfg.Ads, creds, limiter, policy)), nil
}

// verify autentica e lista uma amostra de campanhas sem executar motores
func verify(ctx context.Context, cfg *config.Config) error {
	platform, err := newAdsIntegrator(ctx, cfg, config.NewRenderClient(cfg))
	if err != nil {
		return err
	}
	if err := platform.Authenticate(ctx); err != nil {
		return err
	}
	_, err = platform.VerifyConnection(ctx)
	return err
}

// pgconn cria a conexão com o banco e aplica as migrações quando configurado
func pgconn(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Warehouse.AutoMigrate {
		if err := migration.Apply(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		logrus.Info("optimizer: migrations aplicadas")
	}

	logrus.Info("optimizer: conexão com o PostgreSQL estabelecida")
	return conn, nil
}
