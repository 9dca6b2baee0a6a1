package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
	"github.com/vfg2006/ppc-automation/pkg/utils"
)

//go:generate mockgen -source=manager.go -destination=mocks/mock_report_api.go -package=mocks

// ReportAPI é o lado da plataforma usado pelo ciclo de vida de um relatório
type ReportAPI interface {
	RequestReport(ctx context.Context, scope domain.ReportScope) (string, error)
	PollReport(ctx context.Context, externalID string) (domain.ReportStatus, error)
	DownloadReport(ctx context.Context, status domain.ReportStatus) ([]byte, error)
}

// ParseFunc converte o payload baixado nos registros do domínio
type ParseFunc func(scope domain.ReportScope, raw []byte) (*domain.ReportData, error)

type Options struct {
	MaxInFlight     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	BackoffFactor   float64
	MaxWait         time.Duration
}

func OptionsFromConfig(cfg config.Reports) Options {
	return Options{
		MaxInFlight:     cfg.MaxInFlight,
		InitialInterval: cfg.InitialPollInterval,
		MaxInterval:     cfg.MaxPollInterval,
		BackoffFactor:   cfg.PollBackoffFactor,
		MaxWait:         cfg.MaxWait,
	}
}

// Result é o desfecho de um job. Data só é preenchido quando o relatório foi
// baixado e interpretado com sucesso.
type Result struct {
	Request domain.ReportRequest
	Outcome domain.ReportOutcome
	Data    *domain.ReportData
	Err     error
}

func (r Result) Completed() bool {
	return r.Outcome.EffectiveState == domain.ReportStateCompleted && r.Data != nil
}

type Manager struct {
	api   ReportAPI
	parse ParseFunc
	opts  Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() (string, error)
}

func NewManager(api ReportAPI, parse ParseFunc, opts Options) *Manager {
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = 1
	}
	if opts.BackoffFactor < 1 {
		opts.BackoffFactor = 1
	}
	if opts.MaxInterval < opts.InitialInterval {
		opts.MaxInterval = opts.InitialInterval
	}

	return &Manager{
		api:   api,
		parse: parse,
		opts:  opts,
		now:   time.Now,
		sleep: sleep,
		newID: utils.GenerateID,
	}
}

// Run executa os jobs em paralelo, no máximo MaxInFlight por vez. Os resultados
// seguem a ordem dos escopos e um job nunca bloqueia outro.
func (m *Manager) Run(ctx context.Context, scopes []domain.ReportScope) []Result {
	results := make([]Result, len(scopes))

	var g errgroup.Group
	g.SetLimit(m.opts.MaxInFlight)

	for i, scope := range scopes {
		i, scope := i, scope
		g.Go(func() error {
			results[i] = m.runJob(ctx, scope)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (m *Manager) runJob(ctx context.Context, scope domain.ReportScope) Result {
	logger := log.ForContext(ctx).WithField("scope", scope.String())

	id, err := m.newID()
	if err != nil {
		id = fmt.Sprintf("%s-%d", scope.Type, m.now().UnixNano())
	}
	req := domain.NewReportRequest(id, scope, m.now())

	externalID, err := m.api.RequestReport(ctx, scope)
	if err != nil {
		// pedido interrompido pelo fim da execução segue a mesma regra do polling
		if ctx.Err() != nil {
			return m.cancelled(ctx, req)
		}
		_ = req.Fail(domain.ReportStateFailed, err.Error(), m.now())
		logger.WithError(err).Error("reporting: erro ao solicitar relatório")
		return m.finish(req, nil, err)
	}
	req.ExternalID = externalID
	_ = req.Transition(domain.ReportStateRequested, m.now())

	logger = logger.WithField("report_id", externalID)
	logger.Debug("reporting: relatório solicitado")

	deadline := req.CreatedAt.Add(m.opts.MaxWait)
	interval := m.opts.InitialInterval

	for {
		wait := interval
		finalPoll := false
		if remaining := deadline.Sub(m.now()); remaining <= wait {
			wait = max(remaining, 0)
			finalPoll = true
		}

		if err := m.sleep(ctx, wait); err != nil {
			return m.cancelled(ctx, req)
		}

		status, err := m.api.PollReport(ctx, externalID)
		req.Polls++
		if err != nil {
			if ctx.Err() != nil {
				return m.cancelled(ctx, req)
			}
			_ = req.Fail(domain.ReportStateFailed, err.Error(), m.now())
			logger.WithError(err).Error("reporting: erro ao consultar relatório")
			return m.finish(req, nil, err)
		}

		switch status.Status {
		case domain.PollStatusDone:
			req.Location = status.Location
			_ = req.Transition(domain.ReportStateCompleted, m.now())
			logger.WithField("polls", req.Polls).Info("reporting: relatório concluído")
			return m.download(ctx, req, status)

		case domain.PollStatusFailed:
			reason := status.FailureReason
			if reason == "" {
				reason = "report failed on platform"
			}
			_ = req.Fail(domain.ReportStateFailed, reason, m.now())
			logger.WithField("reason", reason).Error("reporting: relatório falhou")
			return m.finish(req, nil, fmt.Errorf("report %s failed: %s", externalID, reason))

		default:
			_ = req.Transition(domain.ReportStatePending, m.now())
		}

		if finalPoll {
			err := fmt.Errorf("%w: %s after %d polls", domain.ErrReportTimeout, scope.String(), req.Polls)
			_ = req.Fail(domain.ReportStateTimedOut, err.Error(), m.now())
			logger.WithField("polls", req.Polls).Warn("reporting: prazo do relatório esgotado")
			return m.finish(req, nil, err)
		}

		interval = min(time.Duration(float64(interval)*m.opts.BackoffFactor), m.opts.MaxInterval)
	}
}

// download mantém a requisição COMPLETED mesmo quando o download ou o parse
// falham; apenas o desfecho efetivo registra FAILED
func (m *Manager) download(ctx context.Context, req *domain.ReportRequest, status domain.ReportStatus) Result {
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"scope":     req.Scope.String(),
		"report_id": req.ExternalID,
	})

	raw, err := m.api.DownloadReport(ctx, status)
	if err != nil {
		logger.WithError(err).Error("reporting: erro ao baixar relatório")
		return m.finish(req, nil, fmt.Errorf("download: %w", err))
	}

	data, err := m.parse(req.Scope, raw)
	if err != nil {
		logger.WithError(err).Error("reporting: erro ao interpretar relatório")
		return m.finish(req, nil, fmt.Errorf("parse: %w", err))
	}

	return m.finish(req, data, nil)
}

// cancelled encerra o job quando o contexto da execução termina. Prazo
// excedido vira TIMED_OUT; qualquer outro cancelamento vira FAILED.
func (m *Manager) cancelled(ctx context.Context, req *domain.ReportRequest) Result {
	cause := ctx.Err()
	to := domain.ReportStateFailed
	if errors.Is(cause, context.DeadlineExceeded) {
		to = domain.ReportStateTimedOut
		cause = fmt.Errorf("%w: %w", domain.ErrReportTimeout, cause)
	}

	_ = req.Fail(to, cause.Error(), m.now())
	log.ForContext(ctx).WithFields(log.Fields{
		"scope": req.Scope.String(),
		"state": string(to),
	}).Warn("reporting: job de relatório cancelado")

	return m.finish(req, nil, cause)
}

func (m *Manager) finish(req *domain.ReportRequest, data *domain.ReportData, err error) Result {
	outcome := domain.ReportOutcome{
		Request:        *req,
		EffectiveState: req.State,
		RecordedAt:     m.now(),
	}

	switch {
	case err != nil:
		outcome.Reason = err.Error()
		if req.State == domain.ReportStateCompleted {
			outcome.EffectiveState = domain.ReportStateFailed
		}
	case data != nil:
		outcome.Rows = len(data.Performance) + len(data.SearchTerms)
	}

	metrics.ReportJobs.WithLabelValues(string(req.Scope.Type), string(outcome.EffectiveState)).Inc()

	return Result{
		Request: *req,
		Outcome: outcome,
		Data:    data,
		Err:     err,
	}
}

// sleep aguarda d ou o fim do contexto
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
