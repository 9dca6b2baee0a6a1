package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vfg2006/ppc-automation/internal/audit"
	"github.com/vfg2006/ppc-automation/internal/cache"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/internal/engine"
	"github.com/vfg2006/ppc-automation/internal/executor"
	"github.com/vfg2006/ppc-automation/internal/reporting"
	"github.com/vfg2006/ppc-automation/internal/warehouse"
	"github.com/vfg2006/ppc-automation/pkg/log"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
	"github.com/vfg2006/ppc-automation/pkg/utils"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_platform.go -package=mocks

var ErrRunInProgress = errors.New("automation run already in progress")

const reasonMissingReport = "missing report data"

// Platform reúne as operações da plataforma de anúncios usadas numa execução
type Platform interface {
	Authenticate(ctx context.Context) error
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]domain.AdGroup, error)
	ListKeywords(ctx context.Context, adGroupID string) ([]domain.Keyword, error)
	ListNegativeKeywords(ctx context.Context, campaignID string) ([]domain.NegativeKeyword, error)
	RequestReport(ctx context.Context, scope domain.ReportScope) (string, error)
	PollReport(ctx context.Context, externalID string) (domain.ReportStatus, error)
	DownloadReport(ctx context.Context, status domain.ReportStatus) ([]byte, error)
	UpdateKeywordBid(ctx context.Context, keywordID string, bid float64) error
	UpdateCampaignState(ctx context.Context, campaignID string, state domain.CampaignState) error
	CreateKeyword(ctx context.Context, keyword domain.Keyword) (string, error)
	CreateNegativeKeyword(ctx context.Context, negative domain.NegativeKeyword) (string, error)
}

// PlatformFactory cria o cliente de uma execução: token, limiter e retry não
// são compartilhados entre execuções
type PlatformFactory func(ctx context.Context) (Platform, error)

// RunContext é o estado que pertence a uma única execução
type RunContext struct {
	ID        string
	StartedAt time.Time
	DryRun    bool
	Platform  Platform
	Entities  *cache.EntityCache
	Audit     *audit.Log
}

type Dependencies struct {
	NewPlatform PlatformFactory
	Parse       reporting.ParseFunc
	Loader      warehouse.Loader
	AuditStore  audit.EntryStore
}

type Service struct {
	cfg  *config.Config
	deps Dependencies
	now  func() time.Time

	runMutex   sync.Mutex
	runRunning bool
	last       *Summary
}

func NewService(cfg *config.Config, deps Dependencies) *Service {
	return &Service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// Running indica se há uma execução em andamento
func (s *Service) Running() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	return s.runRunning
}

// LastSummary devolve o resumo da última execução concluída
func (s *Service) LastSummary() *Summary {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	return s.last
}

// Run executa uma automação completa. Só erros de validação, autenticação
// (inclusive durante as mutações) ou da listagem de campanhas interrompem a
// execução; o resumo é devolvido
// sempre que a execução chega a começar.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		return nil, ErrRunInProgress
	}
	s.runRunning = true
	s.runMutex.Unlock()

	if s.cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Run.Timeout)
		defer cancel()
	}

	ctx, runID := log.WithRunID(ctx)
	summary := &Summary{
		RunID:     runID,
		StartedAt: s.now().UTC(),
		DryRun:    s.cfg.Run.DryRun,
	}

	err := s.run(ctx, summary)
	if err != nil {
		summary.Error = err.Error()
	}
	summary.FinishedAt = s.now().UTC()

	result := "success"
	if !summary.Succeeded() {
		result = "failure"
	}
	metrics.RunDuration.WithLabelValues(result).Observe(summary.Duration().Seconds())

	log.ForContext(ctx).WithFields(log.Fields{
		"result":       result,
		"dry_run":      summary.DryRun,
		"duration":     summary.Duration().String(),
		"auth_errors":  summary.AuthErrors,
		"fatal_errors": summary.FatalErrors,
		"reports":      len(summary.Reports),
	}).Info("automation: execução finalizada")

	s.runMutex.Lock()
	s.runRunning = false
	s.last = summary
	s.runMutex.Unlock()

	return summary, err
}

func (s *Service) run(ctx context.Context, summary *Summary) error {
	logger := log.ForContext(ctx)

	kinds, err := engine.ParseKinds(s.cfg.Run.Features)
	if err != nil {
		return err
	}
	engines, err := engine.Build(kinds, s.cfg.Rules())
	if err != nil {
		logger.WithError(err).Error("automation: configuração de motor inválida")
		return err
	}
	for _, e := range engines {
		summary.Features = append(summary.Features, FeatureResult{Engine: e.Kind()})
	}

	platform, err := s.deps.NewPlatform(ctx)
	if err != nil {
		return fmt.Errorf("create platform client: %w", err)
	}

	rc := &RunContext{
		ID:        summary.RunID,
		StartedAt: summary.StartedAt,
		DryRun:    summary.DryRun,
		Platform:  platform,
		Audit:     audit.NewLog(summary.RunID, s.sinks(ctx, summary)...),
	}
	defer func() {
		if err := rc.Audit.Close(); err != nil {
			logger.WithError(err).Warn("automation: erro ao fechar o log de auditoria")
		}
		summary.Reports = rc.Audit.Reports()
	}()

	logger.WithFields(log.Fields{
		"features": kinds,
		"dry_run":  rc.DryRun,
	}).Info("automation: execução iniciada")

	if err := platform.Authenticate(ctx); err != nil {
		countAPIError(summary, err)
		logger.WithError(err).Error("automation: falha na autenticação")
		return err
	}

	rc.Entities, err = cache.Build(ctx, platform, cache.Options{Concurrency: s.cfg.Run.CacheConcurrency})
	if err != nil {
		countAPIError(summary, err)
		logger.WithError(err).Error("automation: erro ao montar o snapshot de entidades")
		return err
	}

	data := s.fetchReports(ctx, rc, summary, engines)

	in := engine.Input{
		Entities: rc.Entities,
		Now:      s.now(),
	}
	if d := data[domain.ReportTypeCampaigns]; d != nil {
		in.Campaigns = d.Performance
	}
	if d := data[domain.ReportTypeKeywords]; d != nil {
		in.Keywords = d.Performance
	}
	if d := data[domain.ReportTypeSearchTerms]; d != nil {
		in.SearchTerms = d.SearchTerms
	}

	var proposals []domain.MutationProposal
	for _, e := range engines {
		feature := summary.feature(e.Kind())

		if missing := missingReports(e, data); len(missing) > 0 {
			feature.Reason = reasonMissingReport
			logger.WithFields(log.Fields{
				"engine":  e.Kind(),
				"missing": missing,
			}).Warn("automation: motor ignorado por falta de relatório")
			continue
		}

		proposed := e.Propose(in)
		feature.Succeeded = true
		feature.Proposals = len(proposed)
		proposals = append(proposals, proposed...)
	}

	exec := executor.New(rc.Platform, rc.Audit, executor.Options{
		DryRun:      rc.DryRun,
		Concurrency: s.cfg.Run.MutationConcurrency,
	})
	result, err := exec.Execute(ctx, proposals)

	summary.AuthErrors += result.AuthErrors
	summary.FatalErrors += result.FatalErrors
	for kind, es := range result.Engines {
		if feature := summary.feature(kind); feature != nil {
			feature.Mutations = *es
		}
	}
	if err != nil {
		logger.WithError(err).Error("automation: execução interrompida por falha de autenticação")
		return err
	}

	if s.cfg.Warehouse.Enabled && s.deps.Loader != nil {
		export := warehouse.NewExporter(s.deps.Loader).Export(ctx, warehouse.Input{
			Entities:  rc.Entities,
			Campaigns: in.Campaigns,
			Keywords:  in.Keywords,
		})
		summary.Export = &export
	}

	return nil
}

// fetchReports solicita a união dos relatórios exigidos pelos motores (mais os
// da exportação) e registra o desfecho de cada um
func (s *Service) fetchReports(ctx context.Context, rc *RunContext, summary *Summary, engines []engine.Engine) map[domain.ReportType]*domain.ReportData {
	start, end := utils.LookbackRange(s.now(), s.cfg.Run.LookbackDays)

	var types []domain.ReportType
	seen := make(map[domain.ReportType]bool)
	add := func(t domain.ReportType) {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	for _, e := range engines {
		for _, t := range e.Requires() {
			add(t)
		}
	}
	if s.cfg.Warehouse.Enabled && s.deps.Loader != nil {
		add(domain.ReportTypeCampaigns)
		add(domain.ReportTypeKeywords)
	}

	data := make(map[domain.ReportType]*domain.ReportData, len(types))
	if len(types) == 0 {
		return data
	}

	scopes := make([]domain.ReportScope, 0, len(types))
	for _, t := range types {
		scopes = append(scopes, domain.ReportScope{Type: t, StartDate: start, EndDate: end})
	}

	manager := reporting.NewManager(rc.Platform, s.deps.Parse, reporting.OptionsFromConfig(s.cfg.Reports))
	for _, result := range manager.Run(ctx, scopes) {
		rc.Audit.RecordReport(ctx, result.Outcome)
		if result.Err != nil {
			countAPIError(summary, result.Err)
		}
		if result.Completed() {
			data[result.Request.Scope.Type] = result.Data
		}
	}

	return data
}

func (s *Service) sinks(ctx context.Context, summary *Summary) []audit.Sink {
	sinks := []audit.Sink{audit.LogSink{}}

	if dir := s.cfg.Audit.OutputDir; dir != "" {
		csvSink, err := audit.NewCSVSink(dir, summary.RunID, summary.StartedAt)
		if err != nil {
			log.ForContext(ctx).WithError(err).Warn("automation: auditoria em csv desativada")
		} else {
			sinks = append(sinks, csvSink)
			summary.AuditFile = csvSink.Path()
		}
	}

	if s.cfg.Audit.Persist && s.deps.AuditStore != nil {
		sinks = append(sinks, audit.NewStoreSink(s.deps.AuditStore))
	}

	return sinks
}

func missingReports(e engine.Engine, data map[domain.ReportType]*domain.ReportData) []domain.ReportType {
	var missing []domain.ReportType
	for _, t := range e.Requires() {
		if data[t] == nil {
			missing = append(missing, t)
		}
	}
	return missing
}

func countAPIError(summary *Summary, err error) {
	switch {
	case errors.Is(err, domain.ErrAuth):
		summary.AuthErrors++
	case errors.Is(err, domain.ErrFatalAPI):
		summary.FatalErrors++
	}
}
