package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
)

//go:generate mockgen -source=executor.go -destination=mocks/mock_mutator.go -package=mocks

// Mutator aplica as alterações na plataforma de anúncios
type Mutator interface {
	UpdateKeywordBid(ctx context.Context, keywordID string, bid float64) error
	UpdateCampaignState(ctx context.Context, campaignID string, state domain.CampaignState) error
	CreateKeyword(ctx context.Context, keyword domain.Keyword) (string, error)
	CreateNegativeKeyword(ctx context.Context, negative domain.NegativeKeyword) (string, error)
}

// Recorder grava as entradas de auditoria
type Recorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) domain.AuditEntry
}

type Options struct {
	DryRun      bool
	Concurrency int
}

// EngineSummary conta os resultados das propostas de um motor
type EngineSummary struct {
	Proposed   int `json:"proposed"`
	Applied    int `json:"applied"`
	DryRun     int `json:"dry_run"`
	Failed     int `json:"failed"`
	Superseded int `json:"superseded"`
	Cancelled  int `json:"cancelled"`
}

type Summary struct {
	Engines     map[domain.EngineKind]*EngineSummary `json:"engines"`
	AuthErrors  int                                  `json:"auth_errors"`
	FatalErrors int                                  `json:"fatal_errors"`
}

func (s *Summary) engine(kind domain.EngineKind) *EngineSummary {
	es, ok := s.Engines[kind]
	if !ok {
		es = &EngineSummary{}
		s.Engines[kind] = es
	}
	return es
}

type Executor struct {
	mutator  Mutator
	recorder Recorder
	opts     Options
}

func New(mutator Mutator, recorder Recorder, opts Options) *Executor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Executor{mutator: mutator, recorder: recorder, opts: opts}
}

// Resolve mantém a última proposta de cada entidade. As demais são devolvidas
// em superseded, na ordem original.
func Resolve(proposals []domain.MutationProposal) (winners, superseded []domain.MutationProposal) {
	last := make(map[string]int, len(proposals))
	for i, p := range proposals {
		last[p.Key()] = i
	}

	for i, p := range proposals {
		if last[p.Key()] == i {
			winners = append(winners, p)
		} else {
			superseded = append(superseded, p)
		}
	}
	return winners, superseded
}

// Execute aplica as propostas e registra uma entrada de auditoria para cada
// uma. Falhas individuais ficam na auditoria e o lote continua, exceto erro de
// autenticação: o primeiro ErrAuth cancela as mutações restantes, que são
// auditadas como cancelled, e é devolvido.
func (e *Executor) Execute(ctx context.Context, proposals []domain.MutationProposal) (Summary, error) {
	logger := log.ForContext(ctx)
	summary := Summary{Engines: make(map[domain.EngineKind]*EngineSummary)}

	for _, p := range proposals {
		summary.engine(p.Engine).Proposed++
	}

	winners, superseded := Resolve(proposals)
	for _, p := range superseded {
		e.recorder.Record(ctx, domain.AuditEntry{
			Proposal: p,
			DryRun:   e.opts.DryRun,
			Outcome:  domain.OutcomeSuperseded,
		})
		summary.engine(p.Engine).Superseded++
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		authErr error
		g       errgroup.Group
	)
	g.SetLimit(e.opts.Concurrency)

	for _, p := range winners {
		p := p
		g.Go(func() error {
			entry, err := e.apply(execCtx, p)
			// a auditoria não pode ser perdida por causa do cancelamento
			e.recorder.Record(context.WithoutCancel(execCtx), entry)

			mu.Lock()
			defer mu.Unlock()

			es := summary.engine(p.Engine)
			switch entry.Outcome {
			case domain.OutcomeApplied:
				es.Applied++
			case domain.OutcomeDryRun:
				es.DryRun++
			case domain.OutcomeCancelled:
				es.Cancelled++
			case domain.OutcomeFailed:
				es.Failed++
				if errors.Is(err, domain.ErrAuth) {
					summary.AuthErrors++
					if authErr == nil {
						authErr = err
						logger.WithError(err).Error("executor: falha de autenticação, cancelando as mutações restantes")
						cancel()
					}
				} else if errors.Is(err, domain.ErrFatalAPI) {
					summary.FatalErrors++
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for kind, es := range summary.Engines {
		logger.WithFields(log.Fields{
			"engine":     kind,
			"proposed":   es.Proposed,
			"applied":    es.Applied,
			"dry_run":    es.DryRun,
			"failed":     es.Failed,
			"superseded": es.Superseded,
			"cancelled":  es.Cancelled,
		}).Info("executor: mutações do motor finalizadas")
	}

	return summary, authErr
}

func (e *Executor) apply(ctx context.Context, p domain.MutationProposal) (domain.AuditEntry, error) {
	entry := domain.AuditEntry{Proposal: p, DryRun: e.opts.DryRun}

	if ctx.Err() != nil {
		entry.Outcome = domain.OutcomeCancelled
		entry.Error = ctx.Err().Error()
		return entry, nil
	}

	if e.opts.DryRun {
		entry.Outcome = domain.OutcomeDryRun
		return entry, nil
	}

	if err := e.mutate(ctx, p); err != nil {
		// requisição interrompida pelo cancelamento do lote
		if ctx.Err() != nil && !errors.Is(err, domain.ErrAuth) {
			entry.Outcome = domain.OutcomeCancelled
			entry.Error = ctx.Err().Error()
			return entry, nil
		}

		log.ForContext(ctx).WithFields(log.Fields{
			"engine":    p.Engine,
			"entity":    p.Entity.Type,
			"entity_id": p.Entity.ID,
			"field":     p.Field,
		}).WithError(err).Warn("executor: falha ao aplicar mutação")

		entry.Outcome = domain.OutcomeFailed
		entry.Error = err.Error()
		return entry, err
	}

	entry.Applied = true
	entry.Outcome = domain.OutcomeApplied
	return entry, nil
}

func (e *Executor) mutate(ctx context.Context, p domain.MutationProposal) error {
	switch {
	case p.Entity.Type == domain.EntityKeyword && p.Field == domain.FieldBid:
		return e.mutator.UpdateKeywordBid(ctx, p.Entity.ID, p.Bid)

	case p.Entity.Type == domain.EntityCampaign && p.Field == domain.FieldState:
		return e.mutator.UpdateCampaignState(ctx, p.Entity.ID, p.State)

	case p.Entity.Type == domain.EntityKeyword && p.Field == domain.FieldCreate:
		_, err := e.mutator.CreateKeyword(ctx, domain.Keyword{
			AdGroupID:  p.Entity.AdGroupID,
			CampaignID: p.Entity.CampaignID,
			Text:       p.KeywordText,
			MatchType:  p.MatchType,
			State:      domain.CampaignStateEnabled,
			Bid:        p.Bid,
		})
		return err

	case p.Entity.Type == domain.EntityNegativeKeyword && p.Field == domain.FieldCreate:
		_, err := e.mutator.CreateNegativeKeyword(ctx, domain.NegativeKeyword{
			CampaignID: p.Entity.CampaignID,
			AdGroupID:  p.Entity.AdGroupID,
			Text:       p.KeywordText,
			MatchType:  p.MatchType,
			State:      domain.CampaignStateEnabled,
		})
		return err
	}

	return fmt.Errorf("%w: unsupported mutation %s.%s", domain.ErrMutation, p.Entity.Type, p.Field)
}
