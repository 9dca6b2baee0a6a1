package engine

import (
	"math"
	"time"

	"github.com/vfg2006/ppc-automation/internal/cache"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

// epsilon absorve o ruído de ponto flutuante nas comparações de lance
const epsilon = 1e-9

// minBidChange é a menor alteração de lance que gera proposta
const minBidChange = 0.01

// Input reúne tudo o que um motor precisa. Propose não faz I/O nem lê o
// relógio; Now é fornecido pela execução.
type Input struct {
	Campaigns   []domain.PerformanceRecord
	Keywords    []domain.PerformanceRecord
	SearchTerms []domain.SearchTermRecord
	Entities    *cache.EntityCache
	Now         time.Time
}

type Engine interface {
	Kind() domain.EngineKind
	Requires() []domain.ReportType
	Propose(in Input) []domain.MutationProposal
}

// Build instancia os motores habilitados na ordem informada. Um motor
// desconhecido ou com regras inválidas é erro de validação.
func Build(enabled []domain.EngineKind, rules config.Rules) ([]Engine, error) {
	engines := make([]Engine, 0, len(enabled))
	seen := make(map[domain.EngineKind]bool, len(enabled))

	for _, kind := range enabled {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		if err := rules.ValidateFor(kind); err != nil {
			return nil, err
		}

		var e Engine
		switch kind {
		case domain.EngineBidOptimization:
			e = NewBidOptimizer(rules.BidOptimization)
		case domain.EngineDayparting:
			d, err := NewDaypartingScheduler(rules.Dayparting, rules.BidOptimization)
			if err != nil {
				return nil, err
			}
			e = d
		case domain.EngineCampaignManagement:
			e = NewCampaignStateManager(rules.CampaignManagement)
		case domain.EngineKeywordDiscovery:
			e = NewKeywordDiscovery(rules.KeywordDiscovery, rules.BidOptimization)
		case domain.EngineNegativeKeywords:
			e = NewNegativeKeywordFinder(rules.NegativeKeywords)
		default:
			return nil, domain.NewValidationError("run_features", "unknown feature %q", kind)
		}
		engines = append(engines, e)
	}

	return engines, nil
}

// ParseKinds converte a lista de features da configuração
func ParseKinds(features []string) ([]domain.EngineKind, error) {
	kinds := make([]domain.EngineKind, 0, len(features))
	for _, f := range features {
		kind, ok := domain.ParseEngineKind(f)
		if !ok {
			return nil, domain.NewValidationError("run_features", "unknown feature %q", f)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func formatPercent(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return domain.FormatBid(v*100) + "%"
}
