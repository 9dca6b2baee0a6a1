package engine

import (
	"fmt"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

// NegativeKeywordFinder negativa na campanha os search terms que gastam sem
// retorno suficiente
type NegativeKeywordFinder struct {
	rules     config.NegativeKeywords
	matchType domain.MatchType
}

func NewNegativeKeywordFinder(rules config.NegativeKeywords) *NegativeKeywordFinder {
	matchType := domain.ParseMatchType(rules.MatchType)
	if !matchType.IsNegative() {
		matchType = domain.MatchTypeNegativePhrase
	}
	return &NegativeKeywordFinder{rules: rules, matchType: matchType}
}

func (e *NegativeKeywordFinder) Kind() domain.EngineKind {
	return domain.EngineNegativeKeywords
}

func (e *NegativeKeywordFinder) Requires() []domain.ReportType {
	return []domain.ReportType{domain.ReportTypeSearchTerms}
}

func (e *NegativeKeywordFinder) Propose(in Input) []domain.MutationProposal {
	var proposals []domain.MutationProposal

	aggregateSearchTerms(in.SearchTerms, false).each(func(key termKey, m *domain.Metrics) {
		if m.Cost < e.rules.MinSpend {
			return
		}
		acos := m.ACOS()
		if acos <= e.rules.MaxACOS {
			return
		}

		campaign, ok := in.Entities.Campaign(key.campaignID)
		if !ok || campaign.State == domain.CampaignStateArchived {
			return
		}
		if in.Entities.IsNegated(key.campaignID, key.query) {
			return
		}

		proposals = append(proposals, domain.MutationProposal{
			Engine:      domain.EngineNegativeKeywords,
			Entity:      domain.EntityRef{Type: domain.EntityNegativeKeyword, CampaignID: key.campaignID},
			Field:       domain.FieldCreate,
			NewValue:    fmt.Sprintf("%s [%s]", key.query, e.matchType),
			Reason:      domain.ReasonPoorPerformingTerm,
			Detail:      fmt.Sprintf("Poor performer: $%.2f spend, ACOS %s", m.Cost, formatPercent(acos)),
			KeywordText: key.query,
			MatchType:   e.matchType,
		})
	})

	return proposals
}
