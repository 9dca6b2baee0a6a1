package engine

import (
	"fmt"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/utils"
)

// KeywordDiscovery promove search terms lucrativos a keywords do ad group
type KeywordDiscovery struct {
	rules     config.KeywordDiscovery
	bounds    config.BidOptimization
	matchType domain.MatchType
}

func NewKeywordDiscovery(rules config.KeywordDiscovery, bounds config.BidOptimization) *KeywordDiscovery {
	matchType := domain.ParseMatchType(rules.MatchType)
	if matchType == "" {
		matchType = domain.MatchTypeExact
	}
	return &KeywordDiscovery{rules: rules, bounds: bounds, matchType: matchType}
}

func (e *KeywordDiscovery) Kind() domain.EngineKind {
	return domain.EngineKeywordDiscovery
}

func (e *KeywordDiscovery) Requires() []domain.ReportType {
	return []domain.ReportType{domain.ReportTypeSearchTerms}
}

func (e *KeywordDiscovery) Propose(in Input) []domain.MutationProposal {
	var proposals []domain.MutationProposal
	bid := utils.RoundWithTwoDecimalPlace(clamp(e.rules.InitialBid, e.bounds.MinBid, e.bounds.MaxBid))

	aggregateSearchTerms(in.SearchTerms, true).each(func(key termKey, m *domain.Metrics) {
		if m.Clicks < e.rules.MinClicks || m.Sales <= 0 {
			return
		}
		acos := m.ACOS()
		if acos > e.rules.MaxACOS+epsilon {
			return
		}

		campaign, ok := in.Entities.Campaign(key.campaignID)
		if !ok || !campaign.IsEnabled() {
			return
		}
		if _, ok := in.Entities.AdGroup(key.adGroupID); !ok {
			return
		}
		if in.Entities.HasKeyword(key.adGroupID, key.query, e.matchType) || in.Entities.IsNegated(key.campaignID, key.query) {
			return
		}

		proposals = append(proposals, domain.MutationProposal{
			Engine:      domain.EngineKeywordDiscovery,
			Entity:      domain.EntityRef{Type: domain.EntityKeyword, CampaignID: key.campaignID, AdGroupID: key.adGroupID},
			Field:       domain.FieldCreate,
			NewValue:    fmt.Sprintf("%s [%s] @ %s", key.query, e.matchType, domain.FormatBid(bid)),
			Reason:      domain.ReasonHighPerformingTerm,
			Detail:      fmt.Sprintf("Added from search term: %d clicks, ACOS %s", m.Clicks, formatPercent(acos)),
			Bid:         bid,
			KeywordText: key.query,
			MatchType:   e.matchType,
		})
	})

	return proposals
}
