package engine

import (
	"fmt"
	"math"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

// BidOptimizer ajusta lances de keywords em direção ao ACOS alvo, respeitando
// os limites percentuais por execução e os limites absolutos de lance
type BidOptimizer struct {
	rules config.BidOptimization
}

func NewBidOptimizer(rules config.BidOptimization) *BidOptimizer {
	return &BidOptimizer{rules: rules}
}

func (e *BidOptimizer) Kind() domain.EngineKind {
	return domain.EngineBidOptimization
}

func (e *BidOptimizer) Requires() []domain.ReportType {
	return []domain.ReportType{domain.ReportTypeKeywords}
}

func (e *BidOptimizer) Propose(in Input) []domain.MutationProposal {
	var proposals []domain.MutationProposal

	aggregateKeywords(in.Keywords).each(func(keywordID string, totals *keywordTotals) {
		keyword, ok := in.Entities.Keyword(keywordID)
		if !ok || keyword.State == domain.CampaignStateArchived {
			return
		}
		campaign, ok := in.Entities.Campaign(keyword.CampaignID)
		if !ok || !campaign.IsEnabled() {
			return
		}

		m := totals.metrics
		if m.Impressions < e.rules.MinImpressions {
			return
		}

		bid := keyword.Bid
		if bid <= 0 {
			if adGroup, ok := in.Entities.AdGroup(keyword.AdGroupID); ok {
				bid = adGroup.DefaultBid
			}
		}
		if bid <= 0 {
			return
		}

		newBid, reason, ok := e.target(bid, m)
		if !ok {
			return
		}

		proposals = append(proposals, domain.MutationProposal{
			Engine: domain.EngineBidOptimization,
			Entity: domain.EntityRef{
				Type:       domain.EntityKeyword,
				ID:         keyword.ID,
				CampaignID: keyword.CampaignID,
				AdGroupID:  keyword.AdGroupID,
			},
			Field:       domain.FieldBid,
			OldValue:    domain.FormatBid(bid),
			NewValue:    domain.FormatBid(newBid),
			Reason:      reason,
			Detail:      fmt.Sprintf("acos %s vs target %s, %d clicks, cost %.2f", formatPercent(m.ACOS()), formatPercent(e.rules.TargetACOS), m.Clicks, m.Cost),
			Bid:         newBid,
			KeywordText: keyword.Text,
			MatchType:   keyword.MatchType,
		})
	})

	return proposals
}

// target calcula o novo lance. Reduções param no piso percentual ou no lance
// que levaria ao ACOS alvo, o que for maior; aumentos param no teto percentual
// ou no lance do ACOS alvo, o que for menor.
func (e *BidOptimizer) target(bid float64, m domain.Metrics) (float64, domain.ReasonCode, bool) {
	acos := m.ACOS()
	targetACOS := e.rules.TargetACOS
	floor := bid * (1 - e.rules.MaxDecreasePercent/100)
	ceiling := bid * (1 + e.rules.MaxIncreasePercent/100)

	var (
		newBid float64
		reason domain.ReasonCode
	)

	switch {
	case acos > targetACOS:
		if m.Sales <= 0 {
			newBid, reason = floor, domain.ReasonNoSales
		} else {
			newBid, reason = math.Max(floor, bid*targetACOS/acos), domain.ReasonHighACOS
		}

	case acos < targetACOS && m.Sales > 0 && m.Cost >= e.rules.MinSpend:
		newBid, reason = ceiling, domain.ReasonLowACOS
		if acos > 0 {
			newBid = math.Min(ceiling, bid*targetACOS/acos)
		}

	default:
		return 0, "", false
	}

	newBid = clamp(newBid, e.rules.MinBid, e.rules.MaxBid)
	newBid = roundTowards(newBid, bid)

	if newBid < e.rules.MinBid-epsilon || newBid > e.rules.MaxBid+epsilon {
		return 0, "", false
	}
	if newBid < floor-epsilon || newBid > ceiling+epsilon {
		return 0, "", false
	}
	if math.Abs(newBid-bid) < minBidChange-epsilon {
		return 0, "", false
	}

	return newBid, reason, true
}

// roundTowards arredonda para centavos na direção do lance atual, de modo que
// o arredondamento nunca ultrapasse os limites percentuais
func roundTowards(v, current float64) float64 {
	if v < current {
		return math.Ceil(v*100-epsilon) / 100
	}
	return math.Floor(v*100+epsilon) / 100
}
