package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/utils"
)

// DaypartingScheduler aplica o multiplicador da faixa horária corrente sobre
// o lance base de cada keyword ativa
type DaypartingScheduler struct {
	windows []config.DaypartWindow
	loc     *time.Location
	bounds  config.BidOptimization
}

func NewDaypartingScheduler(rules config.Dayparting, bounds config.BidOptimization) (*DaypartingScheduler, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	loc, err := rules.Location()
	if err != nil {
		return nil, err
	}
	return &DaypartingScheduler{windows: rules.Windows, loc: loc, bounds: bounds}, nil
}

func (e *DaypartingScheduler) Kind() domain.EngineKind {
	return domain.EngineDayparting
}

// Requires é vazio: o motor usa apenas o snapshot de entidades
func (e *DaypartingScheduler) Requires() []domain.ReportType {
	return nil
}

// Multiplier devolve o multiplicador vigente em now, 1.0 fora de qualquer faixa
func (e *DaypartingScheduler) Multiplier(now time.Time) float64 {
	local := now.In(e.loc)
	for _, w := range e.windows {
		if w.Covers(local.Weekday(), local.Hour()) {
			return w.Multiplier
		}
	}
	return 1.0
}

func (e *DaypartingScheduler) Propose(in Input) []domain.MutationProposal {
	multiplier := e.Multiplier(in.Now)
	local := in.Now.In(e.loc)

	var proposals []domain.MutationProposal
	for _, keyword := range in.Entities.Keywords() {
		if keyword.State != domain.CampaignStateEnabled {
			continue
		}
		campaign, ok := in.Entities.Campaign(keyword.CampaignID)
		if !ok || !campaign.IsEnabled() {
			continue
		}

		// o lance próprio da keyword é a base; o default do ad group só vale
		// para keywords sem lance
		base := keyword.Bid
		if base <= 0 {
			if adGroup, ok := in.Entities.AdGroup(keyword.AdGroupID); ok {
				base = adGroup.DefaultBid
			}
		}
		if base <= 0 {
			continue
		}

		target := utils.RoundWithTwoDecimalPlace(clamp(base*multiplier, e.bounds.MinBid, e.bounds.MaxBid))
		if math.Abs(target-keyword.Bid) < minBidChange-epsilon {
			continue
		}

		proposals = append(proposals, domain.MutationProposal{
			Engine: domain.EngineDayparting,
			Entity: domain.EntityRef{
				Type:       domain.EntityKeyword,
				ID:         keyword.ID,
				CampaignID: keyword.CampaignID,
				AdGroupID:  keyword.AdGroupID,
			},
			Field:       domain.FieldBid,
			OldValue:    domain.FormatBid(keyword.Bid),
			NewValue:    domain.FormatBid(target),
			Reason:      domain.ReasonDaypartSchedule,
			Detail:      fmt.Sprintf("%s %02dh multiplier %.2f over base %s", local.Weekday(), local.Hour(), multiplier, domain.FormatBid(base)),
			Bid:         target,
			KeywordText: keyword.Text,
			MatchType:   keyword.MatchType,
		})
	}

	return proposals
}
