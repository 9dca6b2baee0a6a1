package engine

import (
	"fmt"

	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

// CampaignStateManager pausa campanhas acima do ACOS limite e reativa as que
// voltaram para baixo dele
type CampaignStateManager struct {
	rules config.CampaignManagement
}

func NewCampaignStateManager(rules config.CampaignManagement) *CampaignStateManager {
	return &CampaignStateManager{rules: rules}
}

func (e *CampaignStateManager) Kind() domain.EngineKind {
	return domain.EngineCampaignManagement
}

func (e *CampaignStateManager) Requires() []domain.ReportType {
	return []domain.ReportType{domain.ReportTypeCampaigns}
}

func (e *CampaignStateManager) Propose(in Input) []domain.MutationProposal {
	var proposals []domain.MutationProposal

	aggregateCampaigns(in.Campaigns).each(func(campaignID string, m *domain.Metrics) {
		campaign, ok := in.Entities.Campaign(campaignID)
		if !ok || m.Cost < e.rules.MinSpend {
			return
		}

		acos := m.ACOS()
		var (
			next   domain.CampaignState
			reason domain.ReasonCode
		)

		switch {
		case campaign.State == domain.CampaignStateEnabled && acos > e.rules.ACOSThreshold:
			next, reason = domain.CampaignStatePaused, domain.ReasonACOSAboveThreshold
		case campaign.State == domain.CampaignStatePaused && m.Sales > 0 && acos < e.rules.ACOSThreshold:
			next, reason = domain.CampaignStateEnabled, domain.ReasonACOSRecovered
		default:
			return
		}

		proposals = append(proposals, domain.MutationProposal{
			Engine:   domain.EngineCampaignManagement,
			Entity:   domain.EntityRef{Type: domain.EntityCampaign, ID: campaign.ID, CampaignID: campaign.ID},
			Field:    domain.FieldState,
			OldValue: string(campaign.State),
			NewValue: string(next),
			Reason:   reason,
			Detail:   fmt.Sprintf("%s: $%.2f spend, ACOS %s (threshold %s)", campaign.Name, m.Cost, formatPercent(acos), formatPercent(e.rules.ACOSThreshold)),
			State:    next,
		})
	})

	return proposals
}
