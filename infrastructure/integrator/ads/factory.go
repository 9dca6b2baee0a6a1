package ads

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

func FactoryCampaign(c adsdomain.Campaign) domain.Campaign {
	return domain.Campaign{
		ID:            c.CampaignID.String(),
		Name:          c.Name,
		DailyBudget:   c.DailyBudget,
		State:         domain.ParseCampaignState(c.State),
		TargetingType: strings.ToLower(c.TargetingType),
	}
}

func FactoryAdGroup(ag adsdomain.AdGroup) domain.AdGroup {
	return domain.AdGroup{
		ID:         ag.AdGroupID.String(),
		CampaignID: ag.CampaignID.String(),
		Name:       ag.Name,
		State:      domain.ParseCampaignState(ag.State),
		DefaultBid: ag.DefaultBid,
	}
}

func FactoryKeyword(k adsdomain.Keyword) domain.Keyword {
	return domain.Keyword{
		ID:         k.KeywordID.String(),
		AdGroupID:  k.AdGroupID.String(),
		CampaignID: k.CampaignID.String(),
		Text:       k.KeywordText,
		MatchType:  domain.ParseMatchType(k.MatchType),
		State:      domain.ParseCampaignState(k.State),
		Bid:        k.Bid,
	}
}

func FactoryNegativeKeyword(n adsdomain.NegativeKeyword) domain.NegativeKeyword {
	return domain.NegativeKeyword{
		ID:         n.KeywordID.String(),
		CampaignID: n.CampaignID.String(),
		AdGroupID:  n.AdGroupID.String(),
		Text:       n.KeywordText,
		MatchType:  domain.ParseMatchType(n.MatchType),
		State:      domain.ParseCampaignState(n.State),
	}
}

// FactoryPollStatus reduz os status da plataforma a pendente, concluído ou falho
func FactoryPollStatus(raw string) domain.PollStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS", "COMPLETED", "DONE":
		return domain.PollStatusDone
	case "FAILURE", "FAILED", "CANCELLED":
		return domain.PollStatusFailed
	default:
		return domain.PollStatusPending
	}
}

// FactoryMetrics lê as métricas de uma linha aceitando nomes da v3 e legados.
// Valores inválidos viram zero e são registrados em log.
func FactoryMetrics(row adsdomain.ReportRow) domain.Metrics {
	return domain.Metrics{
		Impressions: parseInt(row, "impressions"),
		Clicks:      parseInt(row, "clicks"),
		Cost:        parseFloat(row, "cost", "spend"),
		Sales:       parseFloat(row, "sales14d", "attributedSales14d"),
		Conversions: parseInt(row, "purchases14d", "attributedConversions14d"),
	}
}

func parseFloat(row adsdomain.ReportRow, names ...string) float64 {
	raw := row.Value(names...)
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": names[0],
			"value": raw,
			"error": err.Error(),
		}).Warn("ads: erro ao converter valor do relatório para float")
		return 0
	}
	return value
}

func parseInt(row adsdomain.ReportRow, names ...string) int64 {
	raw := row.Value(names...)
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// alguns relatórios devolvem contadores como "12.0"
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			logrus.WithFields(logrus.Fields{
				"field": names[0],
				"value": raw,
				"error": err.Error(),
			}).Warn("ads: erro ao converter valor do relatório para int")
			return 0
		}
		return int64(f)
	}
	return value
}
