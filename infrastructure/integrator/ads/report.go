package ads

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/adsclient"
	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/utils"
)

const (
	adProductSponsoredProducts = "SPONSORED_PRODUCTS"
	timeUnitDaily              = "DAILY"
	formatGzipJSON             = "GZIP_JSON"
)

type reportDefinition struct {
	reportTypeID string
	groupBy      []string
	columns      []string
}

var metricColumns = []string{"impressions", "clicks", "cost", "sales14d", "purchases14d"}

var reportDefinitions = map[domain.ReportType]reportDefinition{
	domain.ReportTypeCampaigns: {
		reportTypeID: "spCampaigns",
		groupBy:      []string{"campaign"},
		columns:      append([]string{"date", "campaignId", "campaignName", "campaignStatus", "campaignBudgetAmount"}, metricColumns...),
	},
	domain.ReportTypeKeywords: {
		reportTypeID: "spKeywords",
		groupBy:      []string{"campaign", "adGroup", "keyword"},
		columns:      append([]string{"date", "campaignId", "adGroupId", "keywordId", "keyword", "matchType"}, metricColumns...),
	},
	domain.ReportTypeSearchTerms: {
		reportTypeID: "spSearchTerm",
		groupBy:      []string{"campaign", "adGroup", "searchTerm"},
		columns:      append([]string{"date", "campaignId", "adGroupId", "searchTerm"}, metricColumns...),
	},
}

// BuildReportRequest monta o payload v3 para o escopo informado
func BuildReportRequest(scope domain.ReportScope) (adsdomain.ReportRequest, error) {
	definition, ok := reportDefinitions[scope.Type]
	if !ok {
		return adsdomain.ReportRequest{}, domain.NewValidationError("report_type", "unsupported report type %q", scope.Type)
	}
	if scope.EndDate.Before(scope.StartDate) {
		return adsdomain.ReportRequest{}, domain.NewValidationError("report_scope", "end date %s before start date %s",
			scope.EndDate.Format(time.DateOnly), scope.StartDate.Format(time.DateOnly))
	}

	return adsdomain.ReportRequest{
		Name:      fmt.Sprintf("%s-report-%s-%s", definition.reportTypeID, scope.StartDate.Format(time.DateOnly), scope.EndDate.Format(time.DateOnly)),
		StartDate: scope.StartDate.Format(time.DateOnly),
		EndDate:   scope.EndDate.Format(time.DateOnly),
		Configuration: adsdomain.ReportConfiguration{
			AdProduct:    adProductSponsoredProducts,
			GroupBy:      definition.groupBy,
			Columns:      definition.columns,
			ReportTypeID: definition.reportTypeID,
			TimeUnit:     timeUnitDaily,
			Format:       formatGzipJSON,
		},
	}, nil
}

// ParseReport decodifica o payload baixado e converte as linhas para o domínio.
// Linhas sem campanha são descartadas; data inválida invalida o relatório.
func ParseReport(scope domain.ReportScope, raw []byte) (*domain.ReportData, error) {
	rows, err := adsclient.DecodeReport(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", scope.Type, err)
	}

	data := &domain.ReportData{Scope: scope}
	skipped := 0

	for i, row := range rows {
		campaignID := row.Value("campaignId")
		if campaignID == "" {
			skipped++
			continue
		}

		date, err := rowDate(row, scope)
		if err != nil {
			return nil, fmt.Errorf("parse %s row %d: %w", scope.Type, i+1, err)
		}

		switch scope.Type {
		case domain.ReportTypeSearchTerms:
			data.SearchTerms = append(data.SearchTerms, domain.SearchTermRecord{
				Date:       date,
				CampaignID: campaignID,
				AdGroupID:  row.Value("adGroupId"),
				Query:      row.Value("searchTerm", "query"),
				Metrics:    FactoryMetrics(row),
			})
		default:
			data.Performance = append(data.Performance, domain.PerformanceRecord{
				Date:        date,
				CampaignID:  campaignID,
				AdGroupID:   row.Value("adGroupId"),
				KeywordID:   row.Value("keywordId"),
				KeywordText: row.Value("keyword", "keywordText"),
				MatchType:   domain.ParseMatchType(row.Value("matchType")),
				Metrics:     FactoryMetrics(row),
			})
		}
	}

	if skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"scope":   scope.String(),
			"skipped": skipped,
		}).Warn("ads: linhas do relatório sem campaign id foram ignoradas")
	}

	return data, nil
}

// rowDate usa a data da linha; relatórios sem a coluna ficam com o fim do escopo
func rowDate(row adsdomain.ReportRow, scope domain.ReportScope) (time.Time, error) {
	raw := row.Value("date", "reportDate")
	if raw == "" {
		return scope.EndDate, nil
	}

	date, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return *date, nil
}
