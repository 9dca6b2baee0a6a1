package warehouse

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ppc-automation/internal/cache"
	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
	"github.com/vfg2006/ppc-automation/pkg/metrics"
)

//go:generate mockgen -source=exporter.go -destination=mocks/mock_loader.go -package=mocks

// Loader grava as linhas de uma tabela e devolve quantas foram carregadas
type Loader interface {
	Load(ctx context.Context, table domain.WarehouseTable, rows []domain.WarehouseRow) (int, error)
}

var (
	CampaignBudgets = domain.WarehouseTable{
		Name:    "campaign_budgets",
		Columns: []string{"campaign_id", "campaign_name", "daily_budget", "budget_type", "state", "targeting_type", "fetch_timestamp"},
	}

	CampaignPerformance = domain.WarehouseTable{
		Name: "campaign_performance",
		Columns: []string{
			"report_date", "campaign_id", "impressions", "clicks", "cost",
			"attributed_sales_14d", "attributed_conversions_14d", "fetch_timestamp",
		},
	}

	KeywordPerformance = domain.WarehouseTable{
		Name: "keyword_performance",
		Columns: []string{
			"report_date", "campaign_id", "ad_group_id", "keyword_id", "keyword_text", "match_type",
			"impressions", "clicks", "cost", "attributed_sales_14d", "attributed_conversions_14d", "fetch_timestamp",
		},
	}
)

// Input reúne o snapshot e os relatórios concluídos de uma execução
type Input struct {
	Entities  *cache.EntityCache
	Campaigns []domain.PerformanceRecord
	Keywords  []domain.PerformanceRecord
}

type Exporter struct {
	loader Loader
	now    func() time.Time
}

func NewExporter(loader Loader) *Exporter {
	return &Exporter{loader: loader, now: time.Now}
}

// Export carrega as três tabelas em paralelo e de forma independente: a falha
// de uma não impede as outras. Tables segue a ordem fixa das tabelas.
func (e *Exporter) Export(ctx context.Context, in Input) domain.ExportResult {
	logger := log.ForContext(ctx)
	fetchedAt := e.now().UTC().Truncate(time.Second)

	result := domain.ExportResult{FetchTimestamp: fetchedAt}

	loads := []struct {
		table domain.WarehouseTable
		rows  []domain.WarehouseRow
	}{
		{CampaignBudgets, CampaignBudgetRows(in.Entities, fetchedAt)},
		{CampaignPerformance, CampaignPerformanceRows(in.Campaigns, fetchedAt)},
		{KeywordPerformance, KeywordPerformanceRows(in.Keywords, in.Entities, fetchedAt)},
	}

	result.Tables = make([]domain.TableLoad, len(loads))

	var g errgroup.Group
	for i, l := range loads {
		i, l := i, l
		g.Go(func() error {
			load := domain.TableLoad{Table: l.table.Name}

			n, err := e.loader.Load(ctx, l.table, l.rows)
			if err != nil {
				load.Error = err.Error()
				logger.WithField("table", l.table.Name).WithError(err).Error("warehouse: falha ao carregar tabela")
			} else {
				load.Rows = n
				metrics.WarehouseRows.WithLabelValues(l.table.Name).Add(float64(n))
				logger.WithFields(log.Fields{"table": l.table.Name, "rows": n}).Info("warehouse: tabela carregada")
			}

			result.Tables[i] = load
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func CampaignBudgetRows(entities *cache.EntityCache, fetchedAt time.Time) []domain.WarehouseRow {
	if entities == nil {
		return nil
	}

	campaigns := entities.Campaigns()
	rows := make([]domain.WarehouseRow, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, domain.WarehouseRow{
			c.ID,
			c.Name,
			c.DailyBudget,
			"daily",
			string(c.State),
			c.TargetingType,
			fetchedAt,
		})
	}
	return rows
}

func CampaignPerformanceRows(records []domain.PerformanceRecord, fetchedAt time.Time) []domain.WarehouseRow {
	rows := make([]domain.WarehouseRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, domain.WarehouseRow{
			r.Date.Format(time.DateOnly),
			r.CampaignID,
			r.Impressions,
			r.Clicks,
			r.Cost,
			r.Sales,
			r.Conversions,
			fetchedAt,
		})
	}
	return rows
}

// KeywordPerformanceRows usa texto e match type do relatório, com o snapshot
// como fallback
func KeywordPerformanceRows(records []domain.PerformanceRecord, entities *cache.EntityCache, fetchedAt time.Time) []domain.WarehouseRow {
	rows := make([]domain.WarehouseRow, 0, len(records))
	for _, r := range records {
		text, matchType, adGroupID := r.KeywordText, r.MatchType, r.AdGroupID
		if entities != nil {
			if kw, ok := entities.Keyword(r.KeywordID); ok {
				if text == "" {
					text = kw.Text
				}
				if matchType == "" {
					matchType = kw.MatchType
				}
				if adGroupID == "" {
					adGroupID = kw.AdGroupID
				}
			}
		}

		rows = append(rows, domain.WarehouseRow{
			r.Date.Format(time.DateOnly),
			r.CampaignID,
			adGroupID,
			r.KeywordID,
			text,
			string(matchType),
			r.Impressions,
			r.Clicks,
			r.Cost,
			r.Sales,
			r.Conversions,
			fetchedAt,
		})
	}
	return rows
}
