package engine

import "github.com/vfg2006/ppc-automation/internal/domain"

// aggregate soma métricas por chave preservando a ordem da primeira ocorrência
type aggregate[K comparable, V any] struct {
	order  []K
	values map[K]*V
}

func newAggregate[K comparable, V any]() *aggregate[K, V] {
	return &aggregate[K, V]{values: make(map[K]*V)}
}

func (a *aggregate[K, V]) get(key K, init func() V) *V {
	if v, ok := a.values[key]; ok {
		return v
	}
	v := init()
	a.values[key] = &v
	a.order = append(a.order, key)
	return &v
}

func (a *aggregate[K, V]) each(fn func(key K, value *V)) {
	for _, k := range a.order {
		fn(k, a.values[k])
	}
}

type keywordTotals struct {
	record  domain.PerformanceRecord
	metrics domain.Metrics
}

func aggregateKeywords(records []domain.PerformanceRecord) *aggregate[string, keywordTotals] {
	agg := newAggregate[string, keywordTotals]()
	for _, r := range records {
		if r.KeywordID == "" {
			continue
		}
		t := agg.get(r.KeywordID, func() keywordTotals { return keywordTotals{record: r} })
		t.metrics = t.metrics.Add(r.Metrics)
	}
	return agg
}

func aggregateCampaigns(records []domain.PerformanceRecord) *aggregate[string, domain.Metrics] {
	agg := newAggregate[string, domain.Metrics]()
	for _, r := range records {
		if r.CampaignID == "" {
			continue
		}
		m := agg.get(r.CampaignID, func() domain.Metrics { return domain.Metrics{} })
		*m = m.Add(r.Metrics)
	}
	return agg
}

type termKey struct {
	campaignID string
	adGroupID  string
	query      string
}

// aggregateSearchTerms agrupa por campanha, ad group (quando byAdGroup) e termo normalizado
func aggregateSearchTerms(records []domain.SearchTermRecord, byAdGroup bool) *aggregate[termKey, domain.Metrics] {
	agg := newAggregate[termKey, domain.Metrics]()
	for _, r := range records {
		query := domain.NormalizeTerm(r.Query)
		if query == "" || r.CampaignID == "" {
			continue
		}
		key := termKey{campaignID: r.CampaignID, query: query}
		if byAdGroup {
			if r.AdGroupID == "" {
				continue
			}
			key.adGroupID = r.AdGroupID
		}
		m := agg.get(key, func() domain.Metrics { return domain.Metrics{} })
		*m = m.Add(r.Metrics)
	}
	return agg
}
