package engine

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/ppc-automation/internal/cache"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

var day = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func bidRules() config.BidOptimization {
	return config.BidOptimization{
		TargetACOS:         0.30,
		MinImpressions:     100,
		MinSpend:           5,
		MaxIncreasePercent: 20,
		MaxDecreasePercent: 30,
		MinBid:             0.10,
		MaxBid:             5.00,
	}
}

func rules() config.Rules {
	return config.Rules{
		BidOptimization: bidRules(),
		Dayparting: config.Dayparting{
			Timezone:      "America/New_York",
			MinMultiplier: 0.5,
			MaxMultiplier: 2,
			Windows: []config.DaypartWindow{
				{Days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, StartHour: 8, EndHour: 12, Multiplier: 1.2},
			},
		},
		CampaignManagement: config.CampaignManagement{ACOSThreshold: 0.45, MinSpend: 20},
		KeywordDiscovery:   config.KeywordDiscovery{MinClicks: 5, MaxACOS: 0.40, InitialBid: 0.75, MatchType: "exact"},
		NegativeKeywords:   config.NegativeKeywords{MinSpend: 10, MaxACOS: 1.0, MatchType: "negativePhrase"},
	}
}

func kwRecord(keywordID string, m domain.Metrics) domain.PerformanceRecord {
	return domain.PerformanceRecord{Date: day, CampaignID: "c1", AdGroupID: "ag1", KeywordID: keywordID, Metrics: m}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		enabled  []domain.EngineKind
		rules    func() config.Rules
		validate func(t *testing.T, engines []Engine, err error)
	}{
		{
			name:    "mantém a ordem e remove duplicados",
			enabled: []domain.EngineKind{domain.EngineNegativeKeywords, domain.EngineBidOptimization, domain.EngineNegativeKeywords},
			rules:   rules,
			validate: func(t *testing.T, engines []Engine, err error) {
				require.NoError(t, err)
				require.Len(t, engines, 2)
				assert.Equal(t, domain.EngineNegativeKeywords, engines[0].Kind())
				assert.Equal(t, domain.EngineBidOptimization, engines[1].Kind())
			},
		},
		{
			name:    "motor desconhecido",
			enabled: []domain.EngineKind{"budget_pacing"},
			rules:   rules,
			validate: func(t *testing.T, engines []Engine, err error) {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, engines)
			},
		},
		{
			name:    "regras de lance inválidas",
			enabled: []domain.EngineKind{domain.EngineBidOptimization},
			rules: func() config.Rules {
				r := rules()
				r.BidOptimization.MinBid = 6
				return r
			},
			validate: func(t *testing.T, engines []Engine, err error) {
				assert.ErrorIs(t, err, domain.ErrValidation)
			},
		},
		{
			name:    "faixas sobrepostas impedem o dayparting",
			enabled: []domain.EngineKind{domain.EngineDayparting},
			rules: func() config.Rules {
				r := rules()
				r.Dayparting.Windows = append(r.Dayparting.Windows, config.DaypartWindow{
					Days: []time.Weekday{time.Monday}, StartHour: 10, EndHour: 14, Multiplier: 0.8,
				})
				return r
			},
			validate: func(t *testing.T, engines []Engine, err error) {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Nil(t, engines)
			},
		},
		{
			name:    "regras de motores desabilitados não são validadas",
			enabled: []domain.EngineKind{domain.EngineCampaignManagement},
			rules: func() config.Rules {
				r := rules()
				r.Dayparting.Timezone = "Nowhere/Invalid"
				r.KeywordDiscovery.MatchType = "negativeExact"
				return r
			},
			validate: func(t *testing.T, engines []Engine, err error) {
				require.NoError(t, err)
				assert.Len(t, engines, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engines, err := Build(tt.enabled, tt.rules())
			tt.validate(t, engines, err)
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"bid_optimization", "dayparting"})
	require.NoError(t, err)
	assert.Equal(t, []domain.EngineKind{domain.EngineBidOptimization, domain.EngineDayparting}, kinds)

	_, err = ParseKinds([]string{"bid_optimization", "nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBidOptimizer(t *testing.T) {
	entities := cache.FromEntities(
		[]domain.Campaign{
			{ID: "c1", State: domain.CampaignStateEnabled},
			{ID: "c2", State: domain.CampaignStatePaused},
		},
		[]domain.AdGroup{{ID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled, DefaultBid: 0.50}},
		[]domain.Keyword{
			{ID: "k1", AdGroupID: "ag1", CampaignID: "c1", Text: "shoes", State: domain.CampaignStateEnabled, Bid: 1.00},
			{ID: "k2", AdGroupID: "ag2", CampaignID: "c2", Text: "boots", State: domain.CampaignStateEnabled, Bid: 1.00},
			{ID: "k3", AdGroupID: "ag1", CampaignID: "c1", Text: "old", State: domain.CampaignStateArchived, Bid: 1.00},
			{ID: "k4", AdGroupID: "ag1", CampaignID: "c1", Text: "premium", State: domain.CampaignStateEnabled, Bid: 4.50},
			{ID: "k5", AdGroupID: "ag1", CampaignID: "c1", Text: "no bid", State: domain.CampaignStateEnabled},
		},
		nil,
	)

	tests := []struct {
		name     string
		records  []domain.PerformanceRecord
		validate func(t *testing.T, proposals []domain.MutationProposal)
	}{
		{
			name: "acos alto reduz até o piso percentual",
			records: []domain.PerformanceRecord{
				kwRecord("k1", domain.Metrics{Impressions: 600, Clicks: 10, Cost: 10, Sales: 20}),
				kwRecord("k1", domain.Metrics{Impressions: 600, Clicks: 10, Cost: 10, Sales: 20}),
			},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 1)
				p := proposals[0]
				assert.Equal(t, domain.ReasonHighACOS, p.Reason)
				assert.Equal(t, "1.00", p.OldValue)
				assert.Equal(t, "0.70", p.NewValue)
				assert.InDelta(t, 0.70, p.Bid, 1e-9)
				assert.Equal(t, domain.FieldBid, p.Field)
				assert.Equal(t, "k1", p.Entity.ID)
			},
		},
		{
			name:    "sem vendas usa NO_SALES",
			records: []domain.PerformanceRecord{kwRecord("k1", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 1)
				assert.Equal(t, domain.ReasonNoSales, proposals[0].Reason)
				assert.Equal(t, "0.70", proposals[0].NewValue)
				assert.Contains(t, proposals[0].Detail, "inf")
			},
		},
		{
			name:    "acos baixo aumenta até o teto percentual",
			records: []domain.PerformanceRecord{kwRecord("k1", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10, Sales: 100})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 1)
				assert.Equal(t, domain.ReasonLowACOS, proposals[0].Reason)
				assert.Equal(t, "1.20", proposals[0].NewValue)
			},
		},
		{
			name:    "aumento respeita o lance máximo",
			records: []domain.PerformanceRecord{kwRecord("k4", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10, Sales: 100})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 1)
				assert.Equal(t, "5.00", proposals[0].NewValue)
			},
		},
		{
			name:    "gasto abaixo do mínimo não aumenta",
			records: []domain.PerformanceRecord{kwRecord("k1", domain.Metrics{Impressions: 500, Clicks: 2, Cost: 2, Sales: 100})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				assert.Empty(t, proposals)
			},
		},
		{
			name:    "poucas impressões é ignorado",
			records: []domain.PerformanceRecord{kwRecord("k1", domain.Metrics{Impressions: 99, Clicks: 8, Cost: 10})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				assert.Empty(t, proposals)
			},
		},
		{
			name:    "variação menor que um centavo é descartada",
			records: []domain.PerformanceRecord{kwRecord("k1", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 30.1, Sales: 100})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				assert.Empty(t, proposals)
			},
		},
		{
			name: "keywords arquivadas, desconhecidas ou em campanhas pausadas são ignoradas",
			records: []domain.PerformanceRecord{
				kwRecord("k2", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10}),
				kwRecord("k3", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10}),
				kwRecord("k9", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10}),
			},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				assert.Empty(t, proposals)
			},
		},
		{
			name:    "sem lance usa o lance padrão do ad group",
			records: []domain.PerformanceRecord{kwRecord("k5", domain.Metrics{Impressions: 500, Clicks: 8, Cost: 10})},
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 1)
				assert.Equal(t, "0.50", proposals[0].OldValue)
				assert.Equal(t, "0.35", proposals[0].NewValue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposals := NewBidOptimizer(bidRules()).Propose(Input{Keywords: tt.records, Entities: entities, Now: day})
			tt.validate(t, proposals)
		})
	}
}

func TestBidOptimizerRespectsBounds(t *testing.T) {
	r := bidRules()
	rnd := rand.New(rand.NewSource(42))

	keywords := make([]domain.Keyword, 500)
	records := make([]domain.PerformanceRecord, 0, 500)
	for i := range keywords {
		id := fmt.Sprintf("k%d", i)
		keywords[i] = domain.Keyword{
			ID:         id,
			AdGroupID:  "ag1",
			CampaignID: "c1",
			State:      domain.CampaignStateEnabled,
			Bid:        math.Round((0.05+rnd.Float64()*6)*100) / 100,
		}
		m := domain.Metrics{
			Impressions: int64(rnd.Intn(2000)),
			Clicks:      int64(rnd.Intn(50)),
			Cost:        rnd.Float64() * 50,
		}
		if rnd.Intn(4) > 0 {
			m.Sales = rnd.Float64() * 200
		}
		records = append(records, kwRecord(id, m))
	}
	entities := cache.FromEntities([]domain.Campaign{{ID: "c1", State: domain.CampaignStateEnabled}}, nil, keywords, nil)

	proposals := NewBidOptimizer(r).Propose(Input{Keywords: records, Entities: entities, Now: day})
	require.NotEmpty(t, proposals)

	for _, p := range proposals {
		kw, ok := entities.Keyword(p.Entity.ID)
		require.True(t, ok)

		assert.GreaterOrEqual(t, p.Bid, r.MinBid-epsilon, p.Entity.ID)
		assert.LessOrEqual(t, p.Bid, r.MaxBid+epsilon, p.Entity.ID)
		assert.GreaterOrEqual(t, p.Bid, kw.Bid*(1-r.MaxDecreasePercent/100)-epsilon, p.Entity.ID)
		assert.LessOrEqual(t, p.Bid, kw.Bid*(1+r.MaxIncreasePercent/100)+epsilon, p.Entity.ID)
		assert.GreaterOrEqual(t, math.Abs(p.Bid-kw.Bid), minBidChange-epsilon, p.Entity.ID)
	}
}

func TestDaypartingScheduler(t *testing.T) {
	// 2026-10-19 é uma segunda-feira; 14h UTC = 10h em Nova York
	inWindow := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	entities := cache.FromEntities(
		[]domain.Campaign{
			{ID: "c1", State: domain.CampaignStateEnabled},
			{ID: "c2", State: domain.CampaignStatePaused},
		},
		[]domain.AdGroup{
			{ID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled, DefaultBid: 1.00},
			{ID: "ag2", CampaignID: "c1", State: domain.CampaignStateEnabled},
		},
		[]domain.Keyword{
			{ID: "k1", AdGroupID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled, Bid: 1.00},
			{ID: "k2", AdGroupID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled, Bid: 1.20},
			{ID: "k3", AdGroupID: "ag2", CampaignID: "c1", State: domain.CampaignStateEnabled, Bid: 0.50},
			{ID: "k4", AdGroupID: "ag1", CampaignID: "c1", State: domain.CampaignStatePaused, Bid: 1.00},
			{ID: "k5", AdGroupID: "ag9", CampaignID: "c2", State: domain.CampaignStateEnabled, Bid: 1.00},
			{ID: "k6", AdGroupID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled},
			{ID: "k7", AdGroupID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled, Bid: 2.00},
		},
		nil,
	)

	scheduler, err := NewDaypartingScheduler(rules().Dayparting, bidRules())
	require.NoError(t, err)
	assert.Empty(t, scheduler.Requires())

	tests := []struct {
		name     string
		now      time.Time
		validate func(t *testing.T, proposals []domain.MutationProposal)
	}{
		{
			name: "dentro da faixa aplica o multiplicador sobre o lance da keyword",
			now:  inWindow,
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				require.Len(t, proposals, 5)
				got := make(map[string]string, len(proposals))
				for _, p := range proposals {
					got[p.Entity.ID] = p.OldValue + " -> " + p.NewValue
					assert.Equal(t, domain.ReasonDaypartSchedule, p.Reason)
				}
				assert.Equal(t, map[string]string{
					"k1": "1.00 -> 1.20",
					"k2": "1.20 -> 1.44",
					"k3": "0.50 -> 0.60",
					"k6": "0.00 -> 1.20",
					"k7": "2.00 -> 2.40",
				}, got)
			},
		},
		{
			name: "fora da faixa mantém o lance próprio da keyword",
			now:  outOfWindow,
			validate: func(t *testing.T, proposals []domain.MutationProposal) {
				// só a keyword sem lance recebe o default do ad group
				require.Len(t, proposals, 1)
				assert.Equal(t, "k6", proposals[0].Entity.ID)
				assert.Equal(t, "1.00", proposals[0].NewValue)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, scheduler.Propose(Input{Entities: entities, Now: tt.now}))
		})
	}

	assert.Equal(t, 1.2, scheduler.Multiplier(inWindow))
	assert.Equal(t, 1.0, scheduler.Multiplier(outOfWindow))
}

func TestCampaignStateManager(t *testing.T) {
	entities := cache.FromEntities(
		[]domain.Campaign{
			{ID: "c1", Name: "Shoes", State: domain.CampaignStateEnabled},
			{ID: "c2", Name: "Boots", State: domain.CampaignStatePaused},
			{ID: "c3", Name: "Old", State: domain.CampaignStateArchived},
			{ID: "c4", Name: "Small", State: domain.CampaignStateEnabled},
			{ID: "c5", Name: "Dead", State: domain.CampaignStatePaused},
		},
		nil, nil, nil,
	)

	record := func(id string, cost, sales float64) domain.PerformanceRecord {
		return domain.PerformanceRecord{Date: day, CampaignID: id, Metrics: domain.Metrics{Impressions: 1000, Clicks: 20, Cost: cost, Sales: sales}}
	}

	proposals := NewCampaignStateManager(rules().CampaignManagement).Propose(Input{
		Campaigns: []domain.PerformanceRecord{
			record("c1", 25, 50),
			record("c1", 25, 50),
			record("c2", 30, 100),
			record("c3", 100, 10),
			record("c4", 10, 5),
			record("c5", 40, 0),
		},
		Entities: entities,
		Now:      day,
	})

	require.Len(t, proposals, 2)

	assert.Equal(t, "c1", proposals[0].Entity.ID)
	assert.Equal(t, domain.CampaignStatePaused, proposals[0].State)
	assert.Equal(t, domain.ReasonACOSAboveThreshold, proposals[0].Reason)
	assert.Equal(t, "enabled", proposals[0].OldValue)
	assert.Equal(t, "paused", proposals[0].NewValue)

	assert.Equal(t, "c2", proposals[1].Entity.ID)
	assert.Equal(t, domain.CampaignStateEnabled, proposals[1].State)
	assert.Equal(t, domain.ReasonACOSRecovered, proposals[1].Reason)
}

func TestKeywordDiscovery(t *testing.T) {
	entities := cache.FromEntities(
		[]domain.Campaign{
			{ID: "c1", State: domain.CampaignStateEnabled},
			{ID: "c2", State: domain.CampaignStatePaused},
		},
		[]domain.AdGroup{
			{ID: "ag1", CampaignID: "c1", State: domain.CampaignStateEnabled},
			{ID: "ag2", CampaignID: "c2", State: domain.CampaignStateEnabled},
		},
		[]domain.Keyword{{ID: "k1", AdGroupID: "ag1", CampaignID: "c1", Text: "Trail Shoes", MatchType: domain.MatchTypeExact, State: domain.CampaignStateEnabled}},
		[]domain.NegativeKeyword{{ID: "n1", CampaignID: "c1", Text: "free shoes", MatchType: domain.MatchTypeNegativePhrase, State: domain.CampaignStateEnabled}},
	)

	term := func(campaignID, adGroupID, query string, clicks int64, cost, sales float64) domain.SearchTermRecord {
		return domain.SearchTermRecord{Date: day, CampaignID: campaignID, AdGroupID: adGroupID, Query: query, Metrics: domain.Metrics{Clicks: clicks, Cost: cost, Sales: sales}}
	}

	proposals := NewKeywordDiscovery(rules().KeywordDiscovery, bidRules()).Propose(Input{
		SearchTerms: []domain.SearchTermRecord{
			term("c1", "ag1", "Running Shoes", 6, 3, 30),
			term("c1", "ag1", "trail shoes", 9, 3, 30),
			term("c1", "ag1", "free shoes", 9, 3, 30),
			term("c1", "ag1", "rare shoes", 2, 1, 30),
			term("c1", "ag1", "pricey shoes", 9, 20, 30),
			term("c1", "ag1", "Blue Shoes", 3, 2, 10),
			term("c1", "ag1", "blue  shoes", 3, 2, 10),
			term("c2", "ag2", "running shoes", 9, 3, 30),
		},
		Entities: entities,
		Now:      day,
	})

	require.Len(t, proposals, 2)

	p := proposals[0]
	assert.Equal(t, "running shoes", p.KeywordText)
	assert.Equal(t, domain.MatchTypeExact, p.MatchType)
	assert.Equal(t, domain.FieldCreate, p.Field)
	assert.Equal(t, domain.EntityKeyword, p.Entity.Type)
	assert.Equal(t, "ag1", p.Entity.AdGroupID)
	assert.InDelta(t, 0.75, p.Bid, 1e-9)
	assert.Equal(t, domain.ReasonHighPerformingTerm, p.Reason)
	assert.Equal(t, "Added from search term: 6 clicks, ACOS 10.00%", p.Detail)

	assert.Equal(t, "blue shoes", proposals[1].KeywordText)
}

func TestNegativeKeywordFinder(t *testing.T) {
	entities := cache.FromEntities(
		[]domain.Campaign{
			{ID: "c1", State: domain.CampaignStateEnabled},
			{ID: "c2", State: domain.CampaignStateArchived},
		},
		nil, nil,
		[]domain.NegativeKeyword{{ID: "n1", CampaignID: "c1", Text: "Free Shoes", MatchType: domain.MatchTypeNegativeExact, State: domain.CampaignStateEnabled}},
	)

	term := func(campaignID, adGroupID, query string, cost, sales float64) domain.SearchTermRecord {
		return domain.SearchTermRecord{Date: day, CampaignID: campaignID, AdGroupID: adGroupID, Query: query, Metrics: domain.Metrics{Clicks: 10, Cost: cost, Sales: sales}}
	}

	proposals := NewNegativeKeywordFinder(rules().NegativeKeywords).Propose(Input{
		SearchTerms: []domain.SearchTermRecord{
			term("c1", "ag1", "cheap shoes", 12, 0),
			term("c1", "ag1", "free shoes", 40, 0),
			term("c1", "ag1", "used shoes", 6, 0),
			term("c1", "ag2", "Used Shoes", 6, 0),
			term("c1", "ag1", "good shoes", 30, 60),
			term("c1", "ag1", "tiny shoes", 5, 0),
			term("c2", "ag3", "cheap shoes", 50, 0),
		},
		Entities: entities,
		Now:      day,
	})

	require.Len(t, proposals, 2)
	assert.Equal(t, "cheap shoes", proposals[0].KeywordText)
	assert.Equal(t, domain.MatchTypeNegativePhrase, proposals[0].MatchType)
	assert.Equal(t, domain.EntityNegativeKeyword, proposals[0].Entity.Type)
	assert.Equal(t, domain.ReasonPoorPerformingTerm, proposals[0].Reason)
	assert.Equal(t, "Poor performer: $12.00 spend, ACOS inf", proposals[0].Detail)
	assert.Equal(t, "used shoes", proposals[1].KeywordText)
}

func TestEnginesOverManyCampaigns(t *testing.T) {
	const total = 150

	campaigns := make([]domain.Campaign, total)
	keywords := make([]domain.Keyword, total)
	var campaignRecords, keywordRecords []domain.PerformanceRecord

	for i := 0; i < total; i++ {
		campaignID := fmt.Sprintf("c%03d", i)
		campaigns[i] = domain.Campaign{ID: campaignID, State: domain.CampaignStateEnabled}
		keywords[i] = domain.Keyword{
			ID:         "k-" + campaignID,
			AdGroupID:  "ag-" + campaignID,
			CampaignID: campaignID,
			State:      domain.CampaignStateEnabled,
			Bid:        1.00,
		}
		m := domain.Metrics{Impressions: 1000, Clicks: 20, Cost: 30, Sales: 60}
		keywordRecords = append(keywordRecords, domain.PerformanceRecord{Date: day, CampaignID: campaignID, KeywordID: "k-" + campaignID, Metrics: m})
		campaignRecords = append(campaignRecords, domain.PerformanceRecord{Date: day, CampaignID: campaignID, Metrics: m})
	}

	engines, err := Build([]domain.EngineKind{domain.EngineBidOptimization, domain.EngineCampaignManagement}, rules())
	require.NoError(t, err)

	in := Input{
		Campaigns: campaignRecords,
		Keywords:  keywordRecords,
		Entities:  cache.FromEntities(campaigns, nil, keywords, nil),
		Now:       day,
	}

	bids := engines[0].Propose(in)
	states := engines[1].Propose(in)

	assert.Len(t, bids, total)
	assert.Len(t, states, total)

	keys := make(map[string]bool, total)
	for _, p := range bids {
		assert.Equal(t, "0.70", p.NewValue)
		keys[p.Key()] = true
	}
	assert.Len(t, keys, total)
}
