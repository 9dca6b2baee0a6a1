package domain

import (
	"math"
	"time"
)

// Metrics agrupa os contadores brutos de um relatório. As métricas derivadas
// (CTR, CPC, ACOS, ROAS) são sempre recalculadas a partir deles.
type Metrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Sales       float64 `json:"attributed_sales_14d"`
	Conversions int64   `json:"attributed_conversions_14d"`
}

func (m Metrics) Add(other Metrics) Metrics {
	return Metrics{
		Impressions: m.Impressions + other.Impressions,
		Clicks:      m.Clicks + other.Clicks,
		Cost:        m.Cost + other.Cost,
		Sales:       m.Sales + other.Sales,
		Conversions: m.Conversions + other.Conversions,
	}
}

func (m Metrics) CTR() float64 {
	if m.Impressions <= 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

func (m Metrics) CPC() float64 {
	if m.Clicks <= 0 {
		return 0
	}
	return m.Cost / float64(m.Clicks)
}

// ACOS retorna +Inf quando há gasto sem vendas e 0 quando não há nenhum dos dois
func (m Metrics) ACOS() float64 {
	if m.Sales > 0 {
		return m.Cost / m.Sales
	}
	if m.Cost > 0 {
		return math.Inf(1)
	}
	return 0
}

func (m Metrics) ROAS() float64 {
	if m.Cost <= 0 {
		return 0
	}
	return m.Sales / m.Cost
}

// PerformanceRecord é uma linha por entidade por dia
type PerformanceRecord struct {
	Date        time.Time `json:"date"`
	CampaignID  string    `json:"campaign_id"`
	AdGroupID   string    `json:"ad_group_id,omitempty"`
	KeywordID   string    `json:"keyword_id,omitempty"`
	KeywordText string    `json:"keyword_text,omitempty"`
	MatchType   MatchType `json:"match_type,omitempty"`
	Metrics
}

type SearchTermRecord struct {
	Date       time.Time `json:"date"`
	CampaignID string    `json:"campaign_id"`
	AdGroupID  string    `json:"ad_group_id"`
	Query      string    `json:"query"`
	Metrics
}

// ReportData é o resultado já interpretado de um relatório concluído
type ReportData struct {
	Scope       ReportScope
	Performance []PerformanceRecord
	SearchTerms []SearchTermRecord
}
