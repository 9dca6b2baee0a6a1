package domain

import (
	"fmt"
	"strconv"
	"time"
)

// EngineKind é o conjunto fechado de motores de decisão
type EngineKind string

const (
	EngineBidOptimization    EngineKind = "bid_optimization"
	EngineDayparting         EngineKind = "dayparting"
	EngineCampaignManagement EngineKind = "campaign_management"
	EngineKeywordDiscovery   EngineKind = "keyword_discovery"
	EngineNegativeKeywords   EngineKind = "negative_keywords"
)

var EngineKinds = []EngineKind{
	EngineBidOptimization,
	EngineDayparting,
	EngineCampaignManagement,
	EngineKeywordDiscovery,
	EngineNegativeKeywords,
}

func ParseEngineKind(s string) (EngineKind, bool) {
	for _, k := range EngineKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type EntityType string

const (
	EntityKeyword         EntityType = "keyword"
	EntityCampaign        EntityType = "campaign"
	EntityNegativeKeyword EntityType = "negativeKeyword"
)

type MutationField string

const (
	FieldBid    MutationField = "bid"
	FieldState  MutationField = "state"
	FieldCreate MutationField = "create"
)

type ReasonCode string

const (
	ReasonHighACOS           ReasonCode = "HIGH_ACOS"
	ReasonLowACOS            ReasonCode = "LOW_ACOS"
	ReasonNoSales            ReasonCode = "NO_SALES"
	ReasonDaypartSchedule    ReasonCode = "DAYPART_SCHEDULE"
	ReasonACOSAboveThreshold ReasonCode = "ACOS_ABOVE_THRESHOLD"
	ReasonACOSRecovered      ReasonCode = "ACOS_RECOVERED"
	ReasonHighPerformingTerm ReasonCode = "HIGH_PERFORMING_TERM"
	ReasonPoorPerformingTerm ReasonCode = "POOR_PERFORMING_TERM"
)

type EntityRef struct {
	Type       EntityType `json:"type"`
	ID         string     `json:"id,omitempty"`
	CampaignID string     `json:"campaign_id,omitempty"`
	AdGroupID  string     `json:"ad_group_id,omitempty"`
}

// MutationProposal é uma alteração sugerida por um motor. Os valores Old/New
// são a forma legível usada na auditoria; os campos tipados são usados na aplicação.
type MutationProposal struct {
	Engine   EngineKind    `json:"engine"`
	Entity   EntityRef     `json:"entity"`
	Field    MutationField `json:"field"`
	OldValue string        `json:"old_value"`
	NewValue string        `json:"new_value"`
	Reason   ReasonCode    `json:"reason"`
	Detail   string        `json:"detail,omitempty"`

	Bid         float64       `json:"bid,omitempty"`
	State       CampaignState `json:"state,omitempty"`
	KeywordText string        `json:"keyword_text,omitempty"`
	MatchType   MatchType     `json:"match_type,omitempty"`
}

// Key identifica a entidade alvo. Propostas com a mesma chave são resolvidas
// antes da execução e só a última é aplicada.
func (p MutationProposal) Key() string {
	if p.Field == FieldCreate {
		switch p.Entity.Type {
		case EntityNegativeKeyword:
			return fmt.Sprintf("%s:%s:%s", p.Entity.Type, p.Entity.CampaignID, NormalizeTerm(p.KeywordText))
		default:
			return fmt.Sprintf("%s:%s:%s:%s", p.Entity.Type, p.Entity.AdGroupID, NormalizeTerm(p.KeywordText), p.MatchType)
		}
	}
	return fmt.Sprintf("%s:%s", p.Entity.Type, p.Entity.ID)
}

func FormatBid(bid float64) string {
	return strconv.FormatFloat(bid, 'f', 2, 64)
}

type AuditOutcome string

const (
	OutcomeApplied    AuditOutcome = "applied"
	OutcomeDryRun     AuditOutcome = "dry_run"
	OutcomeFailed     AuditOutcome = "failed"
	OutcomeSuperseded AuditOutcome = "superseded"
	OutcomeCancelled  AuditOutcome = "cancelled"
)

type AuditEntry struct {
	ID        string           `json:"id"`
	RunID     string           `json:"run_id"`
	Timestamp time.Time        `json:"timestamp"`
	Proposal  MutationProposal `json:"proposal"`
	Applied   bool             `json:"applied"`
	Error     string           `json:"error,omitempty"`
	DryRun    bool             `json:"dry_run"`
	Outcome   AuditOutcome     `json:"outcome"`
}
