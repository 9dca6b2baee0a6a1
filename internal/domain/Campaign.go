package domain

import "strings"

type CampaignState string

const (
	CampaignStateEnabled  CampaignState = "enabled"
	CampaignStatePaused   CampaignState = "paused"
	CampaignStateArchived CampaignState = "archived"
)

// ParseCampaignState normaliza o estado vindo da plataforma ("ENABLED", "enabled", ...)
func ParseCampaignState(s string) CampaignState {
	return CampaignState(strings.ToLower(strings.TrimSpace(s)))
}

type Campaign struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DailyBudget   float64       `json:"daily_budget"`
	State         CampaignState `json:"state"`
	TargetingType string        `json:"targeting_type"`
}

func (c Campaign) IsEnabled() bool {
	return c.State == CampaignStateEnabled
}

type AdGroup struct {
	ID         string        `json:"id"`
	CampaignID string        `json:"campaign_id"`
	Name       string        `json:"name"`
	State      CampaignState `json:"state"`
	DefaultBid float64       `json:"default_bid"`
}
