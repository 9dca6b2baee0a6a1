package domain

import "strings"

type MatchType string

const (
	MatchTypeExact          MatchType = "exact"
	MatchTypePhrase         MatchType = "phrase"
	MatchTypeBroad          MatchType = "broad"
	MatchTypeNegativeExact  MatchType = "negativeExact"
	MatchTypeNegativePhrase MatchType = "negativePhrase"
)

// ParseMatchType aceita tanto "EXACT" quanto "exact" e "NEGATIVE_PHRASE"
func ParseMatchType(s string) MatchType {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "exact":
		return MatchTypeExact
	case "phrase":
		return MatchTypePhrase
	case "broad":
		return MatchTypeBroad
	case "negativeexact":
		return MatchTypeNegativeExact
	case "negativephrase":
		return MatchTypeNegativePhrase
	}
	return MatchType(s)
}

func (m MatchType) IsNegative() bool {
	return m == MatchTypeNegativeExact || m == MatchTypeNegativePhrase
}

type Keyword struct {
	ID         string        `json:"id"`
	AdGroupID  string        `json:"ad_group_id"`
	CampaignID string        `json:"campaign_id"`
	Text       string        `json:"text"`
	MatchType  MatchType     `json:"match_type"`
	State      CampaignState `json:"state"`
	Bid        float64       `json:"bid"`
}

type NegativeKeyword struct {
	ID         string        `json:"id"`
	CampaignID string        `json:"campaign_id"`
	AdGroupID  string        `json:"ad_group_id,omitempty"`
	Text       string        `json:"text"`
	MatchType  MatchType     `json:"match_type"`
	State      CampaignState `json:"state"`
}

// NormalizeTerm é a forma usada para comparar textos de keywords e search terms
func NormalizeTerm(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
