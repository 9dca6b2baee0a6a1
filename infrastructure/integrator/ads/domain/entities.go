package adsdomain

import (
	"bytes"
	"strconv"
)

// ID aceita identificadores numéricos ou texto (a API v2 devolve números)
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(data)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return []byte(strconv.Quote(string(id))), nil
}

func (id ID) String() string {
	return string(id)
}

type Campaign struct {
	CampaignID    ID      `json:"campaignId"`
	Name          string  `json:"name"`
	CampaignType  string  `json:"campaignType,omitempty"`
	TargetingType string  `json:"targetingType"`
	State         string  `json:"state"`
	DailyBudget   float64 `json:"dailyBudget"`
	StartDate     string  `json:"startDate,omitempty"`
}

type AdGroup struct {
	AdGroupID  ID      `json:"adGroupId"`
	CampaignID ID      `json:"campaignId"`
	Name       string  `json:"name"`
	DefaultBid float64 `json:"defaultBid"`
	State      string  `json:"state"`
}

type Keyword struct {
	KeywordID   ID      `json:"keywordId,omitempty"`
	CampaignID  ID      `json:"campaignId"`
	AdGroupID   ID      `json:"adGroupId"`
	KeywordText string  `json:"keywordText"`
	MatchType   string  `json:"matchType"`
	State       string  `json:"state"`
	Bid         float64 `json:"bid,omitempty"`
}

type NegativeKeyword struct {
	KeywordID   ID     `json:"keywordId,omitempty"`
	CampaignID  ID     `json:"campaignId"`
	AdGroupID   ID     `json:"adGroupId,omitempty"`
	KeywordText string `json:"keywordText"`
	MatchType   string `json:"matchType"`
	State       string `json:"state"`
}

type KeywordBidUpdate struct {
	KeywordID ID      `json:"keywordId"`
	Bid       float64 `json:"bid"`
}

type CampaignStateUpdate struct {
	CampaignID ID     `json:"campaignId"`
	State      string `json:"state"`
}

// MutationResult é o item de resposta das operações em lote
type MutationResult struct {
	Code        string `json:"code"`
	KeywordID   ID     `json:"keywordId,omitempty"`
	CampaignID  ID     `json:"campaignId,omitempty"`
	Details     string `json:"details,omitempty"`
	Description string `json:"description,omitempty"`
}

const MutationCodeSuccess = "SUCCESS"

func (r MutationResult) IsSuccess() bool {
	return r.Code == MutationCodeSuccess
}

func (r MutationResult) Message() string {
	if r.Details != "" {
		return r.Details
	}
	if r.Description != "" {
		return r.Description
	}
	return r.Code
}
