package adsclient

import (
	"context"
	"net/http"
	"net/url"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
)

const (
	adGroupsPath         = "/v2/sp/adGroups"
	keywordsPath         = "/v2/sp/keywords"
	negativeKeywordsPath = "/v2/sp/negativeKeywords"
)

func (c *AdsClient) ListAdGroups(ctx context.Context, campaignID string) ([]adsdomain.AdGroup, error) {
	return listAll[adsdomain.AdGroup](ctx, c, "listAdGroups", adGroupsPath, url.Values{
		"campaignIdFilter": {campaignID},
		"stateFilter":      {allStates},
	})
}

func (c *AdsClient) ListKeywords(ctx context.Context, adGroupID string) ([]adsdomain.Keyword, error) {
	return listAll[adsdomain.Keyword](ctx, c, "listKeywords", keywordsPath, url.Values{
		"adGroupIdFilter": {adGroupID},
		"stateFilter":     {allStates},
	})
}

func (c *AdsClient) ListNegativeKeywords(ctx context.Context, campaignID string) ([]adsdomain.NegativeKeyword, error) {
	return listAll[adsdomain.NegativeKeyword](ctx, c, "listNegativeKeywords", negativeKeywordsPath, url.Values{
		"campaignIdFilter": {campaignID},
		"stateFilter":      {"enabled"},
	})
}

func (c *AdsClient) UpdateKeywordBid(ctx context.Context, keywordID string, bid float64) error {
	body, err := c.send(ctx, request{
		operation: "updateBid",
		method:    http.MethodPut,
		path:      keywordsPath,
		body: []adsdomain.KeywordBidUpdate{
			{KeywordID: adsdomain.ID(keywordID), Bid: bid},
		},
	})
	if err != nil {
		return err
	}

	return checkMutation("updateBid", keywordID, body)
}

func (c *AdsClient) CreateKeyword(ctx context.Context, keyword adsdomain.Keyword) (string, error) {
	body, err := c.send(ctx, request{
		operation:     "createKeyword",
		method:        http.MethodPost,
		path:          keywordsPath,
		body:          []adsdomain.Keyword{keyword},
		nonIdempotent: true,
	})
	if err != nil {
		return "", err
	}

	result, err := mutationResult("createKeyword", keyword.KeywordText, body)
	if err != nil {
		return "", err
	}
	return result.KeywordID.String(), nil
}

func (c *AdsClient) CreateNegativeKeyword(ctx context.Context, negative adsdomain.NegativeKeyword) (string, error) {
	body, err := c.send(ctx, request{
		operation:     "createNegativeKeyword",
		method:        http.MethodPost,
		path:          negativeKeywordsPath,
		body:          []adsdomain.NegativeKeyword{negative},
		nonIdempotent: true,
	})
	if err != nil {
		return "", err
	}

	result, err := mutationResult("createNegativeKeyword", negative.KeywordText, body)
	if err != nil {
		return "", err
	}
	return result.KeywordID.String(), nil
}
