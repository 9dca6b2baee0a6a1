package adsclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

const (
	campaignsPath = "/v2/sp/campaigns"
	allStates     = "enabled,paused,archived"
)

// listAll percorre as páginas (startIndex/count) até receber uma página incompleta
func listAll[T any](ctx context.Context, c *AdsClient, operation, path string, filters url.Values) ([]T, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []T
	for startIndex := 0; ; startIndex += pageSize {
		query := url.Values{}
		for k, v := range filters {
			query[k] = v
		}
		query.Set("startIndex", strconv.Itoa(startIndex))
		query.Set("count", strconv.Itoa(pageSize))

		body, err := c.send(ctx, request{
			operation: operation,
			method:    http.MethodGet,
			path:      path,
			query:     query,
		})
		if err != nil {
			return nil, err
		}

		var page []T
		if err := decode(operation, body, &page); err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (c *AdsClient) ListCampaigns(ctx context.Context) ([]adsdomain.Campaign, error) {
	campaigns, err := listAll[adsdomain.Campaign](ctx, c, "listCampaigns", campaignsPath, url.Values{
		"stateFilter": {allStates},
	})
	if err != nil {
		logrus.WithError(err).Error("adsclient: falha ao listar campanhas")
		return nil, err
	}
	return campaigns, nil
}

// VerifyConnection busca uma amostra pequena de campanhas para confirmar que
// credenciais e perfil estão corretos
func (c *AdsClient) VerifyConnection(ctx context.Context) (int, error) {
	body, err := c.send(ctx, request{
		operation: "verifyConnection",
		method:    http.MethodGet,
		path:      campaignsPath,
		query:     url.Values{"startIndex": {"0"}, "count": {"5"}},
	})
	if err != nil {
		return 0, err
	}

	var sample []adsdomain.Campaign
	if err := decode("verifyConnection", body, &sample); err != nil {
		return 0, err
	}
	return len(sample), nil
}

func (c *AdsClient) UpdateCampaignState(ctx context.Context, campaignID string, state string) error {
	body, err := c.send(ctx, request{
		operation: "updateCampaignState",
		method:    http.MethodPut,
		path:      campaignsPath,
		body: []adsdomain.CampaignStateUpdate{
			{CampaignID: adsdomain.ID(campaignID), State: state},
		},
	})
	if err != nil {
		return err
	}

	return checkMutation("updateCampaignState", campaignID, body)
}

// checkMutation confere o resultado de uma mutação de item único
func checkMutation(operation, entityID string, body []byte) error {
	_, err := mutationResult(operation, entityID, body)
	return err
}

func mutationResult(operation, entityID string, body []byte) (*adsdomain.MutationResult, error) {
	var results []adsdomain.MutationResult
	if err := decode(operation, body, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &domain.APIError{Kind: domain.ErrMutation, Operation: operation, Message: "empty mutation response for " + entityID}
	}
	if !results[0].IsSuccess() {
		return nil, &domain.APIError{Kind: domain.ErrMutation, Operation: operation, Message: entityID + ": " + results[0].Message()}
	}
	return &results[0], nil
}
