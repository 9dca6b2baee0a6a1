package ads

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/adsclient"
	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

// AdsIntegrator traduz entre os tipos da API de anúncios e o domínio da automação.
// É a fonte do snapshot de entidades, a API de relatórios e o executor de mutações.
type AdsIntegrator struct {
	Client adsclient.Client
}

func New(client adsclient.Client) *AdsIntegrator {
	return &AdsIntegrator{
		Client: client,
	}
}

func (s *AdsIntegrator) Authenticate(ctx context.Context) error {
	if err := s.Client.Authenticate(ctx); err != nil {
		logrus.WithError(err).Error("ads: falha na autenticação")
		return err
	}
	return nil
}

func (s *AdsIntegrator) VerifyConnection(ctx context.Context) (int, error) {
	n, err := s.Client.VerifyConnection(ctx)
	if err != nil {
		logrus.WithError(err).Error("ads: falha ao verificar a conexão")
		return 0, err
	}

	logrus.WithField("sample_campaigns", n).Info("ads: conexão verificada")
	return n, nil
}

func (s *AdsIntegrator) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	resp, err := s.Client.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	campaigns := make([]domain.Campaign, 0, len(resp))
	for _, c := range resp {
		campaigns = append(campaigns, FactoryCampaign(c))
	}
	return campaigns, nil
}

func (s *AdsIntegrator) ListAdGroups(ctx context.Context, campaignID string) ([]domain.AdGroup, error) {
	resp, err := s.Client.ListAdGroups(ctx, campaignID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("ads: erro ao listar ad groups")
		return nil, err
	}

	adGroups := make([]domain.AdGroup, 0, len(resp))
	for _, ag := range resp {
		adGroups = append(adGroups, FactoryAdGroup(ag))
	}
	return adGroups, nil
}

func (s *AdsIntegrator) ListKeywords(ctx context.Context, adGroupID string) ([]domain.Keyword, error) {
	resp, err := s.Client.ListKeywords(ctx, adGroupID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"ad_group_id": adGroupID,
			"error":       err.Error(),
		}).Error("ads: erro ao listar keywords")
		return nil, err
	}

	keywords := make([]domain.Keyword, 0, len(resp))
	for _, k := range resp {
		keywords = append(keywords, FactoryKeyword(k))
	}
	return keywords, nil
}

func (s *AdsIntegrator) ListNegativeKeywords(ctx context.Context, campaignID string) ([]domain.NegativeKeyword, error) {
	resp, err := s.Client.ListNegativeKeywords(ctx, campaignID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("ads: erro ao listar keywords negativas")
		return nil, err
	}

	negatives := make([]domain.NegativeKeyword, 0, len(resp))
	for _, n := range resp {
		negatives = append(negatives, FactoryNegativeKeyword(n))
	}
	return negatives, nil
}

func (s *AdsIntegrator) UpdateKeywordBid(ctx context.Context, keywordID string, bid float64) error {
	return s.Client.UpdateKeywordBid(ctx, keywordID, bid)
}

func (s *AdsIntegrator) UpdateCampaignState(ctx context.Context, campaignID string, state domain.CampaignState) error {
	return s.Client.UpdateCampaignState(ctx, campaignID, string(state))
}

func (s *AdsIntegrator) CreateKeyword(ctx context.Context, keyword domain.Keyword) (string, error) {
	return s.Client.CreateKeyword(ctx, adsdomain.Keyword{
		CampaignID:  adsdomain.ID(keyword.CampaignID),
		AdGroupID:   adsdomain.ID(keyword.AdGroupID),
		KeywordText: keyword.Text,
		MatchType:   string(keyword.MatchType),
		State:       string(domain.CampaignStateEnabled),
		Bid:         keyword.Bid,
	})
}

func (s *AdsIntegrator) CreateNegativeKeyword(ctx context.Context, negative domain.NegativeKeyword) (string, error) {
	return s.Client.CreateNegativeKeyword(ctx, adsdomain.NegativeKeyword{
		CampaignID:  adsdomain.ID(negative.CampaignID),
		AdGroupID:   adsdomain.ID(negative.AdGroupID),
		KeywordText: negative.Text,
		MatchType:   string(negative.MatchType),
		State:       string(domain.CampaignStateEnabled),
	})
}

func (s *AdsIntegrator) RequestReport(ctx context.Context, scope domain.ReportScope) (string, error) {
	request, err := BuildReportRequest(scope)
	if err != nil {
		return "", err
	}

	reportID, err := s.Client.RequestReport(ctx, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"scope": scope.String(),
			"error": err.Error(),
		}).Error("ads: erro ao solicitar relatório")
		return "", err
	}
	return reportID, nil
}

func (s *AdsIntegrator) PollReport(ctx context.Context, externalID string) (domain.ReportStatus, error) {
	resp, err := s.Client.PollReport(ctx, externalID)
	if err != nil {
		return domain.ReportStatus{}, err
	}

	return domain.ReportStatus{
		ExternalID:    externalID,
		Status:        FactoryPollStatus(resp.RawStatus()),
		Location:      resp.DownloadLocation(),
		FailureReason: resp.Reason(),
	}, nil
}

func (s *AdsIntegrator) DownloadReport(ctx context.Context, status domain.ReportStatus) ([]byte, error) {
	return s.Client.DownloadReport(ctx, status.ExternalID, status.Location)
}
