package adsclient

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/config"
	"github.com/vfg2006/ppc-automation/pkg/ratelimit"
	"github.com/vfg2006/ppc-automation/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client expõe as operações tipadas da API de anúncios. Toda chamada passa
// pelo rate limiter e pela política de retry.
type Client interface {
	Authenticate(ctx context.Context) error
	VerifyConnection(ctx context.Context) (int, error)
	ListCampaigns(ctx context.Context) ([]adsdomain.Campaign, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]adsdomain.AdGroup, error)
	ListKeywords(ctx context.Context, adGroupID string) ([]adsdomain.Keyword, error)
	ListNegativeKeywords(ctx context.Context, campaignID string) ([]adsdomain.NegativeKeyword, error)
	UpdateKeywordBid(ctx context.Context, keywordID string, bid float64) error
	UpdateCampaignState(ctx context.Context, campaignID string, state string) error
	CreateKeyword(ctx context.Context, keyword adsdomain.Keyword) (string, error)
	CreateNegativeKeyword(ctx context.Context, negative adsdomain.NegativeKeyword) (string, error)
	RequestReport(ctx context.Context, report adsdomain.ReportRequest) (string, error)
	PollReport(ctx context.Context, reportID string) (*adsdomain.ReportResponse, error)
	DownloadReport(ctx context.Context, reportID string, location string) ([]byte, error)
}

type AdsClient struct {
	cfg        config.Ads
	creds      config.Credentials
	httpClient *http.Client
	tokens     *TokenManager
	limiter    *ratelimit.Limiter
	retry      *retry.Policy
}

// NewClient monta o cliente de uma execução. O limiter é compartilhado com
// todos os pools da mesma execução.
func NewClient(
	cfg config.Ads,
	creds config.Credentials,
	limiter *ratelimit.Limiter,
	policy *retry.Policy,
) *AdsClient {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	return &AdsClient{
		cfg:        cfg,
		creds:      creds,
		httpClient: httpClient,
		tokens:     NewTokenManager(cfg, creds, httpClient),
		limiter:    limiter,
		retry:      policy,
	}
}

// Authenticate faz o grant de refresh token antes de qualquer outra chamada
func (c *AdsClient) Authenticate(ctx context.Context) error {
	return retry.Run(ctx, c.retry, "authenticate", func(ctx context.Context) error {
		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return err
		}
		_, err := c.tokens.Token(ctx)
		return err
	})
}
