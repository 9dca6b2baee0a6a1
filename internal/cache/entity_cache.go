package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ppc-automation/internal/domain"
	"github.com/vfg2006/ppc-automation/pkg/log"
)

//go:generate mockgen -source=entity_cache.go -destination=mocks/mock_entity_source.go -package=mocks

// EntitySource lista as entidades da conta para montar o snapshot
type EntitySource interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	ListAdGroups(ctx context.Context, campaignID string) ([]domain.AdGroup, error)
	ListKeywords(ctx context.Context, adGroupID string) ([]domain.Keyword, error)
	ListNegativeKeywords(ctx context.Context, campaignID string) ([]domain.NegativeKeyword, error)
}

type Options struct {
	Concurrency int
}

// BuildStats resume as falhas parciais da montagem do snapshot
type BuildStats struct {
	Campaigns        int
	AdGroups         int
	Keywords         int
	NegativeKeywords int
	FailedFetches    int
}

type keywordKey struct {
	adGroupID string
	text      string
	matchType domain.MatchType
}

type negativeKey struct {
	campaignID string
	text       string
}

// EntityCache é o snapshot das entidades de uma execução. Depois de montado
// é somente leitura e pode ser consultado de várias goroutines.
type EntityCache struct {
	campaigns        map[string]domain.Campaign
	adGroups         map[string]domain.AdGroup
	keywords         map[string]domain.Keyword
	campaignOrder    []string
	keywordOrder     []string
	negativeKeywords []domain.NegativeKeyword

	keywordIndex  map[keywordKey]struct{}
	negativeIndex map[negativeKey]struct{}

	stats BuildStats
}

// Build monta o snapshot: campanhas, depois ad groups e negativas por campanha,
// depois keywords por ad group. Falha ao listar campanhas aborta; falhas por
// campanha ou ad group são registradas e contadas.
func Build(ctx context.Context, source EntitySource, opts Options) (*EntityCache, error) {
	logger := log.ForContext(ctx)

	campaigns, err := source.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu        sync.Mutex
		adGroups  []domain.AdGroup
		negatives []domain.NegativeKeyword
		keywords  []domain.Keyword
		failed    int
	)

	fail := func(fields log.Fields, err error, msg string) {
		mu.Lock()
		failed++
		mu.Unlock()
		logger.WithFields(fields).WithError(err).Warn(msg)
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, campaign := range campaigns {
		campaign := campaign
		if campaign.State == domain.CampaignStateArchived {
			continue
		}

		g.Go(func() error {
			groups, err := source.ListAdGroups(ctx, campaign.ID)
			if err != nil {
				fail(log.Fields{"campaign_id": campaign.ID}, err, "cache: erro ao listar ad groups")
			} else {
				mu.Lock()
				adGroups = append(adGroups, groups...)
				mu.Unlock()
			}
			return nil
		})

		g.Go(func() error {
			negs, err := source.ListNegativeKeywords(ctx, campaign.ID)
			if err != nil {
				fail(log.Fields{"campaign_id": campaign.ID}, err, "cache: erro ao listar keywords negativas")
			} else {
				mu.Lock()
				negatives = append(negatives, negs...)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, adGroup := range adGroups {
		adGroup := adGroup
		if adGroup.State == domain.CampaignStateArchived {
			continue
		}

		g.Go(func() error {
			kws, err := source.ListKeywords(ctx, adGroup.ID)
			if err != nil {
				fail(log.Fields{"ad_group_id": adGroup.ID}, err, "cache: erro ao listar keywords")
				return nil
			}

			for i := range kws {
				if kws[i].CampaignID == "" {
					kws[i].CampaignID = adGroup.CampaignID
				}
				if kws[i].AdGroupID == "" {
					kws[i].AdGroupID = adGroup.ID
				}
			}

			mu.Lock()
			keywords = append(keywords, kws...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cache := FromEntities(campaigns, adGroups, keywords, negatives)
	cache.stats.FailedFetches = failed

	logger.WithFields(log.Fields{
		"campaigns":         cache.stats.Campaigns,
		"ad_groups":         cache.stats.AdGroups,
		"keywords":          cache.stats.Keywords,
		"negative_keywords": cache.stats.NegativeKeywords,
		"failed_fetches":    failed,
	}).Info("cache: snapshot de entidades montado")

	return cache, nil
}

// FromEntities monta o snapshot a partir de entidades já carregadas
func FromEntities(
	campaigns []domain.Campaign,
	adGroups []domain.AdGroup,
	keywords []domain.Keyword,
	negatives []domain.NegativeKeyword,
) *EntityCache {
	c := &EntityCache{
		campaigns:     make(map[string]domain.Campaign, len(campaigns)),
		adGroups:      make(map[string]domain.AdGroup, len(adGroups)),
		keywords:      make(map[string]domain.Keyword, len(keywords)),
		keywordIndex:  make(map[keywordKey]struct{}, len(keywords)),
		negativeIndex: make(map[negativeKey]struct{}, len(negatives)),
	}

	for _, campaign := range campaigns {
		if _, ok := c.campaigns[campaign.ID]; !ok {
			c.campaignOrder = append(c.campaignOrder, campaign.ID)
		}
		c.campaigns[campaign.ID] = campaign
	}
	for _, adGroup := range adGroups {
		c.adGroups[adGroup.ID] = adGroup
	}
	for _, keyword := range keywords {
		if _, ok := c.keywords[keyword.ID]; !ok {
			c.keywordOrder = append(c.keywordOrder, keyword.ID)
		}
		c.keywords[keyword.ID] = keyword
		if keyword.State != domain.CampaignStateArchived {
			c.keywordIndex[keywordKey{keyword.AdGroupID, domain.NormalizeTerm(keyword.Text), keyword.MatchType}] = struct{}{}
		}
	}
	for _, negative := range negatives {
		if negative.State == domain.CampaignStateArchived {
			continue
		}
		c.negativeKeywords = append(c.negativeKeywords, negative)
		c.negativeIndex[negativeKey{negative.CampaignID, domain.NormalizeTerm(negative.Text)}] = struct{}{}
	}

	c.stats = BuildStats{
		Campaigns:        len(c.campaigns),
		AdGroups:         len(c.adGroups),
		Keywords:         len(c.keywords),
		NegativeKeywords: len(c.negativeKeywords),
	}
	return c
}

func (c *EntityCache) Campaign(id string) (domain.Campaign, bool) {
	campaign, ok := c.campaigns[id]
	return campaign, ok
}

func (c *EntityCache) AdGroup(id string) (domain.AdGroup, bool) {
	adGroup, ok := c.adGroups[id]
	return adGroup, ok
}

func (c *EntityCache) Keyword(id string) (domain.Keyword, bool) {
	keyword, ok := c.keywords[id]
	return keyword, ok
}

// Campaigns devolve as campanhas na ordem em que foram listadas
func (c *EntityCache) Campaigns() []domain.Campaign {
	out := make([]domain.Campaign, 0, len(c.campaignOrder))
	for _, id := range c.campaignOrder {
		out = append(out, c.campaigns[id])
	}
	return out
}

// Keywords devolve as keywords na ordem em que foram listadas
func (c *EntityCache) Keywords() []domain.Keyword {
	out := make([]domain.Keyword, 0, len(c.keywordOrder))
	for _, id := range c.keywordOrder {
		out = append(out, c.keywords[id])
	}
	return out
}

// HasKeyword indica se o ad group já tem a keyword (texto normalizado) com o match type
func (c *EntityCache) HasKeyword(adGroupID, text string, matchType domain.MatchType) bool {
	_, ok := c.keywordIndex[keywordKey{adGroupID, domain.NormalizeTerm(text), matchType}]
	return ok
}

// IsNegated indica se o termo já está negativado na campanha
func (c *EntityCache) IsNegated(campaignID, text string) bool {
	_, ok := c.negativeIndex[negativeKey{campaignID, domain.NormalizeTerm(text)}]
	return ok
}

func (c *EntityCache) Stats() BuildStats {
	return c.stats
}
