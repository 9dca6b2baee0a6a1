package config

import (
	"time"
	_ "time/tzdata"

	"github.com/vfg2006/ppc-automation/internal/domain"
)

// Validate confere a configuração já carregada. Qualquer erro aqui é fatal
// e acontece antes de qualquer chamada à API.
func (c *Config) Validate() error {
	switch c.App.Mode {
	case ModeOnce, ModeServe, ModeVerify:
	default:
		return domain.NewValidationError("app_mode", "unknown mode %q", c.App.Mode)
	}
	if c.Ads.BaseURL == "" {
		return domain.NewValidationError("ads_base_url", "unknown region %q and no base url", c.Ads.Region)
	}
	if c.RateLimit.PerSecond <= 0 {
		return domain.NewValidationError("rate_limit_per_second", "must be positive")
	}
	if c.RateLimit.Burst < 1 {
		return domain.NewValidationError("rate_limit_burst", "must be at least 1")
	}
	if c.Retry.MaxAttempts < 1 {
		return domain.NewValidationError("retry_max_attempts", "must be at least 1")
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return domain.NewValidationError("retry_max_delay", "must be >= retry_base_delay > 0")
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction > 1 {
		return domain.NewValidationError("retry_jitter_fraction", "must be within [0, 1]")
	}
	if c.Reports.MaxInFlight < 1 {
		return domain.NewValidationError("report_max_in_flight", "must be at least 1")
	}
	if c.Reports.InitialPollInterval <= 0 || c.Reports.MaxPollInterval < c.Reports.InitialPollInterval {
		return domain.NewValidationError("report_poll_max_interval", "must be >= report_poll_initial_interval > 0")
	}
	if c.Reports.PollBackoffFactor < 1 {
		return domain.NewValidationError("report_poll_backoff_factor", "must be >= 1")
	}
	if c.Reports.MaxWait <= 0 {
		return domain.NewValidationError("report_max_wait", "must be positive")
	}
	if c.Run.LookbackDays < 1 {
		return domain.NewValidationError("run_lookback_days", "must be at least 1")
	}
	if c.Run.MutationConcurrency < 1 || c.Run.CacheConcurrency < 1 {
		return domain.NewValidationError("run_mutation_concurrency", "concurrency must be at least 1")
	}
	if c.Warehouse.Enabled && c.Warehouse.BatchSize < 1 {
		return domain.NewValidationError("warehouse_batch_size", "must be at least 1")
	}

	rules := c.Rules()
	for _, f := range c.Run.Features {
		kind, ok := domain.ParseEngineKind(f)
		if !ok {
			return domain.NewValidationError("run_features", "unknown feature %q", f)
		}
		if err := rules.ValidateFor(kind); err != nil {
			return err
		}
	}

	return nil
}

// Validate confere as regras de todos os motores de decisão
func (r Rules) Validate() error {
	for _, kind := range domain.EngineKinds {
		if err := r.ValidateFor(kind); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFor confere apenas as regras usadas pelo motor informado. Os limites
// de lance valem para todo motor que propõe lances.
func (r Rules) ValidateFor(kind domain.EngineKind) error {
	switch kind {
	case domain.EngineBidOptimization:
		return r.BidOptimization.Validate()

	case domain.EngineDayparting:
		if err := r.BidOptimization.validateBounds(); err != nil {
			return err
		}
		return r.Dayparting.Validate()

	case domain.EngineCampaignManagement:
		if r.CampaignManagement.ACOSThreshold <= 0 {
			return domain.NewValidationError("campaign_acos_threshold", "must be positive")
		}
		if r.CampaignManagement.MinSpend < 0 {
			return domain.NewValidationError("campaign_min_spend", "must not be negative")
		}

	case domain.EngineKeywordDiscovery:
		if err := r.BidOptimization.validateBounds(); err != nil {
			return err
		}
		if r.KeywordDiscovery.MaxACOS <= 0 || r.KeywordDiscovery.InitialBid <= 0 {
			return domain.NewValidationError("keyword_discovery", "max acos and initial bid must be positive")
		}
		if m := domain.ParseMatchType(r.KeywordDiscovery.MatchType); m != domain.MatchTypeExact && m != domain.MatchTypePhrase && m != domain.MatchTypeBroad {
			return domain.NewValidationError("keyword_discovery_match_type", "unsupported match type %q", r.KeywordDiscovery.MatchType)
		}

	case domain.EngineNegativeKeywords:
		if r.NegativeKeywords.MaxACOS <= 0 {
			return domain.NewValidationError("negative_keywords_max_acos", "must be positive")
		}
		if r.NegativeKeywords.MinSpend < 0 {
			return domain.NewValidationError("negative_keywords_min_spend", "must not be negative")
		}
		if !domain.ParseMatchType(r.NegativeKeywords.MatchType).IsNegative() {
			return domain.NewValidationError("negative_keywords_match_type", "unsupported match type %q", r.NegativeKeywords.MatchType)
		}

	default:
		return domain.NewValidationError("run_features", "unknown feature %q", kind)
	}
	return nil
}

func (b BidOptimization) validateBounds() error {
	if b.MinBid <= 0 || b.MaxBid < b.MinBid {
		return domain.NewValidationError("bid_max", "bid bounds must satisfy 0 < min <= max")
	}
	return nil
}

func (b BidOptimization) Validate() error {
	if b.TargetACOS <= 0 {
		return domain.NewValidationError("bid_target_acos", "must be positive")
	}
	if err := b.validateBounds(); err != nil {
		return err
	}
	if b.MaxIncreasePercent <= 0 || b.MaxIncreasePercent > 100 {
		return domain.NewValidationError("bid_max_increase_percent", "must be within (0, 100]")
	}
	if b.MaxDecreasePercent <= 0 || b.MaxDecreasePercent >= 100 {
		return domain.NewValidationError("bid_max_decrease_percent", "must be within (0, 100)")
	}
	if b.MinImpressions < 0 || b.MinSpend < 0 {
		return domain.NewValidationError("bid_min_impressions", "thresholds must not be negative")
	}
	return nil
}

func (d Dayparting) Validate() error {
	if _, err := d.Location(); err != nil {
		return err
	}
	if d.MinMultiplier < 0 || (d.MaxMultiplier > 0 && d.MaxMultiplier < d.MinMultiplier) {
		return domain.NewValidationError("dayparting_max_multiplier", "must be >= dayparting_min_multiplier")
	}
	return ValidateSchedule(d.Windows, d.MinMultiplier, d.MaxMultiplier)
}

func (d Dayparting) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, domain.NewValidationError("dayparting_timezone", "%v", err)
	}
	return loc, nil
}
