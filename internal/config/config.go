package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ModeOnce   = "once"
	ModeServe  = "serve"
	ModeVerify = "verify" // só autentica e confere o acesso à conta
)

type Config struct {
	App                App                `mapstructure:",squash"`
	Server             Server             `mapstructure:",squash"`
	Database           Database           `mapstructure:",squash"`
	Auth               Auth               `mapstructure:",squash"`
	Ads                Ads                `mapstructure:",squash"`
	RateLimit          RateLimit          `mapstructure:",squash"`
	Retry              Retry              `mapstructure:",squash"`
	Reports            Reports            `mapstructure:",squash"`
	Run                Run                `mapstructure:",squash"`
	BidOptimization    BidOptimization    `mapstructure:",squash"`
	Dayparting         Dayparting         `mapstructure:",squash"`
	CampaignManagement CampaignManagement `mapstructure:",squash"`
	KeywordDiscovery   KeywordDiscovery   `mapstructure:",squash"`
	NegativeKeywords   NegativeKeywords   `mapstructure:",squash"`
	Warehouse          Warehouse          `mapstructure:",squash"`
	Audit              Audit              `mapstructure:",squash"`
	Render             Render             `mapstructure:",squash"`
}

type App struct {
	Env      string `mapstructure:"app_env"`
	Mode     string `mapstructure:"app_mode"`
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"server_host"`
	Port string `mapstructure:"server_port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Host     string `mapstructure:"db_host"`
	Port     int    `mapstructure:"db_port"`
	User     string `mapstructure:"db_user"`
	Password string `mapstructure:"db_password"`
	Name     string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"db_sslmode"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Ads struct {
	Region      string        `mapstructure:"ads_region"`
	BaseURL     string        `mapstructure:"ads_base_url"`
	TokenURL    string        `mapstructure:"ads_token_url"`
	HTTPTimeout time.Duration `mapstructure:"ads_http_timeout"`
	PageSize    int           `mapstructure:"ads_page_size"`
	UserAgent   string        `mapstructure:"ads_user_agent"`
}

type RateLimit struct {
	PerSecond float64 `mapstructure:"rate_limit_per_second"`
	Burst     int     `mapstructure:"rate_limit_burst"`
}

type Retry struct {
	BaseDelay      time.Duration `mapstructure:"retry_base_delay"`
	MaxDelay       time.Duration `mapstructure:"retry_max_delay"`
	MaxAttempts    int           `mapstructure:"retry_max_attempts"`
	JitterFraction float64       `mapstructure:"retry_jitter_fraction"`
}

type Reports struct {
	MaxInFlight         int           `mapstructure:"report_max_in_flight"`
	InitialPollInterval time.Duration `mapstructure:"report_poll_initial_interval"`
	MaxPollInterval     time.Duration `mapstructure:"report_poll_max_interval"`
	PollBackoffFactor   float64       `mapstructure:"report_poll_backoff_factor"`
	MaxWait             time.Duration `mapstructure:"report_max_wait"`
}

type Run struct {
	Timeout             time.Duration `mapstructure:"run_timeout"`
	DryRun              bool          `mapstructure:"run_dry_run"`
	Features            []string      `mapstructure:"run_features"`
	LookbackDays        int           `mapstructure:"run_lookback_days"`
	MutationConcurrency int           `mapstructure:"run_mutation_concurrency"`
	CacheConcurrency    int           `mapstructure:"run_cache_concurrency"`
}

type BidOptimization struct {
	TargetACOS         float64 `mapstructure:"bid_target_acos"`
	MinImpressions     int64   `mapstructure:"bid_min_impressions"`
	MinSpend           float64 `mapstructure:"bid_min_spend"`
	MaxIncreasePercent float64 `mapstructure:"bid_max_increase_percent"`
	MaxDecreasePercent float64 `mapstructure:"bid_max_decrease_percent"`
	MinBid             float64 `mapstructure:"bid_min"`
	MaxBid             float64 `mapstructure:"bid_max"`
}

type Dayparting struct {
	Timezone      string          `mapstructure:"dayparting_timezone"`
	RawSchedule   string          `mapstructure:"dayparting_schedule"`
	MinMultiplier float64         `mapstructure:"dayparting_min_multiplier"`
	MaxMultiplier float64         `mapstructure:"dayparting_max_multiplier"`
	Windows       []DaypartWindow `mapstructure:"-"`
}

type CampaignManagement struct {
	ACOSThreshold float64 `mapstructure:"campaign_acos_threshold"`
	MinSpend      float64 `mapstructure:"campaign_min_spend"`
}

type KeywordDiscovery struct {
	MinClicks  int64   `mapstructure:"keyword_discovery_min_clicks"`
	MaxACOS    float64 `mapstructure:"keyword_discovery_max_acos"`
	InitialBid float64 `mapstructure:"keyword_discovery_initial_bid"`
	MatchType  string  `mapstructure:"keyword_discovery_match_type"`
}

type NegativeKeywords struct {
	MinSpend  float64 `mapstructure:"negative_keywords_min_spend"`
	MaxACOS   float64 `mapstructure:"negative_keywords_max_acos"`
	MatchType string  `mapstructure:"negative_keywords_match_type"`
}

type Warehouse struct {
	Enabled     bool `mapstructure:"warehouse_enabled"`
	BatchSize   int  `mapstructure:"warehouse_batch_size"`
	AutoMigrate bool `mapstructure:"warehouse_auto_migrate"`
}

// Render aponta para os secret files de onde as credenciais podem ser lidas
type Render struct {
	APIKey    string `mapstructure:"render_api_key"`
	ServiceID string `mapstructure:"render_service_id"`
	BaseURL   string `mapstructure:"render_base_url"`
}

type Audit struct {
	OutputDir string `mapstructure:"audit_output_dir"`
	Persist   bool   `mapstructure:"audit_persist"`
}

// Rules agrupa as configurações consumidas pelos motores de decisão
type Rules struct {
	BidOptimization    BidOptimization
	Dayparting         Dayparting
	CampaignManagement CampaignManagement
	KeywordDiscovery   KeywordDiscovery
	NegativeKeywords   NegativeKeywords
}

func (c *Config) Rules() Rules {
	return Rules{
		BidOptimization:    c.BidOptimization,
		Dayparting:         c.Dayparting,
		CampaignManagement: c.CampaignManagement,
		KeywordDiscovery:   c.KeywordDiscovery,
		NegativeKeywords:   c.NegativeKeywords,
	}
}

var regionEndpoints = map[string]string{
	"NA": "https://advertising-api.amazon.com",
	"EU": "https://advertising-api-eu.amazon.com",
	"FE": "https://advertising-api-fe.amazon.com",
}

func SetDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_MODE", ModeOnce)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "ppc")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("ADS_REGION", "NA")
	viper.SetDefault("ADS_BASE_URL", "")
	viper.SetDefault("ADS_TOKEN_URL", "https://api.amazon.com/auth/o2/token")
	viper.SetDefault("ADS_HTTP_TIMEOUT", "30s")
	viper.SetDefault("ADS_PAGE_SIZE", 100)
	viper.SetDefault("ADS_USER_AGENT", "ppc-automation/1.0")

	// Limites da API de anúncios
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 10.0) // 10 requisições por segundo
	viper.SetDefault("RATE_LIMIT_BURST", 3)

	viper.SetDefault("RETRY_BASE_DELAY", "1s")
	viper.SetDefault("RETRY_MAX_DELAY", "30s")
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 4)
	viper.SetDefault("RETRY_JITTER_FRACTION", 0.5)

	viper.SetDefault("REPORT_MAX_IN_FLIGHT", 3) // 3 relatórios simultâneos
	viper.SetDefault("REPORT_POLL_INITIAL_INTERVAL", "2s")
	viper.SetDefault("REPORT_POLL_MAX_INTERVAL", "10s")
	viper.SetDefault("REPORT_POLL_BACKOFF_FACTOR", 1.5)
	viper.SetDefault("REPORT_MAX_WAIT", "400s")

	viper.SetDefault("RUN_TIMEOUT", "30m")
	viper.SetDefault("RUN_DRY_RUN", true) // Nunca aplica mudanças sem configuração explícita
	viper.SetDefault("RUN_FEATURES", "bid_optimization,campaign_management,keyword_discovery,negative_keywords")
	viper.SetDefault("RUN_LOOKBACK_DAYS", 14)
	viper.SetDefault("RUN_MUTATION_CONCURRENCY", 4)
	viper.SetDefault("RUN_CACHE_CONCURRENCY", 4)

	viper.SetDefault("BID_TARGET_ACOS", 0.30)
	viper.SetDefault("BID_MIN_IMPRESSIONS", 500)
	viper.SetDefault("BID_MIN_SPEND", 5.0)
	viper.SetDefault("BID_MAX_INCREASE_PERCENT", 15.0)
	viper.SetDefault("BID_MAX_DECREASE_PERCENT", 20.0)
	viper.SetDefault("BID_MIN", 0.25)
	viper.SetDefault("BID_MAX", 5.0)

	viper.SetDefault("DAYPARTING_TIMEZONE", "US/Pacific")
	viper.SetDefault("DAYPARTING_SCHEDULE", "")
	viper.SetDefault("DAYPARTING_MIN_MULTIPLIER", 0.4)
	viper.SetDefault("DAYPARTING_MAX_MULTIPLIER", 1.8)

	viper.SetDefault("CAMPAIGN_ACOS_THRESHOLD", 0.45)
	viper.SetDefault("CAMPAIGN_MIN_SPEND", 20.0)

	viper.SetDefault("KEYWORD_DISCOVERY_MIN_CLICKS", 5)
	viper.SetDefault("KEYWORD_DISCOVERY_MAX_ACOS", 0.40)
	viper.SetDefault("KEYWORD_DISCOVERY_INITIAL_BID", 0.75)
	viper.SetDefault("KEYWORD_DISCOVERY_MATCH_TYPE", "exact")

	viper.SetDefault("NEGATIVE_KEYWORDS_MIN_SPEND", 10.0)
	viper.SetDefault("NEGATIVE_KEYWORDS_MAX_ACOS", 1.0)
	viper.SetDefault("NEGATIVE_KEYWORDS_MATCH_TYPE", "negativePhrase")

	viper.SetDefault("WAREHOUSE_ENABLED", false)
	viper.SetDefault("WAREHOUSE_BATCH_SIZE", 500)
	viper.SetDefault("WAREHOUSE_AUTO_MIGRATE", false)

	viper.SetDefault("AUDIT_OUTPUT_DIR", "./logs")
	viper.SetDefault("AUDIT_PERSIST", false)

	viper.SetDefault("RENDER_API_KEY", "")
	viper.SetDefault("RENDER_SERVICE_ID", "")
	viper.SetDefault("RENDER_BASE_URL", "https://api.render.com/v1")
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("config: usando apenas variáveis de ambiente (viper não leu .env): ", err)
	}

	err := viper.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.finalize(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// finalize preenche os campos derivados depois do unmarshal
func (c *Config) finalize() error {
	if c.Ads.BaseURL == "" {
		c.Ads.BaseURL = regionEndpoints[strings.ToUpper(c.Ads.Region)]
	}

	features := make([]string, 0, len(c.Run.Features))
	for _, f := range c.Run.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	c.Run.Features = features

	windows, err := ParseSchedule(c.Dayparting.RawSchedule)
	if err != nil {
		return err
	}
	c.Dayparting.Windows = windows

	c.Database.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)

	return nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("config: não foi possível obter o diretório atual: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("config: arquivo .env carregado de ", location)
			return
		}
	}

	logrus.Debug("config: nenhum arquivo .env encontrado")
}
