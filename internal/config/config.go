package config

import (
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"strings"
	"time"
)

type Config struct {
	Env      string
	Network  string
	Index    string
	Debug    bool
	LogPath  string
	ApiPort  string
	CacheTTL time.Duration

	PersistInterval time.Duration

	Contracts     ContractsConfig
	Marketplace   MarketplaceConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type ContractsConfig struct {
	Deployer    entity.Principal
	Registry    string
	Marketplace string
	Collections []string
}

type MarketplaceConfig struct {
	PlatformOwner entity.Principal
	MinPrice      uint64
	MaxPrice      uint64
	Fee           uint64
	MaxFee        uint64
}

type AwsConfig struct {
	AccessKey    string
	SecretKey    string
	Region       string
	SaleQueueUrl string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	BulkPersistCount int
	Refresh          string
}

const defaultDeployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func Init() {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Warn("No .env file loaded")
	}

	initLogger()
}

func initLogger() {
	cfg := Get()
	if err := log.NewLogger(cfg.LogPath, cfg.Debug); err != nil {
		zap.L().With(zap.Error(err), zap.String("path", cfg.LogPath)).Fatal("Failed to create logger")
	}
}

func (c Config) RegistryPrincipal() entity.Principal {
	return c.Contracts.Deployer.Contract(c.Contracts.Registry)
}

func (c Config) MarketplacePrincipal() entity.Principal {
	return c.Contracts.Deployer.Contract(c.Contracts.Marketplace)
}

func Get() *Config {
	v := viper.New()
	v.AutomaticEnv()

	deployer := entity.Principal(getString(v, "DEPLOYER", defaultDeployer))

	return &Config{
		Env:             getString(v, "ENV", "dev"),
		Network:         getString(v, "NETWORK", "devnet"),
		Index:           getString(v, "INDEX_NAME", "marketplace"),
		Debug:           getBool(v, "DEBUG", false),
		LogPath:         getString(v, "LOG_PATH", "./var/marketplace.log"),
		ApiPort:         getString(v, "API_PORT", "3999"),
		CacheTTL:        getDuration(v, "CACHE_TTL", 30*time.Second),
		PersistInterval: getDuration(v, "PERSIST_INTERVAL", 5*time.Second),
		Contracts: ContractsConfig{
			Deployer:    deployer,
			Registry:    getString(v, "REGISTRY_CONTRACT", "asset-registry"),
			Marketplace: getString(v, "MARKETPLACE_CONTRACT", "nft-marketplace"),
			Collections: getSlice(v, "COLLECTIONS", []string{"physical-assets"}, ","),
		},
		Marketplace: MarketplaceConfig{
			PlatformOwner: entity.Principal(getString(v, "PLATFORM_OWNER", string(deployer))),
			MinPrice:      getUint64(v, "MIN_PRICE", entity.DefaultMinPrice),
			MaxPrice:      getUint64(v, "MAX_PRICE", entity.DefaultMaxPrice),
			Fee:           getUint64(v, "PLATFORM_FEE", entity.DefaultFee),
			MaxFee:        getUint64(v, "MAX_FEE", entity.DefaultMaxFee),
		},
		Aws: AwsConfig{
			AccessKey:    getString(v, "AWS_ACCESS_KEY_ID", ""),
			SecretKey:    getString(v, "AWS_SECRET_KEY_ID", ""),
			Region:       getString(v, "AWS_REGION", ""),
			SaleQueueUrl: getString(v, "SQS_SALE_QUEUE_URL", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice(v, "ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool(v, "ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool(v, "ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool(v, "ELASTIC_SEARCH_DEBUG", false),
			Username:         getString(v, "ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString(v, "ELASTIC_SEARCH_PASSWORD", ""),
			BulkPersistCount: getInt(v, "ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString(v, "ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(v *viper.Viper, key string, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}

	return defaultValue
}

func getInt(v *viper.Viper, key string, defaultValue int) int {
	v.SetDefault(key, defaultValue)
	return v.GetInt(key)
}

func getUint64(v *viper.Viper, key string, defaultValue uint64) uint64 {
	v.SetDefault(key, defaultValue)
	return v.GetUint64(key)
}

func getBool(v *viper.Viper, key string, defaultValue bool) bool {
	v.SetDefault(key, defaultValue)
	return v.GetBool(key)
}

func getDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	v.SetDefault(key, defaultValue)
	return v.GetDuration(key)
}

func getSlice(v *viper.Viper, key string, defaultVal []string, sep string) []string {
	valStr := getString(v, key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
