package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/chain/simulated"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/protocol/stablelayer"
	timescheduler "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/scheduler/gocron"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir      string
	Network      domain.Network
	Brand        string
	StoreType    string
	LogLevel     int
	SettleDelay  time.Duration
	AdvanceDelay time.Duration

	PackageID                    string
	RegistryID                   string
	RegistryInitialSharedVersion uint64

	SimUSDCFaucet string

	repo      ports.RepoManager
	chain     *simulated.Chain
	adapter   ports.ProtocolAdapter
	scheduler ports.SchedulerService
	svc       *application.Service
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir                      = "DATADIR"
	Network                      = "NETWORK"
	Brand                        = "BRAND"
	StoreType                    = "STORE_TYPE"
	LogLevel                     = "LOG_LEVEL"
	SettleDelay                  = "SETTLE_DELAY"
	AdvanceDelay                 = "ADVANCE_DELAY"
	PackageID                    = "PACKAGE_ID"
	RegistryID                   = "REGISTRY_ID"
	RegistryInitialSharedVersion = "REGISTRY_INITIAL_SHARED_VERSION"
	SimUSDCFaucet                = "SIM_USDC_FAUCET"

	defaultDatadir       = btcutil.AppDataDir("oneclick", false)
	defaultNetwork       = string(domain.DefaultNetwork)
	defaultBrand         = domain.DefaultBrandKey
	defaultStoreType     = db.FileStore
	defaultLogLevel      = 4
	defaultSettleDelay   = application.DefaultSettleDelay
	defaultAdvanceDelay  = application.DefaultAdvanceDelay
	defaultSimUSDCFaucet = "1000"

	// SimGasFaucet is the SUI every faucet request adds for gas.
	SimGasFaucet = "1"
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("ONECLICK")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Network, defaultNetwork)
	viper.SetDefault(Brand, defaultBrand)
	viper.SetDefault(StoreType, defaultStoreType)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(SettleDelay, defaultSettleDelay)
	viper.SetDefault(AdvanceDelay, defaultAdvanceDelay)
	viper.SetDefault(SimUSDCFaucet, defaultSimUSDCFaucet)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}
	if err := readConfigFile(); err != nil {
		return nil, fmt.Errorf("error while reading config file: %s", err)
	}

	cfg := &Config{
		Datadir:                      viper.GetString(Datadir),
		Network:                      domain.Network(strings.ToLower(viper.GetString(Network))),
		Brand:                        viper.GetString(Brand),
		StoreType:                    viper.GetString(StoreType),
		LogLevel:                     viper.GetInt(LogLevel),
		SettleDelay:                  viper.GetDuration(SettleDelay),
		AdvanceDelay:                 viper.GetDuration(AdvanceDelay),
		PackageID:                    viper.GetString(PackageID),
		RegistryID:                   viper.GetString(RegistryID),
		RegistryInitialSharedVersion: viper.GetUint64(RegistryInitialSharedVersion),
		SimUSDCFaucet:                viper.GetString(SimUSDCFaucet),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

// readConfigFile loads an optional config.{toml,yaml,json} from the datadir.
// Env vars take precedence over it.
func readConfigFile() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(viper.GetString(Datadir))
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	log.Debugf("loaded config file %s", viper.ConfigFileUsed())
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, ok := c.Network.Config(); !ok {
		return fmt.Errorf(
			"network not supported, please select one of: %s", joinNetworks(domain.Networks()),
		)
	}
	if _, ok := domain.BrandByKey(c.Brand); !ok {
		return fmt.Errorf("unknown brand %s", c.Brand)
	}
	if !db.IsSupportedStoreType(c.StoreType) {
		return fmt.Errorf(
			"store type not supported, please select one of: %s",
			strings.Join(db.SupportedStoreTypes(), " | "),
		)
	}
	if c.LogLevel < int(log.PanicLevel) || c.LogLevel > int(log.TraceLevel) {
		return fmt.Errorf("invalid log level %d, must be in range [0, 6]", c.LogLevel)
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("invalid settle delay, must be positive")
	}
	if c.AdvanceDelay <= 0 {
		return fmt.Errorf("invalid advance delay, must be positive")
	}
	if _, err := amount.Parse(c.SimUSDCFaucet, domain.DefaultDecimals); err != nil {
		return fmt.Errorf("invalid simulated usdc faucet amount: %s", err)
	}
	return nil
}

// ProtocolConfigs returns the known deployments with the configured
// overrides applied to the selected network.
func (c *Config) ProtocolConfigs() map[domain.Network]stablelayer.Config {
	configs := stablelayer.DefaultConfigs()
	configs[c.Network] = configs[c.Network].WithOverrides(
		c.PackageID, c.RegistryID, c.RegistryInitialSharedVersion,
	)
	return configs
}

func (c *Config) AppService() (*application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) RepoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		if err := c.repoManager(); err != nil {
			return nil, err
		}
	}
	return c.repo, nil
}

// Chain is the simulated chain backing signer and balances.
func (c *Config) Chain() (*simulated.Chain, error) {
	if c.chain == nil {
		if err := c.chainService(); err != nil {
			return nil, err
		}
	}
	return c.chain, nil
}

// Close stops the scheduler and releases the store.
func (c *Config) Close() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.repo != nil {
		c.repo.Close()
	}
}

func (c *Config) repoManager() error {
	var storeConfig []interface{}

	switch c.StoreType {
	case db.InMemoryStore:
	case "badger":
		storeConfig = []interface{}{c.Datadir, log.StandardLogger()}
	default:
		storeConfig = []interface{}{c.Datadir}
	}

	svc, err := db.NewService(db.ServiceConfig{
		StoreType:   c.StoreType,
		StoreConfig: storeConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) chainService() error {
	repo, err := c.RepoManager()
	if err != nil {
		return err
	}
	chain, err := simulated.NewChain(simulated.Config{Store: repo.Store()})
	if err != nil {
		return err
	}
	c.chain = chain
	return nil
}

func (c *Config) adapterService() error {
	chain, err := c.Chain()
	if err != nil {
		return err
	}
	adapter, err := stablelayer.NewAdapter(
		c.ProtocolConfigs(), stablelayer.DefaultCapabilities(), chain,
	)
	if err != nil {
		return err
	}
	c.adapter = adapter
	return nil
}

func (c *Config) schedulerService() {
	c.scheduler = timescheduler.NewScheduler()
	c.scheduler.Start()
}

func (c *Config) appService() error {
	if err := c.adapterService(); err != nil {
		return err
	}
	c.schedulerService()

	state, err := application.NewAppState(c.Network, c.Brand)
	if err != nil {
		return err
	}

	svc, err := application.NewService(application.Config{
		SettleDelay:  c.SettleDelay,
		AdvanceDelay: c.AdvanceDelay,
	}, state, c.adapter, c.chain, c.chain, c.repo, c.scheduler)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func joinNetworks(networks []domain.Network) string {
	list := make([]string, 0, len(networks))
	for _, n := range networks {
		list = append(list, n.String())
	}
	return strings.Join(list, " | ")
}
