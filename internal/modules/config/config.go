package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	binanceSpotURL    = "BINANCE_SPOT_URL"
	binanceFutURL     = "BINANCE_FUTURES_URL"
	storeDriverENV    = "STORE_DRIVER"
	storePathENV      = "BOT_STORE_PATH"
	logLevelENV       = "LOG_LEVEL"
	defaultIntervalEN = "DEFAULT_INTERVAL"
)

// Config ...
type Config struct {
	Telegram struct {
		Token   string  `yaml:"token"`
		ChatIDs []int64 `yaml:"chat_ids"`
	} `yaml:"telegram"`

	Binance struct {
		SpotURL      string        `yaml:"spot_url"`
		FuturesURL   string        `yaml:"futures_url"`
		RecvWindowMs int64         `yaml:"recv_window_ms"`
		Timeout      time.Duration `yaml:"timeout"`
		RPS          float64       `yaml:"rps"`
		Burst        int           `yaml:"burst"`
	} `yaml:"binance"`

	Store struct {
		Driver string `yaml:"driver"` // file | postgres
		Path   string `yaml:"path"`
	} `yaml:"store"`

	DB string `yaml:"db_dsn"`

	Monitor Monitor `yaml:"monitor"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`
}

// Monitor параметры детектора.
type Monitor struct {
	DefaultInterval  string        `yaml:"default_interval"` // интервал для macd/ma
	AllowedIntervals []string      `yaml:"allowed_intervals"`
	LowFrequency     time.Duration `yaml:"low_frequency"`
	HighFrequency    time.Duration `yaml:"high_frequency"`
	Window           time.Duration `yaml:"window"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	DefaultThreshold float64       `yaml:"default_threshold"`

	PriceLimit  int `yaml:"price_limit"`
	CrossLimit  int `yaml:"cross_limit"`
	MACDMinRows int `yaml:"macd_min_rows"`
	MAMinRows   int `yaml:"ma_min_rows"`
	MAFast      int `yaml:"ma_fast"`
	MASlow      int `yaml:"ma_slow"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Binance.SpotURL = "https://api.binance.com"
	cfg.Binance.FuturesURL = "https://fapi.binance.com"
	cfg.Binance.RecvWindowMs = 5000
	cfg.Binance.Timeout = 10 * time.Second
	cfg.Binance.RPS = 20
	cfg.Binance.Burst = 40

	cfg.Store.Driver = "file"
	cfg.Store.Path = "data/profiles.json"

	cfg.Monitor = Monitor{
		DefaultInterval:  "15m",
		AllowedIntervals: []string{"5m", "15m", "60m", "240m"},
		LowFrequency:     60 * time.Second,
		HighFrequency:    5 * time.Second,
		Window:           10 * time.Second,
		CacheTTL:         5 * time.Second,
		DefaultThreshold: 3.0,
		PriceLimit:       2,
		CrossLimit:       100,
		MACDMinRows:      50,
		MAMinRows:        30,
		MAFast:           9,
		MASlow:           26,
	}

	cfg.Service.AdminPort = 8080
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Tracing.Host = "localhost"
	cfg.Tracing.Port = 6831
	return cfg
}

func NewConfig() (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	configFileName := v.GetString(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}

	cfg := Default()
	if err := cfg.loadFile("configs/" + configFileName); err != nil {
		return nil, err
	}

	cfg.applyEnv(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open config %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(v *viper.Viper) {
	if token := v.GetString(tokenTelegramENV); token != "" {
		c.Telegram.Token = token
	}
	if dsn := v.GetString(databaseDSN); dsn != "" {
		c.DB = dsn
	}
	if u := v.GetString(binanceSpotURL); u != "" {
		c.Binance.SpotURL = u
	}
	if u := v.GetString(binanceFutURL); u != "" {
		c.Binance.FuturesURL = u
	}
	if d := v.GetString(storeDriverENV); d != "" {
		c.Store.Driver = d
	}
	if p := v.GetString(storePathENV); p != "" {
		c.Store.Path = p
	}
	if l := v.GetString(logLevelENV); l != "" {
		c.Log.Level = l
	}
	if i := v.GetString(defaultIntervalEN); i != "" {
		c.Monitor.DefaultInterval = i
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(c.Monitor.AllowedIntervals, c.Monitor.DefaultInterval) {
		return fmt.Errorf("default_interval %q not in allowed_intervals %v",
			c.Monitor.DefaultInterval, c.Monitor.AllowedIntervals)
	}
	switch c.Store.Driver {
	case "file", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.DB == "" {
		return fmt.Errorf("store driver postgres requires db_dsn")
	}
	if c.Monitor.LowFrequency <= 0 || c.Monitor.HighFrequency <= 0 {
		return fmt.Errorf("polling cadence must be positive")
	}
	return nil
}
