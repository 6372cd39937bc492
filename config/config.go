package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/icodeforyou/spotprice-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16 `validate:"gte=0"`
}

type AppConfigDatabase struct {
	// Sqlite file holding the log table
	Path string `validate:"required"`
}

type AppConfigPriceSource struct {
	// Providers in priority order: "hvakosterstrommen", "elprisetjustnu", "nordpool"
	Providers []string `mapstructure:"providers" validate:"dive,oneof=hvakosterstrommen elprisetjustnu nordpool"`
	Area      string   `mapstructure:"area" validate:"required"` // "NO1" .. "NO5", "SE1" .. "SE4"
	Currency  *string  `mapstructure:"currency"`                 // Only used by nordpool, default: "NOK"
	// Timeout in seconds for a single upstream request, default: 10
	TimeoutSec *int `mapstructure:"timeout_sec" validate:"omitempty,min=1"`
	// Cron expression for warming the cache with today and tomorrow, default: "15 13 * * *"
	PrefetchAt *string `mapstructure:"prefetch_at"`
}

func (p AppConfigPriceSource) GetProviders() []string {
	if len(p.Providers) == 0 {
		return []string{"hvakosterstrommen", "nordpool"}
	}
	return p.Providers
}

func (p AppConfigPriceSource) GetCurrency() string {
	if p.Currency == nil {
		return "NOK"
	}
	return *p.Currency
}

func (p AppConfigPriceSource) GetTimeout() time.Duration {
	if p.TimeoutSec == nil {
		return 10 * time.Second
	}
	return time.Duration(*p.TimeoutSec) * time.Second
}

func (p AppConfigPriceSource) GetPrefetchAt() string {
	if p.PrefetchAt == nil {
		return "15 13 * * *"
	}
	return *p.PrefetchAt
}

// Grid fee (nettleie) in currency per kWh
type AppConfigFees struct {
	Full       *float64 `mapstructure:"full"`       // default: 0.225
	Discounted *float64 `mapstructure:"discounted"` // Weekends and 22:00-06:00, default: 0.145
}

func (f AppConfigFees) GetFull() float64 {
	if f.Full == nil {
		return 0.225
	}
	return *f.Full
}

func (f AppConfigFees) GetDiscounted() float64 {
	if f.Discounted == nil {
		return 0.145
	}
	return *f.Discounted
}

type AppConfigClassifier struct {
	// Number of hours per day flagged as high cost, default: 8
	HighCostHours *int `mapstructure:"high_cost_hours" validate:"omitempty,gte=0"`
	// Hours of day that are demoted first when ties give too many high cost hours
	PreferredHours []int `mapstructure:"preferred_hours" validate:"dive,gte=0,lte=23"`
}

func (c AppConfigClassifier) GetHighCostHours() int {
	if c.HighCostHours == nil {
		return 8
	}
	return *c.HighCostHours
}

func (c AppConfigClassifier) GetPreferredHours() []int {
	if c.PreferredHours == nil {
		return []int{5, 6, 7, 17, 18, 19}
	}
	return slices.Clone(c.PreferredHours)
}

type AppConfigCache struct {
	// Number of days kept in memory, default: 7
	Retention *int `mapstructure:"retention" validate:"omitempty,min=1"`
}

func (c AppConfigCache) GetRetention() int {
	if c.Retention == nil {
		return 7
	}
	return *c.Retention
}

type AppConfigMqtt struct {
	Enabled  bool
	Host     string `validate:"required_if=Enabled true"`
	Port     int16
	Username string
	Password string
	// Topic receiving the current hour, default: "spotprice/current_hour"
	Topic *string `mapstructure:"topic"`
}

func (m AppConfigMqtt) GetTopic() string {
	if m.Topic == nil {
		return "spotprice/current_hour"
	}
	return *m.Topic
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries" validate:"omitempty,min=1"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api         AppConfigApi
	Database    AppConfigDatabase
	PriceSource AppConfigPriceSource `mapstructure:"price_source"`
	Fees        AppConfigFees        `mapstructure:"fees"`
	Classifier  AppConfigClassifier  `mapstructure:"classifier"`
	Cache       AppConfigCache       `mapstructure:"cache"`
	Mqtt        AppConfigMqtt        `mapstructure:"mqtt"`
	Logging     AppConfigLogging     `mapstructure:"logging"`
	// Local time zone for discount windows and day keys, default: "Europe/Oslo"
	Timezone *string `mapstructure:"timezone"`
}

func (c AppConfig) GetTimezone() string {
	if c.Timezone == nil {
		return "Europe/Oslo"
	}
	return *c.Timezone
}

var validate = validator.New()

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	return unmarshal()
}

// Watch calls onChange with the reloaded config every time the config file is
// written. Reloads that fail to parse or validate are logged and skipped.
func Watch(logger *slog.Logger, onChange func(*AppConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		logger.Info("config file changed", slog.String("file", e.Name))
		c, err := unmarshal()
		if err != nil {
			logger.Error("ignoring config change", slog.Any("error", err))
			return
		}
		onChange(c)
	})
	viper.WatchConfig()
}

func unmarshal() (*AppConfig, error) {
	var c AppConfig
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &c, nil
}
