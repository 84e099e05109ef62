package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig holds the fallback invoicing parameters used when the
// invoice settings row is absent from the database.
type InvoicingConfig struct {
	DefaultVATRate float64 `mapstructure:"defaultVatRate"`
	Currency       string  `mapstructure:"currency"`
	CurrencyLabel  string  `mapstructure:"currencyLabel"`
	AutoGenerate   bool    `mapstructure:"autoGenerate"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		DefaultVATRate: 20,
		Currency:       "MAD",
		CurrencyLabel:  "Dirhams",
		AutoGenerate:   true,
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfigHolder wraps a fixed configuration. Used by tests
// and tooling that never watch a config file.
func NewStaticInvoicingConfigHolder(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fitora/config") // Volume-mounted config
	v.AddConfigPath("/etc/fitora")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("FITORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.defaultVatRate", defaults.DefaultVATRate)
	v.SetDefault("invoicing.currency", defaults.Currency)
	v.SetDefault("invoicing.currencyLabel", defaults.CurrencyLabel)
	v.SetDefault("invoicing.autoGenerate", defaults.AutoGenerate)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if cfg.DefaultVATRate < 0 || cfg.DefaultVATRate > 100 {
		return errors.New("invoicing.defaultVatRate must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("invoicing.currency cannot be empty")
	}
	if strings.TrimSpace(cfg.CurrencyLabel) == "" {
		return errors.New("invoicing.currencyLabel cannot be empty")
	}
	return nil
}
