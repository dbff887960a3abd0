package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/wims-erp/wims/internal/orders"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr          string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	SessionRememberTTL time.Duration `envconfig:"SESSION_REMEMBER_TTL" default:"720h"`

	// OrderCompletionPolicy decides when approved orders complete:
	// on_bill or manual.
	OrderCompletionPolicy string `envconfig:"ORDER_COMPLETION_POLICY" default:"on_bill"`

	CompanyName    string `envconfig:"COMPANY_NAME" default:"WIMS Beverages"`
	CompanyAddress string `envconfig:"COMPANY_ADDRESS" default:""`
	CompanyPhone   string `envconfig:"COMPANY_PHONE" default:""`
	CompanyGSTIN   string `envconfig:"COMPANY_GSTIN" default:""`

	GotenbergURL     string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	InvoiceExportDir string `envconfig:"INVOICE_EXPORT_DIR" default:"./exports"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := orders.ParseCompletionPolicy(cfg.OrderCompletionPolicy); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CompletionPolicy returns the validated order completion policy.
func (c *Config) CompletionPolicy() orders.CompletionPolicy {
	policy, err := orders.ParseCompletionPolicy(c.OrderCompletionPolicy)
	if err != nil {
		return orders.CompleteOnBill
	}
	return policy
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
