// Package config resolves lexctl settings from defaults, an optional YAML
// file named by LEXCTL_CONFIG, and LEXCTL_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/dimbot/lexctl/internal/awsclient"
	"github.com/dimbot/lexctl/internal/catalog"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/target"
	"github.com/dimbot/lexctl/internal/tracing"
)

// FileEnv names the optional YAML config file.
const FileEnv = "LEXCTL_CONFIG"

// Backends.
const (
	BackendAWS    = "aws"
	BackendMemory = "memory"
)

// Config is the full CLI configuration.
type Config struct {
	Region     string `yaml:"region" env:"REGION"`
	Profile    string `yaml:"profile" env:"PROFILE"`
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	Backend    string `yaml:"backend" env:"BACKEND"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`
	CatalogDir string `yaml:"catalog_dir" env:"CATALOG_DIR"`

	Bot         Bot            `yaml:"bot" envPrefix:"BOT_"`
	Fulfillment Fulfillment    `yaml:"fulfillment" envPrefix:"FULFILLMENT_"`
	Receipt     Receipt        `yaml:"receipt" envPrefix:"RECEIPT_"`
	OTel        tracing.Config `yaml:"otel" envPrefix:"OTEL_"`
}

// Bot names the bot and alias to provision.
type Bot struct {
	Name          string `yaml:"name" env:"NAME"`
	Alias         string `yaml:"alias" env:"ALIAS"`
	Locale        string `yaml:"locale" env:"LOCALE"`
	ChildDirected bool   `yaml:"child_directed" env:"CHILD_DIRECTED"`
}

// Fulfillment describes the function intents hand off to and the
// permission that lets the bot service call it.
type Fulfillment struct {
	FunctionName   string `yaml:"function_name" env:"FUNCTION_NAME"`
	URI            string `yaml:"uri" env:"URI"`
	MessageVersion string `yaml:"message_version" env:"MESSAGE_VERSION"`
	Principal      string `yaml:"principal" env:"PRINCIPAL"`
	StatementID    string `yaml:"statement_id" env:"STATEMENT_ID"`
	Action         string `yaml:"action" env:"ACTION"`
}

// Receipt lists the stores run receipts are published to.
type Receipt struct {
	Stores         []target.Config `yaml:"stores" envPrefix:"STORES"`
	MaxConcurrency int             `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Region:   "us-east-1",
		Backend:  BackendAWS,
		LogLevel: "info",
		Bot: Bot{
			Name:   "dimbot",
			Alias:  "dim",
			Locale: "en-US",
		},
		Fulfillment: Fulfillment{
			FunctionName:   "update_service_data_table",
			MessageVersion: "1.0",
			Principal:      descriptor.DefaultPrincipal,
			StatementID:    "ID-1",
			Action:         descriptor.DefaultAction,
		},
		Receipt: Receipt{MaxConcurrency: 4},
		OTel:    tracing.DefaultConfig(),
	}
}

// Load resolves and validates the configuration.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LEXCTL_"}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	cfg.fillStoreNames()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// fillStoreNames gives unnamed stores a positional name.
func (c *Config) fillStoreNames() {
	for i := range c.Receipt.Stores {
		if c.Receipt.Stores[i].Name == "" {
			c.Receipt.Stores[i].Name = fmt.Sprintf("%s-%d", c.Receipt.Stores[i].Type, i)
		}
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendAWS:
		if c.Fulfillment.URI == "" {
			errs = append(errs, errors.New("LEXCTL_FULFILLMENT_URI is required for the aws backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", BackendAWS, BackendMemory, c.Backend))
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("log_level %q is not a valid level", c.LogLevel))
	}
	if c.Receipt.MaxConcurrency < 1 {
		errs = append(errs, errors.New("receipt max_concurrency must be at least 1"))
	}
	for _, s := range c.Receipt.Stores {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.OTel.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ClientConfig returns the AWS client settings.
func (c Config) ClientConfig() awsclient.Config {
	return awsclient.Config{Region: c.Region, Profile: c.Profile, Endpoint: c.Endpoint}
}

// CatalogOptions returns the deployment values the catalog needs.
func (c Config) CatalogOptions() catalog.Options {
	uri := c.Fulfillment.URI
	if uri == "" {
		// The memory backend never invokes the hook.
		uri = "arn:aws:lambda:" + c.Region + ":000000000000:function:" + c.Fulfillment.FunctionName
	}
	return catalog.Options{
		Fulfillment:   descriptor.FulfillmentHook{URI: uri, MessageVersion: c.Fulfillment.MessageVersion},
		BotName:       c.Bot.Name,
		Locale:        c.Bot.Locale,
		ChildDirected: c.Bot.ChildDirected,
	}
}

// Permission returns the invoke permission statement.
func (c Config) Permission() descriptor.PermissionSpec {
	return descriptor.PermissionSpec{
		FunctionName: c.Fulfillment.FunctionName,
		Principal:    c.Fulfillment.Principal,
		StatementID:  c.Fulfillment.StatementID,
		Action:       c.Fulfillment.Action,
	}
}
