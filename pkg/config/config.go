package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scarnyc/spacewalks/pkg/validation"
)

const (
	DefaultDatasetURL = "https://gist.githubusercontent.com/scarnyc/5751e46d68a3dcecbe3469982a508763/raw" +
		"/c2ed7fbc522dba327192a655c2e027b62ff39ff4/spacewalks_eva.csv"
	DefaultRepoURL  = "https://github.com/scarnyc/space-walking-russian-and-us-evas"
	DefaultStoreURL = "sqlite:///:memory:"
	EnvPrefix       = "EVADASH"
)

type Duration struct {
	time.Duration
}

func (d *Duration) parse(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case int:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return d.parse(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}

	return d.parse(v)
}

func (d *Duration) UnmarshalText(b []byte) error {
	return d.parse(string(b))
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

type ServerConfig struct {
	Address         string   `yaml:"address"          validate:"required"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type DatasetConfig struct {
	URL             string   `yaml:"url"              validate:"required_without=Path,httpurl"`
	Path            string   `yaml:"path"`
	SnapshotPath    string   `yaml:"snapshot_path"`
	UserAgent       string   `yaml:"user_agent"`
	Timeout         Duration `yaml:"timeout"`
	Retries         int      `yaml:"retries"          validate:"gte=1,lte=10"`
	Backoff         Duration `yaml:"backoff"`
	MaxBackoff      Duration `yaml:"max_backoff"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

type StoreConfig struct {
	URL           string   `yaml:"url"            validate:"required,storeurl"`
	SlowThreshold Duration `yaml:"slow_threshold"`
}

type DashboardConfig struct {
	Variant string            `yaml:"variant"  validate:"oneof=classic header compact"`
	RepoURL string            `yaml:"repo_url" validate:"httpurl"`
	Colors  map[string]string `yaml:"colors"   validate:"dive,keys,required,endkeys,hexcolor"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Store     StoreConfig     `yaml:"store"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	LogLevel  string          `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Version   string          `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8050",
			ReadTimeout:     Duration{5 * time.Second},
			WriteTimeout:    Duration{60 * time.Second},
			IdleTimeout:     Duration{120 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Dataset: DatasetConfig{
			URL:        DefaultDatasetURL,
			UserAgent:  "evadash",
			Timeout:    Duration{30 * time.Second},
			Retries:    3,
			Backoff:    Duration{500 * time.Millisecond},
			MaxBackoff: Duration{5 * time.Second},
		},
		Store: StoreConfig{
			URL:           DefaultStoreURL,
			SlowThreshold: Duration{200 * time.Millisecond},
		},
		Dashboard: DashboardConfig{
			Variant: "classic",
			RepoURL: DefaultRepoURL,
			Colors: map[string]string{
				"Russia": "#FF0000",
				"USA":    "#0000FF",
			},
		},
		LogLevel: "info",
		Version:  "dev",
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and EVADASH_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}

		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}

	if err := applyEnv(cfg, EnvPrefix, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	validate, err := validation.NewValidator()
	if err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
