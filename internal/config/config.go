package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the config file looked up in the working directory.
const ConfigFileName = "csvingest.yaml"

type ConnectionConfig struct {
	Driver         string `yaml:"driver,omitempty"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// Dataset is a named source preset: where to read, where to write and the
// declared column types.
type Dataset struct {
	URL       string           `yaml:"url"`
	Table     string           `yaml:"table"`
	BatchSize int              `yaml:"batch_size,omitempty"`
	Columns   csvingest.Schema `yaml:"columns"`
}

type FileConfig struct {
	Connection ConnectionConfig   `yaml:"connection"`
	Datasets   map[string]Dataset `yaml:"datasets"`
}

// Load reads the config file at path.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, err, csvingest.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks every configured dataset.
func (c *FileConfig) Validate() error {
	var errs []error
	for _, name := range c.DatasetNames() {
		ds := c.Datasets[name]
		if ds.BatchSize < 0 {
			errs = append(errs, fmt.Errorf("dataset %q: batch_size must not be negative: %w", name, csvingest.ErrInvalidConfig))
		}
		if len(ds.Columns) > 0 {
			if err := ds.Columns.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("dataset %q: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// DatasetNames returns the configured dataset names, sorted.
func (c *FileConfig) DatasetNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
