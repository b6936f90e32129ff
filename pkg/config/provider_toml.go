package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TOMLProvider implements ConfigProvider for TOML configuration files
type TOMLProvider struct {
	filename string
}

// NewTOMLProvider creates a new TOML configuration provider
func NewTOMLProvider(filename string) *TOMLProvider {
	return &TOMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from TOML file.  Unknown keys
// are an error.
func (t *TOMLProvider) LoadConfig() (*ConfigData, error) {
	var tomlConfig fileConfig
	md, err := toml.DecodeFile(t.filename, &tomlConfig)
	if err != nil {
		return nil, fmt.Errorf("error parsing %v: %w", t.filename, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("error parsing %v: unknown keys %v", t.filename, undecoded)
	}

	return tomlConfig.toConfigData()
}

// Close is a no-op for TOML provider
func (t *TOMLProvider) Close() error {
	return nil
}
