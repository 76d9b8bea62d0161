package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = "gribble.yaml"

// Profile is a named set of connection defaults.
type Profile struct {
	Name     string `mapstructure:"name"`
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Encrypt  string `mapstructure:"encrypt"`
}

// Profiles is the content of a profile file.
type Profiles struct {
	Default  string    `mapstructure:"default"`
	Profiles []Profile `mapstructure:"profiles"`
}

// LoadProfiles reads a profile file. A missing file yields no profiles.
func LoadProfiles(path string) (*Profiles, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return &Profiles{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	profiles := &Profiles{}
	if err := v.Unmarshal(profiles); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return profiles, nil
}

// Select returns the named profile, or the default one when name is empty,
// or the first one when no default is set.
func (p *Profiles) Select(name string) *Profile {
	if len(p.Profiles) == 0 {
		return nil
	}
	if name == "" {
		name = p.Default
	}
	if name == "" {
		return &p.Profiles[0]
	}
	for i := range p.Profiles {
		if p.Profiles[i].Name == name {
			return &p.Profiles[i]
		}
	}
	return nil
}

// Fill sets the fields of config that are still empty.
func (p *Profile) Fill(config *ConnectionConfig) {
	if config.Server == "" {
		config.Server = p.Server
	}
	if config.Port == 0 {
		config.Port = p.Port
	}
	if config.Database == "" {
		config.Database = p.Database
	}
	if config.User == "" {
		config.User = p.User
	}
	if config.Password == "" {
		config.Password = p.Password
	}
	if config.Encrypt == "" {
		config.Encrypt = p.Encrypt
	}
}
