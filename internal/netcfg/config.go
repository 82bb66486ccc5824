// Package netcfg loads the gateway's TOML configuration with viper,
// following the same load-then-validate shape the rest of the stack uses
// for its own config layers.
package netcfg

import (
	"github.com/spf13/viper"

	"github.com/hardsat/rad/internal/faulterr"
)

// GatewayConfig configures a proxy or node process.
type GatewayConfig struct {
	ServerAddress string   `mapstructure:"server_address"`
	ServiceImage  string   `mapstructure:"service_image"`
	AuthURL       string   `mapstructure:"auth_url"`
	Nodes         []string `mapstructure:"nodes"`
}

// Load reads a TOML config file at path and validates the required fields.
func Load(path string) (*GatewayConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, faulterr.Wrap(faulterr.IO, "netcfg: read config file", err)
	}

	var cfg GatewayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, faulterr.Wrap(faulterr.ProtocolViolation, "netcfg: decode config", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *GatewayConfig) validate() error {
	if c.ServerAddress == "" {
		return faulterr.New(faulterr.ProtocolViolation, "netcfg: server_address is required")
	}
	if c.AuthURL == "" {
		return faulterr.New(faulterr.ProtocolViolation, "netcfg: auth_url is required")
	}
	if len(c.Nodes) == 0 {
		return faulterr.New(faulterr.ProtocolViolation, "netcfg: at least one node is required")
	}
	return nil
}
