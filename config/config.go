package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config is built once at startup and passed to every component.
type Config struct {
	// NodeURL is the Stacks node RPC base URL serving /v2/pox.
	NodeURL string `validate:"required,url"`

	// Port is the TCP port the exporter listens on.
	Port int `validate:"min=1,max=65535"`

	// StackerAddresses are checked for next-cycle registration. Empty disables the check.
	StackerAddresses []string

	// StackerAPIURL serves /extended/v1/address/{addr}/stx. Only used, and
	// only validated, when StackerAddresses is non-empty.
	StackerAPIURL string

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

// RegistrationEnabled reports whether stacker addresses were configured.
func (c Config) RegistrationEnabled() bool {
	return len(c.StackerAddresses) > 0
}

// Validate checks the struct tags and, when registration checking is on,
// the stacker API URL.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.RegistrationEnabled() {
		if err := validate.Var(c.StackerAPIURL, "required,url"); err != nil {
			return fmt.Errorf("invalid config: stacker API URL %q: %w", c.StackerAPIURL, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("node_url", "http://localhost:20443")
	v.SetDefault("port", 9816)
	v.SetDefault("stacker_addresses", "")
	v.SetDefault("stacker_api_url", "https://api.hiro.so")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.BindEnv("node_url", "STACKS_NODE_URL")
	v.BindEnv("port", "POX_EXPORTER_PORT")
	v.BindEnv("stacker_addresses", "STACKER_ADDRESSES")
	v.BindEnv("stacker_api_url", "STACKER_API_URL")
	v.BindEnv("log.level", "POX_EXPORTER_LOG_LEVEL")
	v.BindEnv("log.file", "POX_EXPORTER_LOG_FILE")

	return v
}

// Load reads an optional config file, then the environment, into a Config.
func Load(configFile string) (*Config, error) {
	v := New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper converts resolved viper values into a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	port, err := parsePort(v.Get("port"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NodeURL:          trimBaseURL(v.GetString("node_url")),
		Port:             port,
		StackerAddresses: ParseAddresses(v.Get("stacker_addresses")),
		StackerAPIURL:    trimBaseURL(v.GetString("stacker_api_url")),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFile:          v.GetString("log.file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAddresses accepts a comma-separated string (environment) or a list
// (config file) and returns the trimmed, non-empty addresses in order.
func ParseAddresses(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, ",")
	default:
		for _, item := range cast.ToStringSlice(val) {
			parts = append(parts, strings.Split(item, ",")...)
		}
	}

	var addrs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

// parsePort reads the port as a base-10 integer, so "010" is 10 and hex or
// octal prefixes are rejected.
func parsePort(raw interface{}) (int, error) {
	s := strings.TrimSpace(cast.ToString(raw))
	port, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	return int(port), nil
}

func trimBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
