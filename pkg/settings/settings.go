// Package settings manages persistent user settings for the gns3lab CLI.
//
// Settings are read from ~/.gns3lab/settings.yaml, layered over built-in
// defaults, and may be overridden per key by GNS3LAB_<KEY> environment
// variables (e.g. GNS3LAB_SETTLE_DELAY=30s).
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GNS3LAB"

// Settings holds persistent user preferences.
type Settings struct {
	// ComputeID is the compute target nodes are placed on.
	ComputeID string `mapstructure:"compute_id"`

	// NoConfigOS is the OS tag that means "no day-0 configuration".
	NoConfigOS string `mapstructure:"no_config_os"`

	// SettleDelay is how long to wait after starting all nodes.
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// HTTPTimeout bounds every controller request.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	Day0Interpreter string `mapstructure:"day0_interpreter"`
	Day0ScriptDir   string `mapstructure:"day0_script_dir"`

	// InventoryFormat is "ini" or "yaml".
	InventoryFormat string `mapstructure:"inventory_format"`

	// RedisAddr enables inventory publishing when set.
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`

	SSHUser       string        `mapstructure:"ssh_user"`
	SSHPass       string        `mapstructure:"ssh_pass"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`

	// ConfigFile is the topology file used when -c is not given.
	ConfigFile string `mapstructure:"config_file"`
}

var defaults = map[string]any{
	"compute_id":       "local",
	"no_config_os":     "none",
	"settle_delay":     "10s",
	"http_timeout":     "30s",
	"day0_interpreter": "expect",
	"day0_script_dir":  ".",
	"inventory_format": "ini",
	"redis_addr":       "",
	"redis_db":         0,
	"ssh_user":         "",
	"ssh_pass":         "",
	"verify_timeout":   "120s",
	"config_file":      "topology_config.yml",
}

// Keys returns every settings key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns settings with every key at its built-in default.
func Default() *Settings {
	s, err := decode(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return s
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gns3lab_settings.yaml"
	}
	return filepath.Join(home, ".gns3lab", "settings.yaml")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields the
// defaults; environment overrides apply either way.
func LoadFrom(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	s, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("settings: %s: %w", path, err)
	}
	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	vb := &util.ValidationBuilder{}
	vb.Add(s.ComputeID != "", "compute_id must not be empty")
	if s.InventoryFormat != "ini" && s.InventoryFormat != "yaml" {
		vb.AddErrorf("inventory_format must be ini or yaml, got %q", s.InventoryFormat)
	}
	vb.Add(s.SettleDelay >= 0, "settle_delay must not be negative")
	vb.Add(s.HTTPTimeout >= 0, "http_timeout must not be negative")
	vb.Add(s.VerifyTimeout >= 0, "verify_timeout must not be negative")
	vb.Add(s.RedisDB >= 0, "redis_db must not be negative")
	return vb.Build()
}

// Get returns the string form of one key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "compute_id":
		return s.ComputeID, nil
	case "no_config_os":
		return s.NoConfigOS, nil
	case "settle_delay":
		return s.SettleDelay.String(), nil
	case "http_timeout":
		return s.HTTPTimeout.String(), nil
	case "day0_interpreter":
		return s.Day0Interpreter, nil
	case "day0_script_dir":
		return s.Day0ScriptDir, nil
	case "inventory_format":
		return s.InventoryFormat, nil
	case "redis_addr":
		return s.RedisAddr, nil
	case "redis_db":
		return strconv.Itoa(s.RedisDB), nil
	case "ssh_user":
		return s.SSHUser, nil
	case "ssh_pass":
		return s.SSHPass, nil
	case "verify_timeout":
		return s.VerifyTimeout.String(), nil
	case "config_file":
		return s.ConfigFile, nil
	}
	return "", unknownKey(key)
}

// Set parses value and assigns it to key.
func (s *Settings) Set(key, value string) error {
	var err error
	switch key {
	case "compute_id":
		s.ComputeID = value
	case "no_config_os":
		s.NoConfigOS = value
	case "settle_delay":
		s.SettleDelay, err = time.ParseDuration(value)
	case "http_timeout":
		s.HTTPTimeout, err = time.ParseDuration(value)
	case "day0_interpreter":
		s.Day0Interpreter = value
	case "day0_script_dir":
		s.Day0ScriptDir = value
	case "inventory_format":
		s.InventoryFormat = strings.ToLower(value)
	case "redis_addr":
		s.RedisAddr = value
	case "redis_db":
		s.RedisDB, err = strconv.Atoi(value)
	case "ssh_user":
		s.SSHUser = value
	case "ssh_pass":
		s.SSHPass = value
	case "verify_timeout":
		s.VerifyTimeout, err = time.ParseDuration(value)
	case "config_file":
		s.ConfigFile = value
	default:
		return unknownKey(key)
	}
	if err != nil {
		return fmt.Errorf("settings: %s: %w", key, err)
	}
	return s.Validate()
}

func unknownKey(key string) error {
	return fmt.Errorf("settings: unknown key %q: %w", key, util.ErrInvalidConfig)
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path as YAML.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	out := make(map[string]string, len(defaults))
	for _, k := range Keys() {
		v, _ := s.Get(k)
		out[k] = v
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}

	// ssh_pass may be stored here
	return os.WriteFile(path, data, 0600)
}
