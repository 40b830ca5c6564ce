package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB  int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	PreviewRows  int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	CacheEntries int    `mapstructure:"cache_entries" yaml:"cache_entries"`

	// Session store
	SessionTTLMin int `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`

	// Chart rendering
	HistogramBins     int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	ChartWidthIn      float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn     float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	EchartsAssetsHost string  `mapstructure:"echarts_assets_host" yaml:"echarts_assets_host"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		ListenAddr:    ":8501",
		MaxUploadMB:   50,
		PreviewRows:   10,
		CacheEntries:  16,
		SessionTTLMin: 60,
		HistogramBins: 40,
		ChartWidthIn:  6,
		ChartHeightIn: 4,
	}
}

// Keys lists the settable keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(c *Global, val string) error{
	"listen_addr": func(c *Global, val string) error {
		if val == "" {
			return fmt.Errorf("listen_addr must not be empty")
		}
		c.ListenAddr = val
		return nil
	},
	"max_upload_mb":   intSetter(func(c *Global, i int) { c.MaxUploadMB = i }),
	"preview_rows":    intSetter(func(c *Global, i int) { c.PreviewRows = i }),
	"cache_entries":   intSetter(func(c *Global, i int) { c.CacheEntries = i }),
	"session_ttl_min": intSetter(func(c *Global, i int) { c.SessionTTLMin = i }),
	"histogram_bins":  intSetter(func(c *Global, i int) { c.HistogramBins = i }),
	"chart_width_in":  floatSetter(func(c *Global, f float64) { c.ChartWidthIn = f }),
	"chart_height_in": floatSetter(func(c *Global, f float64) { c.ChartHeightIn = f }),
	"echarts_assets_host": func(c *Global, val string) error {
		c.EchartsAssetsHost = val
		return nil
	},
}

func intSetter(set func(*Global, int)) func(*Global, string) error {
	return func(c *Global, val string) error {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int: %v", val)
		}
		set(c, i)
		return nil
	}
}

func floatSetter(set func(*Global, float64)) func(*Global, string) error {
	return func(c *Global, val string) error {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive float: %v", val)
		}
		set(c, f)
		return nil
	}
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := set(c, val); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pulseboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the
// caller on top.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSEBOARD")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("cache_entries", d.CacheEntries)
	v.SetDefault("session_ttl_min", d.SessionTTLMin)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("chart_width_in", d.ChartWidthIn)
	v.SetDefault("chart_height_in", d.ChartHeightIn)
	v.SetDefault("echarts_assets_host", d.EchartsAssetsHost)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pulseboard"), nil
}
