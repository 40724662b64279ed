package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IGNITION_RPC.
const EnvPrefix = "IGNITION"

// SnapshotConfig holds settings for the snapshot command.
type SnapshotConfig struct {
	RPCURL         string
	Pools          []string
	Blueprint      string
	FromBlock      uint64
	ToBlock        uint64
	BatchSize      uint64
	DesiredBins    uint32
	Out            string
	Checkpoint     string
	CheckpointName string
	PgDSN          string
	MaxRetries     int
	RetryBackoff   time.Duration
	LogLevel       string
}

// CaviarNineConfig holds settings for the caviarnine command.
type CaviarNineConfig struct {
	States      string
	Out         string
	DesiredBins uint32
	LogLevel    string
}

// ServeConfig holds settings for the serve command.
type ServeConfig struct {
	Listen          string
	States          string
	RPCURL          string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBinCount     uint32
	LogLevel        string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"blueprint":       "uniswap-v3",
		"batch-size":      uint64(2000),
		"count":           uint32(10),
		"out":             "./data/bin_snapshots.jsonl",
		"checkpoint":      "./data/checkpoint.json",
		"checkpoint-name": "bin-snapshots",
		"max-retries":     5,
		"retry-backoff":   500 * time.Millisecond,
		"log-level":       "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:         v.GetString("rpc"),
		Pools:          getStringSlice(v, "pool"),
		Blueprint:      v.GetString("blueprint"),
		FromBlock:      v.GetUint64("from"),
		ToBlock:        v.GetUint64("to"),
		BatchSize:      v.GetUint64("batch-size"),
		DesiredBins:    v.GetUint32("count"),
		Out:            v.GetString("out"),
		Checkpoint:     v.GetString("checkpoint"),
		CheckpointName: v.GetString("checkpoint-name"),
		PgDSN:          v.GetString("pg-dsn"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		LogLevel:       v.GetString("log-level"),
	}
	if cfg.RPCURL == "" {
		return SnapshotConfig{}, fmt.Errorf("rpc is required")
	}
	if len(cfg.Pools) == 0 {
		return SnapshotConfig{}, fmt.Errorf("at least one pool is required")
	}
	if cfg.ToBlock != 0 && cfg.ToBlock < cfg.FromBlock {
		return SnapshotConfig{}, fmt.Errorf("to block must be >= from block")
	}
	return cfg, nil
}

// LoadCaviarNine merges config file, environment variables, and flags into CaviarNineConfig.
func LoadCaviarNine(cfgFile string, flags *pflag.FlagSet) (CaviarNineConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"count":     uint32(10),
		"log-level": "info",
	})
	if err != nil {
		return CaviarNineConfig{}, err
	}

	cfg := CaviarNineConfig{
		States:      v.GetString("states"),
		Out:         v.GetString("out"),
		DesiredBins: v.GetUint32("count"),
		LogLevel:    v.GetString("log-level"),
	}
	if cfg.States == "" {
		return CaviarNineConfig{}, fmt.Errorf("states is required")
	}
	return cfg, nil
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen":           ":8080",
		"request-timeout":  10 * time.Second,
		"shutdown-timeout": 5 * time.Second,
		"max-bin-count":    uint32(200),
		"log-level":        "info",
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Listen:          v.GetString("listen"),
		States:          v.GetString("states"),
		RPCURL:          v.GetString("rpc"),
		RequestTimeout:  v.GetDuration("request-timeout"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		MaxBinCount:     v.GetUint32("max-bin-count"),
		LogLevel:        v.GetString("log-level"),
	}
	if cfg.Listen == "" {
		return ServeConfig{}, fmt.Errorf("listen address is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
