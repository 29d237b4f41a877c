// Package config loads mini-feign settings from a YAML file and MINIFEIGN_*
// environment variables.
//
//	server:
//	  addr: ":8080"
//	registry:
//	  etcd: ["127.0.0.1:2379"]
//	  static:
//	    Echo: ["127.0.0.1:8080"]
//	client:
//	  read_timeout: 5s
//	  binary_safe_charset: true
//
// Environment variables use "_" for nesting: MINIFEIGN_CLIENT_READ_TIMEOUT=5s.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-feign/charset"
	"mini-feign/codec"
	"mini-feign/template"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "MINIFEIGN"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Registry RegistryConfig `mapstructure:"registry"`
	Client   ClientConfig   `mapstructure:"client"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	Advertise    string `mapstructure:"advertise"` // address published to the registry, defaults to the listener
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

type RegistryConfig struct {
	Etcd   []string            `mapstructure:"etcd"`   // etcd endpoints; empty means static only
	Static map[string][]string `mapstructure:"static"` // service name -> instance addresses
	TTL    int64               `mapstructure:"ttl"`    // lease seconds
}

type ClientConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	FollowRedirects   bool          `mapstructure:"follow_redirects"`
	Retries           int           `mapstructure:"retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	Timeout           time.Duration `mapstructure:"timeout"` // whole call, 0 disables
	RateLimit         float64       `mapstructure:"rate_limit"`
	RateBurst         int           `mapstructure:"rate_burst"`
	Balancer          string        `mapstructure:"balancer"`
	HashKeyHeader     string        `mapstructure:"hash_key_header"`
	Codec             string        `mapstructure:"codec"`
	Charset           string        `mapstructure:"charset"`
	BinarySafeCharset bool          `mapstructure:"binary_safe_charset"`
	MaxClients        int           `mapstructure:"max_clients"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers every key so that environment variables bind even when
// the file omits them.
func SetDefaults(v *viper.Viper) {
	opts := template.DefaultOptions()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.advertise", "")
	v.SetDefault("server.max_body_bytes", 4<<20)

	v.SetDefault("registry.etcd", []string{})
	v.SetDefault("registry.static", map[string][]string{})
	v.SetDefault("registry.ttl", 10)

	v.SetDefault("client.connect_timeout", opts.ConnectTimeout)
	v.SetDefault("client.read_timeout", opts.ReadTimeout)
	v.SetDefault("client.follow_redirects", opts.FollowRedirects)
	v.SetDefault("client.retries", 0)
	v.SetDefault("client.retry_backoff", 100*time.Millisecond)
	v.SetDefault("client.timeout", time.Duration(0))
	v.SetDefault("client.rate_limit", 0)
	v.SetDefault("client.rate_burst", 1)
	v.SetDefault("client.balancer", "round_robin")
	v.SetDefault("client.hash_key_header", "")
	v.SetDefault("client.codec", codec.CodecTypeProtobuf.String())
	v.SetDefault("client.charset", charset.UTF8)
	v.SetDefault("client.binary_safe_charset", false)
	v.SetDefault("client.max_clients", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults and environment binding, ready
// for flags to be bound on top.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (when non-empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Client.Charset != "" {
		if _, err := charset.Lookup(c.Client.Charset); err != nil {
			errs = append(errs, fmt.Errorf("client.charset: %w", err))
		}
	}
	if _, err := codec.ParseCodecType(c.Client.Codec); err != nil {
		errs = append(errs, fmt.Errorf("client.codec: %w", err))
	}
	if c.Client.Retries < 0 {
		errs = append(errs, errors.New("client.retries must not be negative"))
	}
	if c.Client.RateLimit < 0 {
		errs = append(errs, errors.New("client.rate_limit must not be negative"))
	}
	if c.Registry.TTL <= 0 {
		errs = append(errs, errors.New("registry.ttl must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// StaticAddrs returns the static instances of service. Keys are matched
// case-insensitively because viper lowercases map keys.
func (c RegistryConfig) StaticAddrs(service string) []string {
	for name, addrs := range c.Static {
		if strings.EqualFold(name, service) {
			return addrs
		}
	}
	return nil
}

// Options returns the per-request transport options.
func (c ClientConfig) Options() template.Options {
	return template.Options{
		ConnectTimeout:  c.ConnectTimeout,
		ReadTimeout:     c.ReadTimeout,
		FollowRedirects: c.FollowRedirects,
	}
}

// CodecType returns the parsed codec; Validate has already rejected bad names.
func (c ClientConfig) CodecType() codec.CodecType {
	t, _ := codec.ParseCodecType(c.Codec)
	return t
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
