// Package config loads codevector's configuration: hardcoded defaults,
// layered with an optional YAML file, layered with CODEVECTOR_* env var
// overrides (highest precedence) — the same three-stage precedence model
// the teacher's own config package applies to its settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/codevector/internal/cverrors"
)

// Config is codevector's full runtime configuration, mirroring spec.md
// §6's schema.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Vector VectorConfig `yaml:"vector"`
}

// ServerConfig configures the HTTP façade.
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Reload bool   `yaml:"reload"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// VectorConfig configures the indexing/retrieval pipeline: which backend,
// which embedding and (optional) chat providers, and code2desc.
type VectorConfig struct {
	Platform          string `yaml:"platform"` // relational | native-vector-db | embedded-lite
	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	ChatProvider      string `yaml:"chat_provider"`
	ChatModel         string `yaml:"chat_model"`
	Code2Desc         bool   `yaml:"code2desc"`

	Relational RelationalConfig `yaml:"relational"`
	Native     NativeConfig     `yaml:"native"`
	Embedded   EmbeddedConfig   `yaml:"embedded"`

	EmbeddingAPIKey  string `yaml:"embedding_api_key"`
	EmbeddingBaseURL string `yaml:"embedding_base_url"`
	ChatAPIKey       string `yaml:"chat_api_key"`
	ChatBaseURL      string `yaml:"chat_base_url"`
}

// RelationalConfig configures the pgvector-backed adapter.
type RelationalConfig struct {
	URL string `yaml:"url"`
}

// NativeConfig configures the Qdrant-backed adapter.
type NativeConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddedConfig configures the coder/hnsw + SQLite adapter.
type EmbeddedConfig struct {
	Path string `yaml:"path"`
}

// Default returns codevector's hardcoded defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Reload: false},
		Log:    LogConfig{Level: "info"},
		Vector: VectorConfig{
			Platform:          "embedded-lite",
			EmbeddingProvider: "openai",
			EmbeddingModel:    "text-embedding-3-small",
			Native:            NativeConfig{Host: "localhost", Port: 6334},
			Embedded:          EmbeddedConfig{Path: "codevector.db"},
		},
	}
}

// Load applies, in order of increasing precedence: hardcoded defaults,
// an optional YAML file at path (skipped silently if absent), then
// CODEVECTOR_* environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, cverrors.Config("failed to stat config file "+path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cverrors.Config("failed to read config file "+path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cverrors.Config("failed to parse config file "+path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields of other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Server.Host != "" {
		c.Server.Host = other.Server.Host
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	c.Server.Reload = c.Server.Reload || other.Server.Reload

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
	c.Log.Debug = c.Log.Debug || other.Log.Debug

	if other.Vector.Platform != "" {
		c.Vector.Platform = other.Vector.Platform
	}
	if other.Vector.EmbeddingProvider != "" {
		c.Vector.EmbeddingProvider = other.Vector.EmbeddingProvider
	}
	if other.Vector.EmbeddingModel != "" {
		c.Vector.EmbeddingModel = other.Vector.EmbeddingModel
	}
	if other.Vector.ChatProvider != "" {
		c.Vector.ChatProvider = other.Vector.ChatProvider
	}
	if other.Vector.ChatModel != "" {
		c.Vector.ChatModel = other.Vector.ChatModel
	}
	c.Vector.Code2Desc = c.Vector.Code2Desc || other.Vector.Code2Desc
	if other.Vector.EmbeddingAPIKey != "" {
		c.Vector.EmbeddingAPIKey = other.Vector.EmbeddingAPIKey
	}
	if other.Vector.EmbeddingBaseURL != "" {
		c.Vector.EmbeddingBaseURL = other.Vector.EmbeddingBaseURL
	}
	if other.Vector.ChatAPIKey != "" {
		c.Vector.ChatAPIKey = other.Vector.ChatAPIKey
	}
	if other.Vector.ChatBaseURL != "" {
		c.Vector.ChatBaseURL = other.Vector.ChatBaseURL
	}
	if other.Vector.Relational.URL != "" {
		c.Vector.Relational.URL = other.Vector.Relational.URL
	}
	if other.Vector.Native.Host != "" {
		c.Vector.Native.Host = other.Vector.Native.Host
	}
	if other.Vector.Native.Port != 0 {
		c.Vector.Native.Port = other.Vector.Native.Port
	}
	if other.Vector.Embedded.Path != "" {
		c.Vector.Embedded.Path = other.Vector.Embedded.Path
	}
}

// applyEnvOverrides applies CODEVECTOR_* environment variable overrides,
// the highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODEVECTOR_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CODEVECTOR_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CODEVECTOR_SERVER_RELOAD"); v != "" {
		c.Server.Reload = parseBool(v)
	}
	if v := os.Getenv("CODEVECTOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CODEVECTOR_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("CODEVECTOR_LOG_DEBUG"); v != "" {
		c.Log.Debug = parseBool(v)
	}
	if v := os.Getenv("CODEVECTOR_VECTOR_PLATFORM"); v != "" {
		c.Vector.Platform = v
	}
	if v := os.Getenv("CODEVECTOR_EMBEDDING_PROVIDER"); v != "" {
		c.Vector.EmbeddingProvider = v
	}
	if v := os.Getenv("CODEVECTOR_EMBEDDING_MODEL"); v != "" {
		c.Vector.EmbeddingModel = v
	}
	if v := os.Getenv("CODEVECTOR_EMBEDDING_API_KEY"); v != "" {
		c.Vector.EmbeddingAPIKey = v
	}
	if v := os.Getenv("CODEVECTOR_EMBEDDING_BASE_URL"); v != "" {
		c.Vector.EmbeddingBaseURL = v
	}
	if v := os.Getenv("CODEVECTOR_CHAT_PROVIDER"); v != "" {
		c.Vector.ChatProvider = v
	}
	if v := os.Getenv("CODEVECTOR_CHAT_MODEL"); v != "" {
		c.Vector.ChatModel = v
	}
	if v := os.Getenv("CODEVECTOR_CHAT_API_KEY"); v != "" {
		c.Vector.ChatAPIKey = v
	}
	if v := os.Getenv("CODEVECTOR_CHAT_BASE_URL"); v != "" {
		c.Vector.ChatBaseURL = v
	}
	if v := os.Getenv("CODEVECTOR_CODE2DESC"); v != "" {
		c.Vector.Code2Desc = parseBool(v)
	}
	if v := os.Getenv("CODEVECTOR_RELATIONAL_URL"); v != "" {
		c.Vector.Relational.URL = v
	}
	if v := os.Getenv("CODEVECTOR_NATIVE_HOST"); v != "" {
		c.Vector.Native.Host = v
	}
	if v := os.Getenv("CODEVECTOR_NATIVE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Vector.Native.Port = p
		}
	}
	if v := os.Getenv("CODEVECTOR_EMBEDDED_PATH"); v != "" {
		c.Vector.Embedded.Path = v
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Validate rejects a config that cannot drive the pipeline.
func (c *Config) Validate() error {
	switch c.Vector.Platform {
	case "relational", "native-vector-db", "embedded-lite":
	default:
		return cverrors.Config(fmt.Sprintf("unknown vector.platform %q", c.Vector.Platform), nil)
	}
	if strings.TrimSpace(c.Vector.EmbeddingProvider) == "" {
		return cverrors.Config("vector.embedding_provider must not be empty", nil)
	}
	if strings.TrimSpace(c.Vector.EmbeddingModel) == "" {
		return cverrors.Config("vector.embedding_model must not be empty", nil)
	}
	if c.Vector.Code2Desc && strings.TrimSpace(c.Vector.ChatProvider) == "" {
		return cverrors.Config("vector.chat_provider is required when code2desc is enabled", nil)
	}
	switch c.Vector.Platform {
	case "relational":
		if strings.TrimSpace(c.Vector.Relational.URL) == "" {
			return cverrors.Config("vector.relational.url is required for the relational platform", nil)
		}
	case "native-vector-db":
		if strings.TrimSpace(c.Vector.Native.Host) == "" {
			return cverrors.Config("vector.native.host is required for the native-vector-db platform", nil)
		}
	case "embedded-lite":
		if strings.TrimSpace(c.Vector.Embedded.Path) == "" {
			return cverrors.Config("vector.embedded.path is required for the embedded-lite platform", nil)
		}
	}
	return nil
}
