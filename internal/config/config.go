package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the recommender service
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Storage     StorageConfig     `yaml:"storage"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Eval        EvalConfig        `yaml:"eval"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
}

// CatalogConfig holds item catalog configuration
type CatalogConfig struct {
	ItemsPath string `yaml:"items_path"`
}

// StorageConfig holds rating store configuration
type StorageConfig struct {
	Backend       string `yaml:"backend"` // "csv" or "redis"
	CSVPath       string `yaml:"csv_path"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// RecommenderConfig holds recommendation specific configuration
type RecommenderConfig struct {
	PositiveThreshold int      `yaml:"positive_threshold"`
	TopK              int      `yaml:"top_k"`
	MinDocFreq        int      `yaml:"min_doc_freq"`
	Stopwords         []string `yaml:"stopwords"`
}

// EvalConfig holds offline evaluation configuration
type EvalConfig struct {
	SplitRatio float64 `yaml:"split_ratio"`
	Seed       int64   `yaml:"seed"`
	Shuffle    bool    `yaml:"shuffle"`
	TopK       int     `yaml:"top_k"`
}

// Load builds the configuration in three layers: built-in defaults, then an
// optional YAML file named by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := GetStringEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: ":8080",
		},
		Catalog: CatalogConfig{
			ItemsPath: "data/items.csv",
		},
		Storage: StorageConfig{
			Backend:       "csv",
			CSVPath:       "data/ratings.csv",
			RedisURL:      "localhost:6379",
			RedisPassword: "",
			RedisDB:       0,
		},
		Recommender: RecommenderConfig{
			PositiveThreshold: 3,
			TopK:              5,
			MinDocFreq:        1,
		},
		Eval: EvalConfig{
			SplitRatio: 0.5,
			Seed:       42,
			Shuffle:    true,
			TopK:       10,
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = GetStringEnv("SERVER_PORT", c.Server.Port)

	c.Catalog.ItemsPath = GetStringEnv("CATALOG_ITEMS_PATH", c.Catalog.ItemsPath)

	c.Storage.Backend = GetStringEnv("RATINGS_BACKEND", c.Storage.Backend)
	c.Storage.CSVPath = GetStringEnv("RATINGS_CSV_PATH", c.Storage.CSVPath)
	c.Storage.RedisURL = GetStringEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.RedisPassword = GetStringEnv("REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = GetIntEnv("REDIS_DB", c.Storage.RedisDB)

	c.Recommender.PositiveThreshold = GetIntEnv("RECOMMENDER_POSITIVE_THRESHOLD", c.Recommender.PositiveThreshold)
	c.Recommender.TopK = GetIntEnv("RECOMMENDER_TOP_K", c.Recommender.TopK)
	c.Recommender.MinDocFreq = GetIntEnv("RECOMMENDER_MIN_DOC_FREQ", c.Recommender.MinDocFreq)
	if raw := os.Getenv("RECOMMENDER_STOPWORDS"); raw != "" {
		c.Recommender.Stopwords = splitList(raw)
	}

	c.Eval.SplitRatio = GetFloatEnv("EVAL_SPLIT_RATIO", c.Eval.SplitRatio)
	c.Eval.Seed = int64(GetIntEnv("EVAL_SEED", int(c.Eval.Seed)))
	c.Eval.Shuffle = GetBoolEnv("EVAL_SHUFFLE", c.Eval.Shuffle)
	c.Eval.TopK = GetIntEnv("EVAL_TOP_K", c.Eval.TopK)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
