package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chat backend.
type Config struct {
	General     GeneralConfig     `mapstructure:"general"`
	Server      ServerConfig      `mapstructure:"server"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vectorstore"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// FeedConfig describes the RSS source and how articles are fetched.
type FeedConfig struct {
	URL             string        `mapstructure:"url"`
	Limit           int           `mapstructure:"limit"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	Fetcher         string        `mapstructure:"fetcher"` // http or chromedp
	ContentSelector string        `mapstructure:"content_selector"`
	MaxChars        int           `mapstructure:"max_chars"`
}

func (f FeedConfig) Validate() error {
	if strings.TrimSpace(f.URL) == "" {
		return errors.New("feed.url is required")
	}
	switch f.Fetcher {
	case "http", "chromedp":
	default:
		return fmt.Errorf("feed.fetcher must be http or chromedp, got %q", f.Fetcher)
	}
	return nil
}

// EmbeddingConfig pins the embedding model and its output dimension.
// Query and stored vectors are only comparable when both come from this
// model, so the dimension lives here and nowhere else.
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (e EmbeddingConfig) Validate() error {
	if e.Dimension <= 0 {
		return errors.New("embedding.dimension must be > 0")
	}
	if strings.TrimSpace(e.Model) == "" {
		return errors.New("embedding.model is required")
	}
	return nil
}

// VectorStoreConfig selects and configures the vector index backend.
type VectorStoreConfig struct {
	Provider  string        `mapstructure:"provider"` // pinecone or memory
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	IndexName string        `mapstructure:"index_name"`
	Metric    string        `mapstructure:"metric"`
	Cloud     string        `mapstructure:"cloud"`
	Region    string        `mapstructure:"region"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (v VectorStoreConfig) Validate() error {
	switch v.Provider {
	case "pinecone", "memory":
	default:
		return fmt.Errorf("vectorstore.provider must be pinecone or memory, got %q", v.Provider)
	}
	if strings.TrimSpace(v.IndexName) == "" {
		return errors.New("vectorstore.index_name is required")
	}
	return nil
}

// LLMConfig configures the answer-generation model.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.Model) == "" {
		return errors.New("llm.model is required")
	}
	if l.MaxRetries < 0 {
		return errors.New("llm.max_retries must be >= 0")
	}
	return nil
}

// RedisConfig contains session store connection settings.
type RedisConfig struct {
	Host    string        `mapstructure:"host"`
	Port    string        `mapstructure:"port"`
	Pass    string        `mapstructure:"pass"`
	DB      int           `mapstructure:"db"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if r.Host == "" || r.Port == "" {
		return errors.New("redis.host and redis.port are required")
	}
	return nil
}

// RetrievalConfig bounds similarity search.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

// LoadConfig loads config from file, applying NEWSCHAT_* env overrides.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("feed.url", "https://timesofindia.indiatimes.com/rssfeedstopstories.cms")
	viper.SetDefault("feed.limit", 100)
	viper.SetDefault("feed.fetch_timeout", 10*time.Second)
	viper.SetDefault("feed.fetcher", "http")
	viper.SetDefault("feed.content_selector", "div._s30J.clearfix")
	viper.SetDefault("feed.max_chars", 20000)
	viper.SetDefault("embedding.provider", "jina")
	viper.SetDefault("embedding.base_url", "https://api.jina.ai/v1")
	viper.SetDefault("embedding.model", "jina-clip-v2")
	viper.SetDefault("embedding.dimension", 1024)
	viper.SetDefault("embedding.timeout", 30*time.Second)
	viper.SetDefault("vectorstore.provider", "pinecone")
	viper.SetDefault("vectorstore.base_url", "https://api.pinecone.io")
	viper.SetDefault("vectorstore.index_name", "topnews")
	viper.SetDefault("vectorstore.metric", "cosine")
	viper.SetDefault("vectorstore.cloud", "aws")
	viper.SetDefault("vectorstore.region", "us-east-1")
	viper.SetDefault("vectorstore.timeout", 30*time.Second)
	viper.SetDefault("llm.provider", "gemini")
	viper.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.timeout", 5*time.Second)
	viper.SetDefault("retrieval.top_k", 5)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("NEWSCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		// no file: defaults + env only
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Feed.Validate(); err != nil {
		panic(err)
	}
	if err := config.Embedding.Validate(); err != nil {
		panic(err)
	}
	if err := config.VectorStore.Validate(); err != nil {
		panic(err)
	}
	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
