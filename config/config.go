package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`          // 服务器主机
	Port         int           `mapstructure:"port"`          // 服务器端口
	Mode         string        `mapstructure:"mode"`          // 运行模式 (debug/release)
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读取超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写入超时
	EnableCORS   bool          `mapstructure:"enable_cors"`   // 是否允许跨域请求
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`    // 提供商：groq, openai, tongyi
	Model       string        `mapstructure:"model"`       // 模型名称，为空时使用提供商默认模型
	APIKey      string        `mapstructure:"api_key"`     // API密钥，支持${VAR}
	Endpoint    string        `mapstructure:"endpoint"`    // API端点，为空时使用提供商默认值
	Timeout     time.Duration `mapstructure:"timeout"`     // 单次请求超时
	MaxTokens   int           `mapstructure:"max_tokens"`  // 最大生成token数量
	Temperature float32       `mapstructure:"temperature"` // 采样温度
}

// SentimentConfig 评分配置
type SentimentConfig struct {
	Backend       string `mapstructure:"backend"`        // remote 或 local
	Structured    bool   `mapstructure:"structured"`     // 远程评分要求JSON回复
	FallbackLocal bool   `mapstructure:"fallback_local"` // 远程失败时回退到本地评分
}

// FetchConfig 网页抓取配置
type FetchConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`              // 请求超时
	MaxBytes           int64         `mapstructure:"max_bytes"`            // 响应体上限
	UserAgent          string        `mapstructure:"user_agent"`           // User-Agent
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"` // 跳过TLS校验
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"` // 单个PDF文件上限
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	File       string `mapstructure:"file"`         // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧文件数量
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧文件保留天数
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	return processEnvironmentVariables(&config), nil
}

// processEnvironmentVariables 展开${VAR}形式的配置项，并按提供商补全API密钥
func processEnvironmentVariables(cfg *Config) *Config {
	cfg.LLM.APIKey = expandEnv(cfg.LLM.APIKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(llm.APIKeyEnv(cfg.LLM.Provider))
	}
	return cfg
}

// expandEnv 只处理整个值为${VAR}的情况，变量为空时返回空字符串
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return os.Getenv(value[2 : len(value)-1])
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.enable_cors", false)

	// LLM默认配置
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_tokens", 256)
	v.SetDefault("llm.temperature", 0)

	// 评分默认配置
	v.SetDefault("sentiment.backend", "remote")
	v.SetDefault("sentiment.structured", false)
	v.SetDefault("sentiment.fallback_local", false)

	// 抓取默认配置
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.max_bytes", 10<<20)
	v.SetDefault("fetch.user_agent", "doc-sentiment/1.0")
	v.SetDefault("fetch.insecure_skip_verify", false)

	// 上传默认配置
	v.SetDefault("upload.max_bytes", 32<<20)

	// 缓存默认配置
	v.SetDefault("cache.enable", false)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 86400) // 24小时

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
