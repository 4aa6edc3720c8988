package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/doc-sentiment/api"
	"github.com/fyerfyer/doc-sentiment/api/handler"
	"github.com/fyerfyer/doc-sentiment/api/middleware"
	appconfig "github.com/fyerfyer/doc-sentiment/config"
	"github.com/fyerfyer/doc-sentiment/internal/cache"
	"github.com/fyerfyer/doc-sentiment/internal/document"
	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/fyerfyer/doc-sentiment/internal/sentiment"
	"github.com/fyerfyer/doc-sentiment/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 命令行选项，非空时覆盖配置文件
type options struct {
	ConfigFile string // 配置文件路径
	EnvFile    string // .env文件路径
	Port       int    // 服务端口
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
	Backend    string // 评分后端
	Provider   string // 大模型提供商
	Model      string // 模型名称
}

func main() {
	opts := parseFlags()

	// .env不存在时忽略
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Failed to load %s: %v", opts.EnvFile, err)
	}

	cfg, err := appconfig.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, opts)

	gin.SetMode(cfg.Server.Mode)

	// 初始化日志
	logger, logCloser := setupLogger(cfg.Log)
	defer logCloser.Close()
	logger.Info("Starting document sentiment service...")

	// 创建缓存服务
	resultCache, err := setupCache(cfg.Cache, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	if resultCache != nil {
		defer resultCache.Close()
	}

	// 创建大语言模型客户端
	var llmClient llm.Client
	if sentiment.Backend(cfg.Sentiment.Backend) != sentiment.BackendLocal {
		llmClient, err = setupLLM(cfg.LLM, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize LLM client: %v", err)
		}
	}

	// 创建评分器
	scorer, err := sentiment.New(sentiment.Config{
		Backend:       sentiment.Backend(cfg.Sentiment.Backend),
		Structured:    cfg.Sentiment.Structured,
		FallbackLocal: cfg.Sentiment.FallbackLocal,
		CacheTTL:      time.Duration(cfg.Cache.TTL) * time.Second,
	}, llmClient, resultCache, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize sentiment scorer: %v", err)
	}

	// 初始化业务服务
	analysisService := services.NewAnalysisService(
		scorer,
		services.WithAnalysisLogger(logger),
		services.WithPDFExtractor(document.NewPDFExtractor(logger)),
		services.WithURLFetcher(document.NewURLExtractor(document.URLConfig{
			Timeout:            cfg.Fetch.Timeout,
			MaxBytes:           cfg.Fetch.MaxBytes,
			UserAgent:          cfg.Fetch.UserAgent,
			InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
		}, logger)),
	)

	// 初始化API处理器并设置路由
	r := api.SetupRouter(
		handler.NewSentimentHandler(analysisService, cfg.Sentiment.Backend, cfg.Upload.MaxBytes),
		handler.NewWebHandler(analysisService, cfg.Upload.MaxBytes),
		api.RouterOptions{
			MaxUploadBytes: cfg.Upload.MaxBytes,
			EnableCORS:     cfg.Server.EnableCORS,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&opts.EnvFile, "env-file", ".env", "Path to .env file")
	flag.IntVar(&opts.Port, "port", 0, "Server port (overrides config)")
	flag.StringVar(&opts.Mode, "mode", "", "Run mode (debug/release)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.StringVar(&opts.Backend, "backend", "", "Sentiment backend (remote/local)")
	flag.StringVar(&opts.Provider, "provider", "", "LLM provider (groq/openai/tongyi)")
	flag.StringVar(&opts.Model, "model", "", "LLM model name")

	flag.Parse()
	return opts
}

// applyFlags 用命令行上明确给出的值覆盖配置
func applyFlags(cfg *appconfig.Config, opts options) {
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Mode != "" {
		cfg.Server.Mode = opts.Mode
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Backend != "" {
		cfg.Sentiment.Backend = opts.Backend
	}
	if opts.Provider != "" && opts.Provider != cfg.LLM.Provider {
		cfg.LLM.Provider = opts.Provider
		// 切换提供商后密钥跟随提供商的环境变量，旧密钥不发往新端点
		cfg.LLM.APIKey = os.Getenv(llm.APIKeyEnv(opts.Provider))
		if opts.Model == "" {
			cfg.LLM.Model = ""
		}
	}
	if opts.Model != "" {
		cfg.LLM.Model = opts.Model
	}
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LogConfig) (*logrus.Logger, io.Closer) {
	closer := middleware.ConfigureLogger(cfg.Level, middleware.FileOutput{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
	return middleware.GetLogger(), closer
}

// setupLLM 设置大语言模型客户端
// 缺少API密钥时只记录警告，第一次调用时由服务端返回错误
func setupLLM(cfg appconfig.LLMConfig, logger *logrus.Logger) (llm.Client, error) {
	if cfg.APIKey == "" {
		logger.WithField("env", llm.APIKeyEnv(cfg.Provider)).Warn("LLM API key is not set")
	}

	clientOpts := []llm.Option{
		llm.WithAPIKey(cfg.APIKey),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
	}
	if cfg.Model != "" {
		clientOpts = append(clientOpts, llm.WithModel(cfg.Model))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, llm.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, llm.WithTimeout(cfg.Timeout))
	}

	client, err := llm.NewClient(cfg.Provider, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    client.Name(),
	}).Info("LLM client initialized")
	return client, nil
}

// setupCache 设置结果缓存，未启用时返回nil
func setupCache(cfg appconfig.CacheConfig, logger *logrus.Logger) (cache.Cache, error) {
	if !cfg.Enable {
		return nil, nil
	}

	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = cfg.Type
	if cfg.TTL > 0 {
		cacheConfig.DefaultTTL = time.Duration(cfg.TTL) * time.Second
	}
	if cfg.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Address
		cacheConfig.RedisPassword = cfg.Password
		cacheConfig.RedisDB = cfg.DB
	}

	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		return nil, err
	}

	logger.WithField("type", cfg.Type).Info("Result cache enabled")
	return c, nil
}
