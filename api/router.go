package api

import (
	"github.com/fyerfyer/doc-sentiment/api/handler"
	"github.com/fyerfyer/doc-sentiment/api/middleware"
	"github.com/gin-gonic/gin"
)

// RouterOptions 路由配置
type RouterOptions struct {
	MaxUploadBytes int64 // multipart内存上限
	EnableCORS     bool  // 是否启用跨域中间件
}

// SetupRouter 设置API路由
// 配置JSON接口、Web页面和中间件
func SetupRouter(
	sentimentHandler *handler.SentimentHandler,
	webHandler *handler.WebHandler,
	opts RouterOptions,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	if opts.EnableCORS {
		router.Use(Cors())
	}

	// 超出部分写入临时文件
	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes
	}

	// 创建API分组
	api := router.Group("/api")
	{
		sentimentGroup := api.Group("/sentiment")
		{
			// 文本分析 - POST /api/sentiment/text
			sentimentGroup.POST("/text", sentimentHandler.AnalyzeText)

			// 网页分析 - POST /api/sentiment/url
			sentimentGroup.POST("/url", sentimentHandler.AnalyzeURL)

			// PDF分析 - POST /api/sentiment/pdf
			sentimentGroup.POST("/pdf", sentimentHandler.AnalyzePDF)
		}

		// 健康检查API
		api.GET("/health", sentimentHandler.Health)
	}

	RegisterWebUI(router, webHandler)

	return router
}

// RegisterWebUI 注册Web页面路由
func RegisterWebUI(router *gin.Engine, webHandler *handler.WebHandler) {
	router.GET("/", webHandler.Index)

	analyze := router.Group("/analyze")
	{
		analyze.POST("/text", webHandler.SubmitText)
		analyze.POST("/url", webHandler.SubmitURL)
		analyze.POST("/pdf", webHandler.SubmitPDF)
	}
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
