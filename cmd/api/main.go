// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/loginapp/internal/auth"
	"github.com/yourusername/loginapp/internal/config"
	"github.com/yourusername/loginapp/internal/web"
)

const serviceVersion = "0.1.0"

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := setupStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to set up credential store: %v", err)
	}
	defer closeStore()

	authService, err := setupAuth(cfg, store)
	if err != nil {
		log.Fatalf("Failed to set up auth service: %v", err)
	}

	router := newRouter(cfg, auth.NewHandler(authService, auth.HandlerOptions{
		UnifyLoginErrors: cfg.UnifyLoginErrors,
	}))

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s, store: %s)", addr, cfg.GinMode, cfg.StoreDriver)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newRouter はミドルウェアとルーティングを設定した gin.Engine を返します。
func newRouter(cfg *config.Config, authHandler *auth.Handler) *gin.Engine {
	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// フロントエンドを別オリジンで動かす場合に備えて CORS を許可
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, authHandler)
	return router
}

// setupRoutes は認証 API とヘルスチェックの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authHandler *auth.Handler) {
	router.GET("/health", handleHealth)

	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)

	api := router.Group("/api")
	{
		api.GET("/hello", handleHello)
		api.GET("/me", authHandler.RequireToken(), authHandler.Me)
	}

	if cfg.ServeFrontend {
		router.GET("/", func(c *gin.Context) {
			render(c, http.StatusOK, web.LoginPage())
		})
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "loginapp-api",
		"version": serviceVersion,
	})
}

func handleHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from backend!"})
}

// render は templ コンポーネントを HTML として書き出します。
func render(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}
