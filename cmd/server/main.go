package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie-tracker/config"
	"movie-tracker/internal/catalog"
	"movie-tracker/internal/handler"
	"movie-tracker/internal/model"
	"movie-tracker/internal/repository"
	"movie-tracker/internal/service"
	"movie-tracker/internal/session"
	dbPkg "movie-tracker/pkg/db"
	"movie-tracker/pkg/logger"
	"movie-tracker/pkg/metrics"
	redisPkg "movie-tracker/pkg/redis"
	"movie-tracker/pkg/response"
	wsPkg "movie-tracker/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log, err := logger.InitLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("=== Movie Tracker 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("session_signed", cfg.Session.Signed),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)
	if cfg.Session.Signed && cfg.Session.Secret == "" {
		log.Fatal("session.signed 已开启但未配置 session.secret")
	}
	if cfg.TMDB.APIKey == "" {
		log.Warn("未配置 TMDB API Key，电影目录请求将会失败")
	}

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(db); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(db, model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis（可选），不可用时计数直接查库
	var (
		rdb     *redis.Client
		counter service.PendingCounter
	)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = redisPkg.NewClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn("Redis不可用，待处理请求计数将直接查询数据库", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			counter = redisPkg.NewPendingRequestCounter(rdb)
			log.Info("Redis连接成功")
		}
	}

	// 3.3 初始化业务服务
	wsManager := wsPkg.NewManager(cfg.WebSocket)
	movieRepo := repository.NewMovieRepository(db)
	userRepo := repository.NewUserRepository(db)
	collectionSvc := service.NewCollectionService(
		movieRepo,
		repository.NewFavoriteRepository(db),
		repository.NewRecentlyViewedRepository(db),
		repository.NewRatingRepository(db),
	)
	commentSvc := service.NewCommentService(repository.NewCommentRepository(db), collectionSvc)
	socialSvc := service.NewSocialService(userRepo, repository.NewFriendRepository(db), counter, wsManager)
	userSvc := service.NewUserService(userRepo, collectionSvc, commentSvc, socialSvc)
	pageSvc := service.NewPageService(catalog.NewClient(cfg.TMDB), movieRepo, collectionSvc, commentSvc)
	sessions := session.NewManager(cfg.Session, userSvc)

	// 4. 设置Gin模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.Recovery())
	router.Use(logger.RequestLogger())
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware())
		router.GET(cfg.Metrics.Path, metrics.Handler())
	}
	setupHealthRoute(router, db, rdb)

	// 6. 页面与表单动作路由（会话中间件只作用于业务路由）
	app := router.Group("")
	app.Use(sessions.Middleware())
	handler.RegisterRoutes(app, handler.Handlers{
		Movie:     handler.NewMovieHandler(pageSvc, collectionSvc, commentSvc),
		Friend:    handler.NewFriendHandler(socialSvc),
		User:      handler.NewUserHandler(userSvc, sessions),
		WebSocket: wsManager.Handler,
	})

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupHealthRoute 健康检查：数据库必须可用，Redis 仅在启用时检查
func setupHealthRoute(router *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		checks := gin.H{"database": "ok"}
		if err := dbPkg.HealthCheck(db); err != nil {
			status = "db-down"
			checks["database"] = err.Error()
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := redisPkg.HealthCheck(c.Request.Context(), rdb); err != nil {
				checks["redis"] = err.Error()
				if status == "ok" {
					status = "degraded"
				}
			}
		}

		body := gin.H{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		}
		if status == "db-down" {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Code:    http.StatusServiceUnavailable,
				Message: "database unavailable",
				Data:    body,
			})
			return
		}
		response.Success(c, body)
	})
}
