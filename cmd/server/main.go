package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kate44725/computing-management/config"
	"github.com/Kate44725/computing-management/internal/api/handler"
	"github.com/Kate44725/computing-management/internal/api/router"
	"github.com/Kate44725/computing-management/internal/repository"
	"github.com/Kate44725/computing-management/internal/service"
	"github.com/Kate44725/computing-management/pkg/database"
	"github.com/Kate44725/computing-management/pkg/jwt"
	"github.com/Kate44725/computing-management/pkg/kvstore"
	applogger "github.com/Kate44725/computing-management/pkg/logger"
	"github.com/Kate44725/computing-management/pkg/metrics"
	"github.com/Kate44725/computing-management/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 0. .env 文件不存在时忽略
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（redis 存储驱动时必需，其余驱动下连接失败降级运行）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		if cfg.Store.Driver == config.StoreDriverRedis {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 4. 初始化集合存储
	store, db, err := openStore(cfg, rdb, logger)
	if err != nil {
		logger.Fatal("初始化存储失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器与指标
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()

	// Token 黑名单：未启用 Redis 时保持接口为 nil
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(store, cfg.Store.KeyPrefix)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, m, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, m, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// openStore 按 store.driver 创建集合存储；数据库驱动同时返回 *gorm.DB 以便关闭
func openStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (kvstore.Store, *gorm.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("使用内存存储，进程退出后数据丢失")
		return kvstore.NewMemory(), nil, nil

	case config.StoreDriverRedis:
		return kvstore.NewRedis(rdb), nil, nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(cfg.Store.Driver, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return nil, nil, err
		}
		return kvstore.NewGorm(db), db, nil

	case config.StoreDriverSQLite:
		db, err := database.NewDB(cfg.Store.Driver, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.AutoMigrateSQLite(db); err != nil {
			return nil, nil, err
		}
		return kvstore.NewGorm(db), db, nil
	}

	return nil, nil, fmt.Errorf("不支持的 store.driver %q", cfg.Store.Driver)
}
