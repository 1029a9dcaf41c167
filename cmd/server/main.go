package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prasobpai/internal/config"
	"github.com/prasobpai/internal/db"
	"github.com/prasobpai/internal/handler"
	"github.com/prasobpai/internal/logger"
	"github.com/prasobpai/internal/router"
	"github.com/prasobpai/internal/service"
	"go.uber.org/zap"
)

func main() {
	// .env 仅用于本地开发，缺失时静默跳过
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	gin.SetMode(cfg.GinMode)

	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	analytics := service.NewAnalyticsService(gdb, zlog).WithDedupWindow(cfg.ViewDedupWindow)
	views := service.NewViewRecorder(analytics, zlog, 0)
	defer views.Close()

	if cfg.EventRetentionDays > 0 {
		retention := time.Duration(cfg.EventRetentionDays) * 24 * time.Hour
		sweeper := service.NewRetentionSweeper(analytics, zlog, retention, 0)
		defer sweeper.Close()
	}

	api := handler.NewAPI(gdb, zlog, analytics, views)

	r := router.SetupRouter(api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
