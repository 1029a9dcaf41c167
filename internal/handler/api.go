package handler

import (
	"github.com/prasobpai/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	logger    *zap.Logger
	stories   *service.StoryService
	analytics analyticsProvider
	views     viewEnqueuer
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, logger *zap.Logger, analytics *service.AnalyticsService, views *service.ViewRecorder) *API {
	if logger == nil {
		logger = zap.NewNop()
	}

	api := &API{
		db:      gdb,
		logger:  logger,
		stories: service.NewStoryService(gdb),
	}
	if analytics != nil {
		api.analytics = analytics
	}
	if views != nil {
		api.views = views
	}
	return api
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
