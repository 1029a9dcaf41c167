package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prasobpai/internal/identity"
	"go.uber.org/zap"
)

type viewRequest struct {
	StoryID string `json:"story_id"`
}

// RecordView handles POST /api/view: dedup-checked view counting for a story.
// The response distinguishes a fresh count from a suppressed repeat; both are 200.
func (a *API) RecordView(c *gin.Context) {
	var req viewRequest
	if !bindJSON(c, &req, "Story ID is required") {
		return
	}

	storyID := strings.TrimSpace(req.StoryID)
	if storyID == "" {
		respondError(c, http.StatusBadRequest, "Story ID is required")
		return
	}

	ipHash := identity.Resolve(c.GetHeader("X-Forwarded-For"))

	counted, err := a.analytics.RecordStoryView(storyID, ipHash, time.Now())
	if err != nil {
		a.logger.Error("record view failed", zap.String("story_id", storyID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to record view")
		return
	}

	if !counted {
		c.JSON(http.StatusOK, gin.H{"message": "View already counted in 24h"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "View counted successfully"})
}

// Stats handles GET /api/stats. The caller's own visit is recorded first,
// so the returned daily count includes it.
func (a *API) Stats(c *gin.Context) {
	ipHash := identity.Resolve(c.GetHeader("X-Forwarded-For"))
	now := time.Now()

	if _, err := a.analytics.RecordSiteVisit(ipHash, now); err != nil {
		// 访问落账失败只影响计数，不影响统计读取
		a.logger.Warn("site visit record failed", zap.Error(err))
	}

	visitors, err := a.analytics.DailyVisitors(now)
	if err != nil {
		a.logger.Error("daily visitor count failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	severity, err := a.analytics.SeverityStats()
	if err != nil {
		a.logger.Error("severity aggregation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dailyVisitors": visitors,
		"avgSeverity":   severity.Average,
		"severityLabel": severity.Label,
	})
}
