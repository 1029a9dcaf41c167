package handler

import (
	"time"

	"github.com/prasobpai/internal/service"
)

type analyticsProvider interface {
	RecordStoryView(storyID, ipHash string, now time.Time) (bool, error)
	RecordSiteVisit(ipHash string, now time.Time) (bool, error)
	DailyVisitors(now time.Time) (int64, error)
	SeverityStats() (service.SeverityOverview, error)
}

type viewEnqueuer interface {
	Enqueue(storyID, ipHash string) bool
}
