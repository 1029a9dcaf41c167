package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prasobpai/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultViewDedupWindow = 24 * time.Hour

// 站点情绪标签，依据全站平均倒霉程度划分。
const (
	SeverityLabelCritical = "วิกฤต"
	SeverityLabelModerate = "ปานกลาง"
	SeverityLabelMinor    = "เล็กน้อย"
	SeverityLabelBright   = "สดใส"
	SeverityLabelNormal   = "ปกติ" // 无故事数据时的兜底标签
)

// AnalyticsService 负责浏览/访问事件的去重记录与统计聚合。
type AnalyticsService struct {
	db          *gorm.DB
	logger      *zap.Logger
	dedupWindow time.Duration
}

// NewAnalyticsService 创建 AnalyticsService，默认浏览去重窗口为 24 小时。
func NewAnalyticsService(gdb *gorm.DB, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{db: gdb, logger: logger, dedupWindow: defaultViewDedupWindow}
}

// WithDedupWindow 允许在测试或特定场景下调整去重窗口。
func (s *AnalyticsService) WithDedupWindow(d time.Duration) *AnalyticsService {
	if d <= 0 {
		return s
	}
	s.dedupWindow = d
	return s
}

// RecordStoryView 记录访客对故事的一次浏览。
// 同一 (storyID, ipHash) 在滚动窗口内只计一次；重复浏览返回 counted=false
// 且不产生任何写入。计数器自增通过单条 SQL 原子完成，失败只记日志，
// 不影响已写入的事件，也不改变调用方看到的结果。
func (s *AnalyticsService) RecordStoryView(storyID, ipHash string, now time.Time) (bool, error) {
	if storyID == "" || ipHash == "" {
		return false, errors.New("invalid story or visitor id")
	}

	counted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		windowStart := now.Add(-s.dedupWindow)

		var recent int64
		checkErr := tx.Model(&db.StoryView{}).
			Where("story_id = ? AND ip_hash = ? AND viewed_at >= ?", storyID, ipHash, windowStart).
			Count(&recent).Error
		if checkErr != nil {
			// 去重查询失败时放行：宁可多计一次，也不让统计阻塞页面
			s.logger.Warn("view dedup check failed, recording anyway",
				zap.String("story_id", storyID), zap.Error(checkErr))
			recent = 0
		}

		if recent > 0 {
			return nil
		}

		view := db.StoryView{StoryID: storyID, IPHash: ipHash, ViewedAt: now}
		if err := tx.Create(&view).Error; err != nil {
			return fmt.Errorf("insert story view: %w", err)
		}
		counted = true

		incErr := tx.Model(&db.Story{}).
			Where("id = ?", storyID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
		if incErr != nil {
			s.logger.Error("view counter increment failed",
				zap.String("story_id", storyID), zap.Error(incErr))
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return counted, nil
}

// RecordSiteVisit 记录访客当天的站点访问。
// (day, ip_hash) 上的唯一索引配合 ON CONFLICT DO NOTHING，
// 把"查重 + 写入"并成一次条件插入，天然免疫并发重复。
func (s *AnalyticsService) RecordSiteVisit(ipHash string, now time.Time) (bool, error) {
	if ipHash == "" {
		return false, errors.New("invalid visitor id")
	}

	visit := db.SiteVisit{
		IPHash:    ipHash,
		Day:       db.MidnightOf(now),
		VisitedAt: now,
	}

	insert := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip_hash"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&visit)
	if insert.Error != nil {
		return false, fmt.Errorf("insert site visit: %w", insert.Error)
	}

	return insert.RowsAffected == 1, nil
}

// DailyVisitors 统计本地当日零点以来的访客数。
// visit 行按 (day, ip_hash) 唯一，行数即访客数。
func (s *AnalyticsService) DailyVisitors(now time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&db.SiteVisit{}).
		Where("visited_at >= ?", db.MidnightOf(now)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SeverityOverview 描述全站平均倒霉程度及其定性标签。
type SeverityOverview struct {
	Average    string
	Score      float64
	StoryCount int64
	Label      string
}

// SeverityStats 对全部故事的倒霉程度求算术平均（保留一位小数）并映射标签。
// 没有任何故事时均值记为 0，标签回落到 "ปกติ"。
func (s *AnalyticsService) SeverityStats() (SeverityOverview, error) {
	overview := SeverityOverview{Average: "0", Label: SeverityLabelNormal}

	var agg struct {
		Count int64
		Mean  float64
	}
	err := s.db.Model(&db.Story{}).
		Select("COUNT(*) AS count, COALESCE(AVG(severity), 0) AS mean").
		Scan(&agg).Error
	if err != nil {
		return overview, err
	}

	overview.StoryCount = agg.Count
	if agg.Count == 0 {
		return overview, nil
	}

	overview.Score = math.Round(agg.Mean*10) / 10
	overview.Average = fmt.Sprintf("%.1f", overview.Score)
	overview.Label = severityLabel(overview.Score)
	return overview, nil
}

func severityLabel(score float64) string {
	switch {
	case score > 8:
		return SeverityLabelCritical
	case score > 5:
		return SeverityLabelModerate
	case score > 2:
		return SeverityLabelMinor
	default:
		return SeverityLabelBright
	}
}

// PruneBefore 删除 cutoff 之前的原始事件行，返回删除总数。
// 系统默认不清理，是否启用保留策略由运维决定。
func (s *AnalyticsService) PruneBefore(cutoff time.Time) (int64, error) {
	var total int64

	views := s.db.Where("viewed_at < ?", cutoff).Delete(&db.StoryView{})
	if views.Error != nil {
		return 0, fmt.Errorf("prune story views: %w", views.Error)
	}
	total += views.RowsAffected

	visits := s.db.Where("visited_at < ?", cutoff).Delete(&db.SiteVisit{})
	if visits.Error != nil {
		return total, fmt.Errorf("prune site visits: %w", visits.Error)
	}
	total += visits.RowsAffected

	return total, nil
}
