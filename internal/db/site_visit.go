package db

import "time"

// SiteVisit 记录访客当天是否来过站点，按自然日去重。
// Day 为本地时区当日零点，与 IPHash 组成唯一索引，
// 使"当天首次访问"成为一次条件插入而非先查后写。
type SiteVisit struct {
	ID        uint      `gorm:"primaryKey"`
	IPHash    string    `gorm:"size:64;uniqueIndex:idx_site_visit_day"`
	Day       time.Time `gorm:"uniqueIndex:idx_site_visit_day"`
	VisitedAt time.Time `gorm:"index"`
}

// TableName 指定自定义表名。
func (SiteVisit) TableName() string {
	return "site_visits"
}

// MidnightOf 返回 t 在其所在时区的当日零点，是自然日窗口的下边界。
func MidnightOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
