package db

import "time"

// StoryView 记录"某指纹看过某故事"的原始事件，用于 24 小时滚动窗口去重。
// 记录一经写入不再修改，默认无限期保留。
type StoryView struct {
	ID       uint      `gorm:"primaryKey"`
	StoryID  string    `gorm:"size:36;index:idx_story_views_lookup"`
	IPHash   string    `gorm:"size:64;index:idx_story_views_lookup"`
	ViewedAt time.Time `gorm:"index:idx_story_views_lookup"`
}

// TableName 指定自定义表名。
func (StoryView) TableName() string {
	return "story_views"
}
