package db

import "time"

// Story 表示一篇用户投稿的倒霉故事。
// ViewCount 是非规范化的浏览总数，只允许通过原子自增修改，
// 请求处理路径不得直接覆写该字段。
type Story struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:255"`
	Content     string // Markdown 原文
	ContentHTML string // 服务端渲染并消毒后的 HTML
	AuthorAlias string `gorm:"size:64"`
	Severity    int    `gorm:"index"` // 1-10，用户自评的倒霉程度
	ViewCount   uint64 `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (Story) TableName() string {
	return "stories"
}
