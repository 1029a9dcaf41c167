package service

import (
	"bytes"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prasobpai/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// 故事投稿的校验错误。
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrSeverityRange   = errors.New("severity must be between 1 and 10")
)

// StoryInput 是投稿请求的载荷。
type StoryInput struct {
	Title       string
	Content     string
	AuthorAlias string
	Severity    int
}

// StoryService 处理故事的写入与读取。
type StoryService struct {
	db *gorm.DB
}

// NewStoryService 创建 StoryService。
func NewStoryService(gdb *gorm.DB) *StoryService {
	return &StoryService{db: gdb}
}

// Create 校验并保存一篇故事。正文以 Markdown 提交，
// 服务端渲染为 HTML 并消毒后与原文一并存储。
func (s *StoryService) Create(input StoryInput) (*db.Story, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrContentRequired
	}

	if input.Severity < 1 || input.Severity > 10 {
		return nil, ErrSeverityRange
	}

	rendered, err := renderMarkdown(content)
	if err != nil {
		return nil, err
	}

	story := db.Story{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		ContentHTML: rendered,
		AuthorAlias: strings.TrimSpace(input.AuthorAlias),
		Severity:    input.Severity,
	}

	if err := s.db.Create(&story).Error; err != nil {
		return nil, err
	}

	return &story, nil
}

// Get 按 ID 读取故事。
func (s *StoryService) Get(id string) (*db.Story, error) {
	var story db.Story
	if err := s.db.First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
