package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prasobpai/internal/config"
	"github.com/prasobpai/internal/db"
	"github.com/prasobpai/internal/identity"
	"github.com/prasobpai/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 测试数据生成器：填充故事与模拟浏览/访问事件。
func main() {
	cfg := config.Load()

	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	_ = gofakeit.Seed(time.Now().UnixNano())

	fmt.Println("开始生成测试数据...")

	stories := createTestStories(gdb)
	createTestTraffic(gdb, stories)

	fmt.Println("测试数据生成完成！")
	fmt.Printf("故事: %d 篇\n", len(stories))
}

// 创建测试故事
func createTestStories(gdb *gorm.DB) []*db.Story {
	var count int64
	gdb.Model(&db.Story{}).Count(&count)
	if count > 0 {
		fmt.Println("故事已存在，跳过创建")
		return nil
	}

	svc := service.NewStoryService(gdb)
	stories := make([]*db.Story, 0, 12)

	for i := 0; i < 12; i++ {
		story, err := svc.Create(service.StoryInput{
			Title:       gofakeit.Sentence(6),
			Content:     fmt.Sprintf("## %s\n\n%s", gofakeit.Sentence(4), gofakeit.Paragraph(2, 4, 10, "\n\n")),
			AuthorAlias: gofakeit.Username(),
			Severity:    rand.Intn(10) + 1,
		})
		if err != nil {
			fmt.Println("创建故事失败:", err)
			continue
		}
		stories = append(stories, story)
	}

	return stories
}

// 模拟若干访客产生的浏览与站点访问
func createTestTraffic(gdb *gorm.DB, stories []*db.Story) {
	if len(stories) == 0 {
		return
	}

	analytics := service.NewAnalyticsService(gdb, zap.NewNop())
	now := time.Now()

	for i := 0; i < 30; i++ {
		ipHash := identity.Fingerprint(gofakeit.IPv4Address())

		if _, err := analytics.RecordSiteVisit(ipHash, now); err != nil {
			fmt.Println("记录访问失败:", err)
		}

		story := stories[rand.Intn(len(stories))]
		if _, err := analytics.RecordStoryView(story.ID, ipHash, now); err != nil {
			fmt.Println("记录浏览失败:", err)
		}
	}
}
