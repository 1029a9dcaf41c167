package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultViewQueueSize = 256
	viewRetryDelay       = 100 * time.Millisecond
)

type viewTask struct {
	storyID    string
	ipHash     string
	enqueuedAt time.Time
}

// ViewRecorder 在后台异步落账浏览事件，使计数永远不阻塞页面响应。
// 队列有界，入队不等待：队列满时丢弃并记日志。失败重试一次后放弃。
type ViewRecorder struct {
	analytics *AnalyticsService
	logger    *zap.Logger
	tasks     chan viewTask
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewViewRecorder 创建并启动后台记录协程。queueSize <= 0 时使用默认容量。
func NewViewRecorder(analytics *AnalyticsService, logger *zap.Logger, queueSize int) *ViewRecorder {
	if queueSize <= 0 {
		queueSize = defaultViewQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ViewRecorder{
		analytics: analytics,
		logger:    logger,
		tasks:     make(chan viewTask, queueSize),
		done:      make(chan struct{}),
	}

	go r.run()
	return r
}

// Enqueue 提交一次浏览以供后台记录，立即返回。
// 返回 false 表示事件被丢弃：队列已满，或 recorder 已关闭
//（页面不受影响，仅少计一次）。
func (r *ViewRecorder) Enqueue(storyID, ipHash string) bool {
	task := viewTask{storyID: storyID, ipHash: ipHash, enqueuedAt: time.Now()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	select {
	case r.tasks <- task:
		return true
	default:
		r.logger.Warn("view queue full, dropping view event",
			zap.String("story_id", storyID))
		return false
	}
}

// Close 停止接收新任务并等待积压任务处理完毕。
// 关闭后到达的 Enqueue 直接返回 false，不会写入已关闭的队列。
func (r *ViewRecorder) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.tasks)
	})
	<-r.done
}

func (r *ViewRecorder) run() {
	defer close(r.done)

	for task := range r.tasks {
		// 以入队时刻计窗口，处理延迟不影响去重判定
		if _, err := r.analytics.RecordStoryView(task.storyID, task.ipHash, task.enqueuedAt); err != nil {
			time.Sleep(viewRetryDelay)
			if _, retryErr := r.analytics.RecordStoryView(task.storyID, task.ipHash, task.enqueuedAt); retryErr != nil {
				r.logger.Error("background view record failed",
					zap.String("story_id", task.storyID), zap.Error(retryErr))
			}
		}
	}
}
