package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool 协程池
//
// 限制邮件派发的并发协程数量。活动群发会为每个订阅者提交一个
// 任务，协程池保证同时打开的 SMTP 连接数有上限。
type WorkerPool struct {
	maxWorkers int
	taskQueue  chan task
	wg         sync.WaitGroup
	logger     *zap.Logger
}

type task struct {
	name string
	fn   func()
}

// NewWorkerPool 创建协程池
//
// 参数:
//   - maxWorkers: 最大协程数
//   - queueSize: 任务队列大小
func NewWorkerPool(maxWorkers, queueSize int, logger *zap.Logger) *WorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		taskQueue:  make(chan task, queueSize),
		logger:     logger,
	}
}

// Start 启动协程池
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Submit 提交任务
//
// 如果队列已满，会阻塞直到有空位
func (p *WorkerPool) Submit(name string, fn func()) {
	p.taskQueue <- task{name: name, fn: fn}
}

// TrySubmit 尝试提交任务
//
// 如果队列已满，立即返回 false
func (p *WorkerPool) TrySubmit(name string, fn func()) bool {
	select {
	case p.taskQueue <- task{name: name, fn: fn}:
		return true
	default:
		p.logger.Warn("任务队列已满，丢弃任务", zap.String("task", name))
		return false
	}
}

// Stop 停止协程池并等待在途任务完成
func (p *WorkerPool) Stop() {
	close(p.taskQueue)
	p.wg.Wait()
}

// worker 工作协程
func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.taskQueue:
			if !ok {
				return
			}
			p.runTask(t)
		}
	}
}

func (p *WorkerPool) runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("任务执行发生 panic",
				zap.String("task", t.name),
				zap.Any("panic", r))
		}
	}()
	t.fn()
}
