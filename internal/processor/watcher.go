package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/ratelimit"
	"resume-analyzer-go/internal/types"
)

// MetaContentMD5 报告元数据中的文件内容摘要
const MetaContentMD5 = "content_md5"

// DefaultSettleDelay 文件最后一次写入后等待的时间，避免分析写了一半的文件
const DefaultSettleDelay = 300 * time.Millisecond

// FileAnalyzer 分析单个文件
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*types.ResumeReport, error)
}

// Watcher 监听目录，新建或修改的简历在写入稳定后被分析
// 内容与上次分析时相同的文件会被跳过
type Watcher struct {
	analyzer FileAnalyzer
	settle   time.Duration
	limiter  *ratelimit.Limiter
	logger   *zerolog.Logger
	hashes   map[string]string // 路径 -> 上次成功分析时的内容摘要
}

// WatcherOption 监听器选项
type WatcherOption func(*Watcher)

// WithSettleDelay 设置写入稳定等待时间
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithRateLimiter 限制分析速率；读取失败（文件可能还没写完）会按限流器的策略重试
func WithRateLimiter(l *ratelimit.Limiter) WatcherOption {
	return func(w *Watcher) {
		w.limiter = l
	}
}

// WithWatcherLogger 设置日志记录器
func WithWatcherLogger(logger *zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher 创建目录监听器
func NewWatcher(analyzer FileAnalyzer, opts ...WatcherOption) *Watcher {
	nop := zerolog.Nop()
	w := &Watcher{
		analyzer: analyzer,
		settle:   DefaultSettleDelay,
		logger:   &nop,
		hashes:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch 开始监听 dir（不递归），每分析完一个文件向返回的通道发送一份报告
// ctx 取消后停止监听并关闭通道
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan *types.ResumeReport, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewWatchError(dir, err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, NewWatchError(dir, err)
	}

	reports := make(chan *types.ResumeReport)
	go w.loop(ctx, fw, reports)
	w.logger.Info().Str("dir", dir).Dur("settle", w.settle).Msg("开始监听简历目录")
	return reports, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, reports chan<- *types.ResumeReport) {
	ctx, cancel := context.WithCancel(ctx)
	defer close(reports)
	defer fw.Close()
	defer cancel()

	timers := newSettleTimers(ctx, w.settle)
	defer timers.stopAll()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !IsSupported(path) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				timers.touch(path)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				timers.forget(path)
				delete(w.hashes, path)
			}

		case s := <-timers.ready:
			if !timers.claim(s) {
				continue
			}
			report := w.analyze(ctx, s.path)
			if report == nil {
				continue
			}
			select {
			case reports <- report:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("目录监听出错")
		}
	}
}

// settled 某个路径的写入已稳定；gen 用于丢弃被新事件取代的过期通知
type settled struct {
	path string
	gen  uint64
}

type settleTimer struct {
	timer *time.Timer
	gen   uint64
}

// settleTimers 每个路径一个计时器，最后一次事件后 delay 时间发送到 ready
// 只在监听循环的 goroutine 中使用；ctx 取消后未送达的通知直接放弃
type settleTimers struct {
	ctx     context.Context
	delay   time.Duration
	ready   chan settled
	pending map[string]*settleTimer
	next    uint64
}

func newSettleTimers(ctx context.Context, delay time.Duration) *settleTimers {
	return &settleTimers{
		ctx:     ctx,
		delay:   delay,
		ready:   make(chan settled),
		pending: make(map[string]*settleTimer),
	}
}

// touch 重新开始计时；已触发但还没被领取的旧通知因代数不符而失效
func (s *settleTimers) touch(path string) {
	if t, ok := s.pending[path]; ok {
		t.timer.Stop()
	}
	s.next++
	n := settled{path: path, gen: s.next}
	s.pending[path] = &settleTimer{
		gen: n.gen,
		timer: time.AfterFunc(s.delay, func() {
			select {
			case s.ready <- n:
			case <-s.ctx.Done():
			}
		}),
	}
}

// forget 取消路径上的计时
func (s *settleTimers) forget(path string) {
	if t, ok := s.pending[path]; ok {
		t.timer.Stop()
		delete(s.pending, path)
	}
}

// claim 通知仍是该路径的最新一代时返回 true 并移除计时
func (s *settleTimers) claim(n settled) bool {
	t, ok := s.pending[n.path]
	if !ok || t.gen != n.gen {
		return false
	}
	delete(s.pending, n.path)
	return true
}

func (s *settleTimers) stopAll() {
	for path, t := range s.pending {
		t.timer.Stop()
		delete(s.pending, path)
	}
}

// analyze 内容未变化时返回 nil
func (w *Watcher) analyze(ctx context.Context, path string) *types.ResumeReport {
	var hash string
	if data, err := os.ReadFile(path); err == nil {
		hash = ContentHash(data)
		if w.hashes[path] == hash {
			w.logger.Debug().Str("path", path).Msg("文件内容未变化，跳过")
			return nil
		}
	}

	var report *types.ResumeReport
	err := w.limiter.Retry(ctx, func() error {
		var analyzeErr error
		report, analyzeErr = w.analyzer.AnalyzeFile(ctx, path)
		return analyzeErr
	}, func(err error) bool {
		return errors.Is(err, ErrReadFailure)
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("监听到的文件分析失败")
	}
	if report == nil {
		return nil
	}

	if hash != "" {
		if report.Metadata == nil {
			report.Metadata = map[string]interface{}{}
		}
		report.Metadata[MetaContentMD5] = hash
		if err == nil {
			w.hashes[path] = hash
		}
	}
	return report
}

// ContentHash 返回内容的MD5十六进制摘要
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
