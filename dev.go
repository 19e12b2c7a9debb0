package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/donutnomad/recordgen/internal/logger"
	"github.com/donutnomad/recordgen/pipeline"
)

// DefaultDebounce 同一目录连续变动的合并窗口
const DefaultDebounce = 500 * time.Millisecond

func newDevCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "dev [目录...]",
		Short: "开发模式，监听 .cs 文件变动自动生成",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer func() { _ = a.log.Sync() }()

			opts, err := a.runOptions(args)
			if err != nil {
				return err
			}
			return dev(cmd.Context(), opts, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", DefaultDebounce, "防抖动时间")
	return cmd
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *pipeline.RunOptions
	log      *zap.SugaredLogger
	watcher  *fsnotify.Watcher
	roots    []string // 绝对路径
	debounce time.Duration
	ctx      context.Context // 用于响应退出信号

	// 防抖动相关
	mu           sync.Mutex
	pendingRoots map[string]*time.Timer // key: 根目录
}

// dev 启动开发模式：先完整生成一次，之后按根目录防抖动重新生成
func dev(ctx context.Context, opts *pipeline.RunOptions, debounce time.Duration) error {
	runner, err := newDevRunner(ctx, opts, debounce)
	if err != nil {
		return err
	}
	defer runner.close()

	if _, err := pipeline.RunWithOptionsAndStats(ctx, opts); err != nil {
		// 初次生成失败不退出，等待修改后重试
		runner.log.Errorf("初次生成失败: %v", err)
	}

	runner.log.Infof("开发模式已启动，监听 %d 个目录，按 Ctrl+C 退出", len(runner.watcher.WatchList()))
	return runner.watchLoop()
}

func newDevRunner(ctx context.Context, opts *pipeline.RunOptions, debounce time.Duration) (*devRunner, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	roots := make([]string, 0, len(opts.Roots))
	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrapf(err, "解析路径 %s 失败", root)
		}
		roots = append(roots, abs)
	}

	dirs, err := collectWatchDirs(roots)
	if err != nil {
		return nil, errors.Wrap(err, "收集监听目录失败")
	}
	if len(dirs) == 0 {
		return nil, errors.New("没有找到需要监听的目录")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "创建文件监听器失败")
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, errors.Wrapf(err, "添加监听目录失败 %s", dir)
		}
		log.Debugf("监听目录: %s", dir)
	}

	return &devRunner{
		opts:         opts,
		log:          log,
		watcher:      watcher,
		roots:        roots,
		debounce:     debounce,
		ctx:          ctx,
		pendingRoots: make(map[string]*time.Timer),
	}, nil
}

// close 停止所有待处理的定时器并关闭监听器
func (r *devRunner) close() {
	r.mu.Lock()
	for _, timer := range r.pendingRoots {
		timer.Stop()
	}
	r.mu.Unlock()
	_ = r.watcher.Close()
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop() error {
	for {
		select {
		case <-r.ctx.Done():
			r.log.Info("正在退出...")
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warnf("监听错误: %v", err)
		}
	}
}

// handleEvent 处理文件事件
// 删除和重命名同样会改变生成结果，因此也会触发
func (r *devRunner) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// 新建的子目录需要加入监听
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			r.addDir(event.Name)
			return
		}
	}

	if !r.isWatchedSource(event.Name) {
		return
	}

	root, ok := r.rootFor(event.Name)
	if !ok {
		return
	}

	r.log.Debugf("检测到文件变化: %s (%s)", event.Name, event.Op)
	r.scheduleGenerate(root)
}

// isWatchedSource 只关心参与扫描的源文件，生成文件和临时文件不会触发
func (r *devRunner) isWatchedSource(path string) bool {
	name := filepath.Base(path)
	if name == filepath.Base(r.opts.Output) || strings.HasPrefix(name, ".") {
		return false
	}
	return pipeline.IsSourceFile(name, r.opts)
}

// rootFor 返回包含该路径的最深的根目录
func (r *devRunner) rootFor(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	matches := lo.Filter(r.roots, func(root string, _ int) bool {
		return abs == root || strings.HasPrefix(abs, root+string(filepath.Separator))
	})
	if len(matches) == 0 {
		return "", false
	}
	return lo.MaxBy(matches, func(a, b string) bool { return len(a) > len(b) }), true
}

func (r *devRunner) addDir(dir string) {
	dirs, err := collectWatchDirs([]string{dir})
	if err != nil {
		r.log.Warnf("收集新目录失败 %s: %v", dir, err)
		return
	}
	for _, d := range dirs {
		if err := r.watcher.Add(d); err != nil {
			r.log.Warnf("添加监听目录失败 %s: %v", d, err)
			continue
		}
		r.log.Debugf("监听新目录: %s", d)
	}
	if root, ok := r.rootFor(dir); ok {
		r.scheduleGenerate(root)
	}
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 取消之前的 timer
	if timer, exists := r.pendingRoots[root]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(r.debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.runGenerate(root)

		r.mu.Lock()
		r.clearPendingLocked(root, timer)
		r.mu.Unlock()
	})
	r.pendingRoots[root] = timer
}

// clearPendingLocked 生成结束后移除 timer 记录
// 生成期间若有新事件重新调度，记录已被替换为新 timer，此时保留
func (r *devRunner) clearPendingLocked(root string, fired *time.Timer) {
	if r.pendingRoots[root] == fired {
		delete(r.pendingRoots, root)
	}
}

// runGenerate 只重新生成变动的根目录
func (r *devRunner) runGenerate(root string) {
	opts := *r.opts
	opts.Roots = []string{root}

	stats, err := pipeline.RunWithOptionsAndStats(r.ctx, &opts)
	if err != nil {
		r.log.Errorf("生成失败: %v", err)
		return
	}

	if stats.Written > 0 {
		r.log.Infof("生成完成: %s (%d 个 class, 耗时 %v)", root, stats.Classes, stats.TotalDuration)
	} else {
		r.log.Debugf("生成完成: %s 无变化", root)
	}
}

// collectWatchDirs 递归收集所有需要监听的目录，跳过隐藏目录
func collectWatchDirs(roots []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
