package pipeline

import (
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/donutnomad/recordgen/internal/logger"
	"github.com/donutnomad/recordgen/withergen"
)

// 默认值
const (
	DefaultHeader          = "// Generated Code - Do not Edit!"
	DefaultOutput          = "Generated.cs"
	DefaultNamespaceMarker = "/Assets/"
)

var (
	DefaultExtensions = []string{".cs"}
	DefaultExclude    = []string{"Generated"}
	DefaultUsings     = []string{"System.Collections.Immutable"}
)

var (
	// ErrNamespaceMarker 根目录路径中找不到命名空间标记
	ErrNamespaceMarker = errors.New("根目录路径中没有命名空间标记")
	// ErrEmptyNamespace 标记之后没有任何目录
	ErrEmptyNamespace = errors.New("推导出的命名空间为空")
	// ErrStale 磁盘上的生成文件已过期
	ErrStale = errors.New("生成文件已过期")
	// ErrNoRoots 没有指定扫描目录
	ErrNoRoots = errors.New("没有指定扫描目录")
)

// RunOptions 运行选项
type RunOptions struct {
	Roots   []string
	Variant withergen.Variant

	Usings    []string
	Nullable  bool
	Header    string
	Namespace string // 显式指定的命名空间，优先于根据路径推导
	Template  string // 自定义文档模板路径，为空使用内置模板

	NamespaceMarker string
	Output          string   // 输出文件名，相对于根目录
	Extensions      []string // 参与扫描的文件后缀
	Exclude         []string // 文件名包含这些片段时跳过

	Workers int
	Verbose bool
	Logger  *zap.SugaredLogger
}

// withDefaults 返回填充默认值后的副本
func (o *RunOptions) withDefaults() *RunOptions {
	c := *o
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.NamespaceMarker == "" {
		c.NamespaceMarker = DefaultNamespaceMarker
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	if c.Exclude == nil {
		c.Exclude = DefaultExclude
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return &c
}

// RunStats 运行统计信息
type RunStats struct {
	Roots        int // 处理的根目录数量
	FilesScanned int // 读取的源文件数量
	FilesMatched int // 含有 class 声明的文件数量
	Classes      int // 生成的 class 数量
	Properties   int // 生成的 wither 方法数量
	Written      int // 写入的文件数量
	Unchanged    int // 内容未变化而跳过写入的文件数量

	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
}

func (s *RunStats) add(r *Result) {
	s.Roots++
	s.FilesScanned += r.FilesScanned
	s.FilesMatched += r.FilesMatched
	s.Classes += len(r.Classes)
	s.Properties += r.PropertyCount()
	s.ScanDuration += r.ScanDuration
	s.GenerateDuration += r.GenerateDuration
}
