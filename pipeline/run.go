package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"

	"github.com/donutnomad/recordgen/withergen"
)

// Result 单个根目录的生成结果（尚未写入磁盘）
type Result struct {
	Root       string
	OutputPath string
	Namespace  string
	Content    []byte
	Classes    []*withergen.ClassDescriptor

	FilesScanned int
	FilesMatched int

	ScanDuration     time.Duration
	GenerateDuration time.Duration
}

// PropertyCount 返回生成的 wither 方法总数
func (r *Result) PropertyCount() int {
	return lo.SumBy(r.Classes, func(c *withergen.ClassDescriptor) int {
		return len(c.Properties)
	})
}

// Generate 为单个根目录生成完整文档
// 1. 推导命名空间
// 2. 收集并扫描源文件
// 3. 为每个 class 生成代码块
// 4. 渲染文档
func Generate(ctx context.Context, root string, opts *RunOptions) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "解析路径 %s 失败", root)
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace, err = DeriveNamespace(absRoot, opts.NamespaceMarker)
		if err != nil {
			return nil, err
		}
	}

	scanner, err := withergen.NewScanner(opts.Variant.Marker)
	if err != nil {
		return nil, err
	}
	emitter, err := withergen.NewEmitter(opts.Variant)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer(opts.Template)
	if err != nil {
		return nil, err
	}

	log.Infof("开始生成: %s", root)
	log.Debugf("命名空间: %s, 属性标记: %s", namespace, scanner.Marker())

	// 扫描
	scanStart := time.Now()
	files, err := CollectFiles(absRoot, opts)
	if err != nil {
		return nil, err
	}
	fileResults, err := scanFiles(ctx, files, scanner, opts.Workers)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Root:         root,
		OutputPath:   filepath.Join(absRoot, opts.Output),
		Namespace:    namespace,
		FilesScanned: len(files),
		ScanDuration: time.Since(scanStart),
	}

	for i, fr := range fileResults {
		if !fr.matched {
			continue
		}
		result.FilesMatched++
		result.Classes = append(result.Classes, fr.classes...)

		log.Debugf("扫描 %s: %d 个 class", files[i], len(fr.classes))
		if opts.Verbose && len(fr.classes) > 0 {
			log.Debugf("扫描结果 %s:\n%s", files[i], spew.Sdump(fr.classes))
		}
	}

	// 生成
	generateStart := time.Now()
	blocks := emitter.EmitAll(result.Classes)
	for _, c := range result.Classes {
		log.Debugf("生成 %s (%d 个 wither)", c.Name, len(c.Properties))
	}

	content, err := renderer.Render(&Document{
		Header:    opts.Header,
		Usings:    opts.Usings,
		Nullable:  opts.Nullable,
		Namespace: namespace,
		Blocks:    blocks,
		Classes:   result.Classes,
	})
	if err != nil {
		return nil, err
	}
	result.Content = content
	result.GenerateDuration = time.Since(generateStart)

	return result, nil
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 处理所有根目录并写入生成文件
// 某个根目录失败不影响其它根目录，但会返回合并后的错误
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	opts = opts.withDefaults()
	log := opts.Logger

	totalStart := time.Now()
	stats := &RunStats{}
	var allErrors error

	for _, root := range opts.Roots {
		if err := ctx.Err(); err != nil {
			return stats, errors.Join(err, allErrors)
		}

		result, err := Generate(ctx, root, opts)
		if err != nil {
			log.Errorf("生成 %s 失败: %v", root, err)
			allErrors = errors.Join(allErrors, errors.Wrapf(err, "%s", root))
			continue
		}
		stats.add(result)

		written, err := WriteIfChanged(result.OutputPath, result.Content)
		if err != nil {
			log.Errorf("写入 %s 失败: %v", result.OutputPath, err)
			allErrors = errors.Join(allErrors, err)
			continue
		}
		if written {
			stats.Written++
			log.Infof("生成文件: %s (%d 个 class, %d 个 wither)", result.OutputPath, len(result.Classes), result.PropertyCount())
		} else {
			stats.Unchanged++
			log.Debugf("文件未变化: %s", result.OutputPath)
		}
	}

	stats.TotalDuration = time.Since(totalStart)
	return stats, allErrors
}

// Drift 磁盘上的生成文件与期望内容不一致
type Drift struct {
	Root       string
	OutputPath string
	Diff       string
}

// Check 只生成不写入，比较磁盘上已有的生成文件
// 与 RunWithOptionsAndStats 一样，某个根目录失败不影响其它根目录的比较
// 存在差异时返回的错误包含 ErrStale
func Check(ctx context.Context, opts *RunOptions) ([]Drift, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	opts = opts.withDefaults()

	var (
		drifts    []Drift
		allErrors error
	)
	for _, root := range opts.Roots {
		if err := ctx.Err(); err != nil {
			return drifts, errors.Join(err, allErrors)
		}

		drift, err := checkRoot(ctx, root, opts)
		if err != nil {
			opts.Logger.Errorf("检查 %s 失败: %v", root, err)
			allErrors = errors.Join(allErrors, errors.Wrapf(err, "%s", root))
			continue
		}
		if drift != nil {
			drifts = append(drifts, *drift)
		}
	}

	if len(drifts) > 0 {
		allErrors = errors.Join(allErrors, errors.Wrapf(ErrStale, "%d 个文件需要重新生成", len(drifts)))
	}
	return drifts, allErrors
}

// checkRoot 比较单个根目录，内容一致时返回 nil
func checkRoot(ctx context.Context, root string, opts *RunOptions) (*Drift, error) {
	result, err := Generate(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	current, err := os.ReadFile(result.OutputPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "读取 %s 失败", result.OutputPath)
	}

	diff, err := UnifiedDiff(result.OutputPath, current, result.Content)
	if err != nil || diff == "" {
		return nil, err
	}
	return &Drift{Root: root, OutputPath: result.OutputPath, Diff: diff}, nil
}
